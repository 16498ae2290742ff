package postgres

import (
	"errors"

	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	employeeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/employee"
	"github.com/frahmantamala/role-assignment/internal/employee"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"id":            "id",
	"employeeId":    "employee_id",
	"firstName":     "first_name",
	"lastName":      "last_name",
	"email":         "email",
	"positionId":    "position_id",
	"positionTitle": "position_title",
}

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) List(req pagination.Request) ([]*employeeDatamodel.Employee, int64, error) {
	query := r.db.Model(&employeeDatamodel.Employee{})
	if req.Search != "" {
		like := req.LikePattern()
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(employee_id) LIKE ? OR LOWER(position_id) LIKE ? OR LOWER(position_title) LIKE ?",
			like, like, like, like, like, like,
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []*employeeDatamodel.Employee
	err := query.Order(req.OrderClause(sortColumns, "id")).
		Limit(req.Size).
		Offset(req.Offset()).
		Find(&employees).Error
	return employees, total, err
}

func (r *EmployeeRepository) Search(q string) ([]*employeeDatamodel.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.Where("employee_id = ? OR LOWER(email) = LOWER(?) OR position_id = ?", q, q, q).
		Order("id ASC").
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) FindByWorkerID(workerID string) ([]*employeeDatamodel.Employee, error) {
	return r.find("employee_id = ?", workerID)
}

func (r *EmployeeRepository) FindByEmail(email string) ([]*employeeDatamodel.Employee, error) {
	return r.find("LOWER(email) = LOWER(?)", email)
}

func (r *EmployeeRepository) FindByPositionID(positionID string) ([]*employeeDatamodel.Employee, error) {
	return r.find("position_id = ?", positionID)
}

func (r *EmployeeRepository) find(query string, args ...interface{}) ([]*employeeDatamodel.Employee, error) {
	var employees []*employeeDatamodel.Employee
	err := r.db.Where(query, args...).Order("id ASC").Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) GetByID(id int64) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) Create(e *employeeDatamodel.Employee) error {
	return r.db.Create(e).Error
}

func (r *EmployeeRepository) Update(e *employeeDatamodel.Employee) error {
	return r.db.Save(e).Error
}

func (r *EmployeeRepository) Delete(id int64) error {
	return r.db.Delete(&employeeDatamodel.Employee{}, id).Error
}

func (r *EmployeeRepository) CountAssignments(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&assignmentDatamodel.Assignment{}).Where("employee_id = ?", id).Count(&count).Error
	return count, err
}
