package postgres

import (
	"errors"

	"github.com/frahmantamala/role-assignment/internal/assignment"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	"gorm.io/gorm"
)

const rowColumns = `a.id, a.employee_id, a.organization_detail_id, a.created_by_id, a.created_at,
	e.employee_id AS worker_id, e.first_name, e.last_name, e.email, e.position_id, e.position_title,
	od.organization, od.legacy_organization_name, od.organization_type, od.reference_id,
	u.first_name AS created_by_first_name, u.last_name AS created_by_last_name`

const organizationNameExpr = "COALESCE(NULLIF(od.organization, ''), od.legacy_organization_name)"

var sortColumns = map[string]string{
	"id":               "a.id",
	"createdAt":        "a.created_at",
	"employeeName":     "e.first_name",
	"organizationName": organizationNameExpr,
	"workerId":         "e.employee_id",
}

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) assignment.RepositoryAPI {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) joined() *gorm.DB {
	return r.db.Table("assignments a").
		Joins("JOIN employees e ON e.id = a.employee_id").
		Joins("JOIN organization_details od ON od.id = a.organization_detail_id").
		Joins("LEFT JOIN users u ON u.id = a.created_by_id")
}

func (r *AssignmentRepository) List(typeName string, req pagination.Request) ([]*assignmentDatamodel.Row, int64, error) {
	query := r.joined().Where("od.organization_type = ?", typeName)
	if req.Search != "" {
		like := req.LikePattern()
		query = query.Where(
			"LOWER(e.first_name) LIKE ? OR LOWER(e.last_name) LIKE ? OR LOWER(e.email) LIKE ? OR LOWER(e.employee_id) LIKE ? OR LOWER("+organizationNameExpr+") LIKE ?",
			like, like, like, like, like,
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*assignmentDatamodel.Row
	err := query.Select(rowColumns).
		Order(req.OrderClause(sortColumns, "a.id")).
		Order("a.id ASC").
		Limit(req.Size).
		Offset(req.Offset()).
		Scan(&rows).Error
	return rows, total, err
}

func (r *AssignmentRepository) ListByType(typeName string) ([]*assignmentDatamodel.Row, error) {
	var rows []*assignmentDatamodel.Row
	err := r.joined().Select(rowColumns).
		Where("od.organization_type = ?", typeName).
		Order("a.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *AssignmentRepository) ListByDetail(detailID int64) ([]*assignmentDatamodel.Row, error) {
	var rows []*assignmentDatamodel.Row
	err := r.joined().Select(rowColumns).
		Where("a.organization_detail_id = ?", detailID).
		Order("a.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *AssignmentRepository) GetRow(id int64) (*assignmentDatamodel.Row, error) {
	var rows []*assignmentDatamodel.Row
	err := r.joined().Select(rowColumns).Where("a.id = ?", id).Limit(1).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *AssignmentRepository) GetByID(id int64) (*assignmentDatamodel.Assignment, error) {
	var a assignmentDatamodel.Assignment
	err := r.db.Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) Exists(employeeID, detailID int64) (bool, error) {
	var count int64
	err := r.db.Model(&assignmentDatamodel.Assignment{}).
		Where("employee_id = ? AND organization_detail_id = ?", employeeID, detailID).
		Count(&count).Error
	return count > 0, err
}

func (r *AssignmentRepository) Values(assignmentIDs []int64) ([]assignmentDatamodel.StoredValue, error) {
	var values []assignmentDatamodel.StoredValue
	if len(assignmentIDs) == 0 {
		return values, nil
	}
	err := r.db.Table("assignment_field_values v").
		Select("v.assignment_id, v.field_definition_id, d.field_key, v.field_value").
		Joins("JOIN assignment_field_definitions d ON d.id = v.field_definition_id").
		Where("v.assignment_id IN ?", assignmentIDs).
		Scan(&values).Error
	return values, err
}

func (r *AssignmentRepository) Create(a *assignmentDatamodel.Assignment, values []assignmentDatamodel.FieldValue) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		if len(values) == 0 {
			return nil
		}
		for i := range values {
			values[i].AssignmentID = a.ID
		}
		return tx.Create(&values).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return assignment.ErrDuplicateAssignment
	}
	return err
}

// ReplaceValues rewrites the values of the definitions present in values.
// Rows for other definitions, such as deactivated ones, are left untouched.
func (r *AssignmentRepository) ReplaceValues(assignmentID int64, values []assignmentDatamodel.FieldValue) error {
	if len(values) == 0 {
		return nil
	}
	defIDs := make([]int64, 0, len(values))
	for i := range values {
		values[i].AssignmentID = assignmentID
		defIDs = append(defIDs, values[i].FieldDefinitionID)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ? AND field_definition_id IN ?", assignmentID, defIDs).
			Delete(&assignmentDatamodel.FieldValue{}).Error; err != nil {
			return err
		}
		return tx.Create(&values).Error
	})
}

func (r *AssignmentRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", id).Delete(&assignmentDatamodel.FieldValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&assignmentDatamodel.Assignment{}, id).Error
	})
}

func (r *AssignmentRepository) CountByType(createdBy *int64) (map[string]int64, error) {
	var rows []struct {
		OrganizationType string
		Total            int64
	}
	query := r.db.Table("assignments a").
		Select("od.organization_type AS organization_type, COUNT(*) AS total").
		Joins("JOIN organization_details od ON od.id = a.organization_detail_id").
		Group("od.organization_type")
	if createdBy != nil {
		query = query.Where("a.created_by_id = ?", *createdBy)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.OrganizationType] = row.Total
	}
	return counts, nil
}
