package employee

import (
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/csvimport"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	"github.com/frahmantamala/role-assignment/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	List(req pagination.Request) ([]*employeeDatamodel.Employee, int64, error)
	Search(query string) ([]*employeeDatamodel.Employee, error)
	FindByWorkerID(workerID string) ([]*employeeDatamodel.Employee, error)
	FindByEmail(email string) ([]*employeeDatamodel.Employee, error)
	FindByPositionID(positionID string) ([]*employeeDatamodel.Employee, error)
	GetByID(id int64) (*employeeDatamodel.Employee, error)
	Create(e *employeeDatamodel.Employee) error
	Update(e *employeeDatamodel.Employee) error
	Delete(id int64) error
	CountAssignments(id int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

var importColumns = []csvimport.Column{
	{Field: "email", AllOf: []string{"email"}},
	{Field: "employeeId", AllOf: []string{"employee", "id"}},
	{Field: "employeeId", AllOf: []string{"worker", "id"}},
	{Field: "firstName", AllOf: []string{"first", "name"}},
	{Field: "lastName", AllOf: []string{"last", "name"}},
	{Field: "positionId", AllOf: []string{"position", "id"}},
	{Field: "positionTitle", AllOf: []string{"position", "title"}},
}

func (s *Service) List(req pagination.Request) (pagination.Page[*Employee], error) {
	rows, total, err := s.repo.List(req)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return pagination.Page[*Employee]{}, errors.NewInternalError("failed to list employees", err)
	}
	return pagination.NewPage(fromDataModels(rows), total, req), nil
}

// Search matches worker id or position id exactly and email case-insensitively.
func (s *Service) Search(query string) ([]*Employee, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Employee{}, nil
	}
	rows, err := s.repo.Search(query)
	if err != nil {
		s.logger.Error("failed to search employees", "error", err, "query", query)
		return nil, errors.NewInternalError("failed to search employees", err)
	}
	return fromDataModels(rows), nil
}

// FindByWorkerID may return several employees; zero matches is an empty list.
func (s *Service) FindByWorkerID(workerID string) ([]*Employee, error) {
	return s.findBy("workerId", workerID, s.repo.FindByWorkerID)
}

func (s *Service) FindByEmail(email string) ([]*Employee, error) {
	return s.findBy("email", email, s.repo.FindByEmail)
}

func (s *Service) FindByPositionID(positionID string) ([]*Employee, error) {
	return s.findBy("positionId", positionID, s.repo.FindByPositionID)
}

func (s *Service) findBy(field, value string, find func(string) ([]*employeeDatamodel.Employee, error)) ([]*Employee, error) {
	value = strings.TrimSpace(value)
	validator := validation.NewValidator()
	validator.Field(field, value).Required()
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}
	rows, err := find(value)
	if err != nil {
		s.logger.Error("failed to find employees", "error", err, "field", field)
		return nil, errors.NewInternalError("failed to find employees", err)
	}
	return fromDataModels(rows), nil
}

func (s *Service) GetByID(id int64) (*Employee, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(req CreateRequest) (*Employee, error) {
	e := &Employee{
		EmployeeID:    strings.TrimSpace(req.EmployeeID),
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		PositionID:    strings.TrimSpace(req.PositionID),
		PositionTitle: strings.TrimSpace(req.PositionTitle),
		Email:         strings.TrimSpace(req.Email),
	}
	if appErr := validate(e); appErr != nil {
		return nil, appErr
	}

	row := ToDataModel(e)
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create employee", "error", err, "employee_id", e.EmployeeID)
		return nil, errors.NewInternalError("failed to create employee", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(id int64, req UpdateRequest) (*Employee, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}
	e := FromDataModel(row)
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&e.EmployeeID, req.EmployeeID)
	apply(&e.FirstName, req.FirstName)
	apply(&e.LastName, req.LastName)
	apply(&e.PositionID, req.PositionID)
	apply(&e.PositionTitle, req.PositionTitle)
	apply(&e.Email, req.Email)
	if appErr := validate(e); appErr != nil {
		return nil, appErr
	}

	updated := ToDataModel(e)
	if err := s.repo.Update(updated); err != nil {
		s.logger.Error("failed to update employee", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to update employee", err)
	}
	return FromDataModel(updated), nil
}

func (s *Service) Delete(id int64) error {
	if _, err := s.getRow(id); err != nil {
		return err
	}
	refs, err := s.repo.CountAssignments(id)
	if err != nil {
		s.logger.Error("failed to count assignments for employee", "error", err, "id", id)
		return errors.NewInternalError("failed to delete employee", err)
	}
	if refs > 0 {
		return errors.NewConflictError(fmt.Sprintf("Employee %d has %d assignments", id, refs), errors.ErrCodeEmployeeInUse)
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "id", id)
		return errors.NewInternalError("failed to delete employee", err)
	}
	return nil
}

// ImportCSV accepts comma or pipe separated files; the delimiter is taken from the header line.
func (s *Service) ImportCSV(r io.Reader) (*ImportResponse, error) {
	table, err := csvimport.Parse(r, csvimport.Options{Columns: importColumns})
	if err != nil {
		if stdErrors.Is(err, csvimport.ErrEmptyFile) || stdErrors.Is(err, csvimport.ErrTooManyRows) {
			return nil, errors.NewValidationError(err.Error(), errors.ErrCodeInvalidFile)
		}
		return nil, errors.NewValidationError("could not read csv file", errors.ErrCodeInvalidFile).WithCause(err)
	}
	if !table.Has("employeeId") {
		return nil, errors.NewValidationFieldError("file", "CSV must contain an Employee ID column", errors.ErrCodeInvalidFile)
	}

	result := csvimport.Result{Errors: []csvimport.RowError{}}
	for _, row := range table.Rows {
		e := &Employee{
			EmployeeID:    row.Get("employeeId"),
			FirstName:     row.Get("firstName"),
			LastName:      row.Get("lastName"),
			PositionID:    row.Get("positionId"),
			PositionTitle: row.Get("positionTitle"),
			Email:         row.Get("email"),
		}
		if e.EmployeeID == "" {
			result.Fail(row.Line, "employee id is empty")
			continue
		}
		if appErr := validate(e); appErr != nil {
			result.Fail(row.Line, appErr.GetDetailedMessage())
			continue
		}
		if err := s.repo.Create(ToDataModel(e)); err != nil {
			s.logger.Warn("failed to import employee row", "error", err, "line", row.Line)
			result.Fail(row.Line, "failed to save row")
			continue
		}
		result.Imported++
	}

	s.logger.Info("employees imported",
		"imported", result.Imported,
		"skipped", result.Skipped,
		"delimiter", string(table.Delimiter))
	return &ImportResponse{
		Result:  result,
		Message: fmt.Sprintf("Successfully imported %d employees", result.Imported),
	}, nil
}

func (s *Service) getRow(id int64) (*employeeDatamodel.Employee, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get employee", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to get employee", err)
	}
	if row == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Employee %d not found", id), errors.ErrCodeEmployeeNotFound)
	}
	return row, nil
}

func validate(e *Employee) *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("employeeId", e.EmployeeID).Required().MaxLength(100)
	validator.Field("firstName", e.FirstName).MaxLength(100)
	validator.Field("lastName", e.LastName).MaxLength(100)
	validator.Field("positionId", e.PositionID).MaxLength(100)
	validator.Field("positionTitle", e.PositionTitle).MaxLength(200)
	validator.Field("email", e.Email).MaxLength(200)
	return validator.Validate()
}
