package organizationdetail

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
	orgDetailDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationdetail"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
)

type RepositoryAPI interface {
	List(req pagination.Request, filter ListFilter) ([]*orgDetailDatamodel.OrganizationDetail, int64, error)
	DistinctTypes() ([]string, error)
	GetByID(id int64) (*orgDetailDatamodel.OrganizationDetail, error)
	Create(d *orgDetailDatamodel.OrganizationDetail) error
	Update(d *orgDetailDatamodel.OrganizationDetail) error
	Delete(id int64) error
	CountAssignments(id int64) (int64, error)
}

type OrganizationTypeLister interface {
	ListAll() ([]*organizationtype.OrganizationType, error)
}

type Service struct {
	repo     RepositoryAPI
	orgTypes OrganizationTypeLister
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, orgTypes OrganizationTypeLister, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		orgTypes: orgTypes,
		logger:   logger,
	}
}

var importColumns = []csvimport.Column{
	{Field: "legacyOrganizationName", AllOf: []string{"legacy", "organization", "name"}},
	{Field: "organizationType", AllOf: []string{"organization", "type"}},
	{Field: "referenceId", AllOf: []string{"reference", "id"}},
	{Field: "organization", AllOf: []string{"organization"}, NoneOf: []string{"legacy", "type"}},
}

func (s *Service) List(req pagination.Request, filter ListFilter) (pagination.Page[*OrganizationDetail], error) {
	rows, total, err := s.repo.List(req, filter)
	if err != nil {
		s.logger.Error("failed to list organization details", "error", err, "filter", filter.OrganizationType)
		return pagination.Page[*OrganizationDetail]{}, errors.NewInternalError("failed to list organization details", err)
	}
	details := make([]*OrganizationDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, FromDataModel(row))
	}
	return pagination.NewPage(details, total, req), nil
}

func (s *Service) ListOrganizationTypes() ([]string, error) {
	types, err := s.repo.DistinctTypes()
	if err != nil {
		s.logger.Error("failed to list distinct organization types", "error", err)
		return nil, errors.NewInternalError("failed to list organization types", err)
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

func (s *Service) GetByID(id int64) (*OrganizationDetail, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(req CreateRequest) (*OrganizationDetail, error) {
	detail := &OrganizationDetail{
		LegacyOrganizationName: strings.TrimSpace(req.LegacyOrganizationName),
		Organization:           strings.TrimSpace(req.Organization),
		ReferenceID:            NormalizeReferenceID(req.ReferenceID),
	}
	if appErr := validateNames(detail); appErr != nil {
		return nil, appErr
	}

	typeName, err := s.resolveTypeName(req.OrganizationType)
	if err != nil {
		return nil, err
	}
	detail.OrganizationType = typeName

	row := ToDataModel(detail)
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create organization detail", "error", err, "organization", detail.Organization)
		return nil, errors.NewInternalError("failed to create organization detail", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Update(id int64, req UpdateRequest) (*OrganizationDetail, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}
	detail := FromDataModel(row)

	if req.LegacyOrganizationName != nil {
		detail.LegacyOrganizationName = strings.TrimSpace(*req.LegacyOrganizationName)
	}
	if req.Organization != nil {
		detail.Organization = strings.TrimSpace(*req.Organization)
	}
	if req.ReferenceID != nil {
		detail.ReferenceID = NormalizeReferenceID(req.ReferenceID)
	}
	if appErr := validateNames(detail); appErr != nil {
		return nil, appErr
	}
	if req.OrganizationType != nil {
		typeName, err := s.resolveTypeName(*req.OrganizationType)
		if err != nil {
			return nil, err
		}
		if typeName != detail.OrganizationType {
			if err := s.ensureUnassigned(id, "moved to another organization type"); err != nil {
				return nil, err
			}
		}
		detail.OrganizationType = typeName
	}

	updated := ToDataModel(detail)
	if err := s.repo.Update(updated); err != nil {
		s.logger.Error("failed to update organization detail", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to update organization detail", err)
	}
	return FromDataModel(updated), nil
}

// Delete refuses while assignments still point at the detail.
func (s *Service) Delete(id int64) error {
	if _, err := s.getRow(id); err != nil {
		return err
	}
	if err := s.ensureUnassigned(id, "deleted"); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete organization detail", "error", err, "id", id)
		return errors.NewInternalError("failed to delete organization detail", err)
	}
	return nil
}

// ensureUnassigned returns a conflict while assignments still point at the detail.
func (s *Service) ensureUnassigned(id int64, action string) error {
	refs, err := s.repo.CountAssignments(id)
	if err != nil {
		s.logger.Error("failed to count assignments for organization detail", "error", err, "id", id)
		return errors.NewInternalError("failed to check organization detail assignments", err)
	}
	if refs > 0 {
		return errors.NewConflictError(
			fmt.Sprintf("Organization detail %d is used by %d assignments and cannot be %s", id, refs, action),
			errors.ErrCodeOrganizationDetailInUse,
		)
	}
	return nil
}

// ImportCSV saves each row on its own; a bad row never aborts the file.
func (s *Service) ImportCSV(r io.Reader) (*ImportResponse, error) {
	table, err := csvimport.Parse(r, csvimport.Options{Columns: importColumns})
	if err != nil {
		return nil, importError(err)
	}

	known, err := s.typeNames()
	if err != nil {
		return nil, err
	}

	result := csvimport.Result{Errors: []csvimport.RowError{}}
	for _, row := range table.Rows {
		typeName, ok := known[strings.ToLower(row.Get("organizationType"))]
		if !ok {
			result.Fail(row.Line, fmt.Sprintf("unknown organization type '%s'", row.Get("organizationType")))
			continue
		}

		ref := clip(row.Get("referenceId"))
		candidate := &OrganizationDetail{
			LegacyOrganizationName: clip(row.Get("legacyOrganizationName")),
			Organization:           clip(row.Get("organization")),
			OrganizationType:       typeName,
			ReferenceID:            &ref,
		}
		if candidate.DisplayName() == "" {
			result.Fail(row.Line, "organization name is empty")
			continue
		}
		detail := ToDataModel(candidate)
		if err := s.repo.Create(detail); err != nil {
			s.logger.Warn("failed to import organization detail row", "error", err, "line", row.Line)
			result.Fail(row.Line, "failed to save row")
			continue
		}
		result.Imported++
	}

	s.logger.Info("organization details imported", "imported", result.Imported, "skipped", result.Skipped)
	return &ImportResponse{
		Result:  result,
		Message: fmt.Sprintf("Successfully imported %d organization details", result.Imported),
	}, nil
}

// resolveTypeName matches case-insensitively and returns the canonical type name.
func (s *Service) resolveTypeName(requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "", errors.NewValidationFieldError("organizationType", "organizationType is required", errors.ErrCodeValidationFailed)
	}
	known, err := s.typeNames()
	if err != nil {
		return "", err
	}
	name, ok := known[strings.ToLower(requested)]
	if !ok {
		return "", errors.NewValidationFieldError("organizationType",
			fmt.Sprintf("organization type '%s' does not exist", requested), errors.ErrCodeUnknownOrgType)
	}
	return name, nil
}

func (s *Service) typeNames() (map[string]string, error) {
	types, err := s.orgTypes.ListAll()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(types))
	for _, t := range types {
		names[strings.ToLower(t.Name)] = t.Name
	}
	return names, nil
}

func (s *Service) getRow(id int64) (*orgDetailDatamodel.OrganizationDetail, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get organization detail", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to get organization detail", err)
	}
	if row == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Organization detail %d not found", id), errors.ErrCodeOrganizationDetailNotFound)
	}
	return row, nil
}

func validateNames(d *OrganizationDetail) *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("legacyOrganizationName", d.LegacyOrganizationName).MaxLength(maxValueLength)
	validator.Field("organization", d.Organization).MaxLength(maxValueLength)
	validator.Field("referenceId", d.ReferenceID).MaxLength(maxValueLength)
	validator.Field("name", d.DisplayName()).Custom(func(v interface{}) *errors.AppError {
		if v.(string) == "" {
			return errors.NewValidationFieldError("organization", "organization or legacyOrganizationName is required", errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return validator.Validate()
}

// clip drops over-long import values to empty rather than truncating them.
func clip(v string) string {
	if len(v) > maxValueLength {
		return ""
	}
	return v
}

func importError(err error) error {
	if stdErrors.Is(err, csvimport.ErrEmptyFile) || stdErrors.Is(err, csvimport.ErrTooManyRows) {
		return errors.NewValidationError(err.Error(), errors.ErrCodeInvalidFile)
	}
	return errors.NewValidationError("could not read csv file", errors.ErrCodeInvalidFile).WithCause(err)
}
