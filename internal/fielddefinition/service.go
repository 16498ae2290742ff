package fielddefinition

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/validation"
	fieldDefDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
)

type RepositoryAPI interface {
	List(orgTypeID int64, activeOnly bool) ([]*fieldDefDatamodel.FieldDefinition, error)
	GetByID(id int64) (*fieldDefDatamodel.FieldDefinition, error)
	GetByKey(orgTypeID int64, key string) (*fieldDefDatamodel.FieldDefinition, error)
	Create(d *fieldDefDatamodel.FieldDefinition) error
	Update(d *fieldDefDatamodel.FieldDefinition) error
	SetActive(id int64, active bool) error
	CountValues(id int64) (int64, error)
	// HardDelete removes the definition and its stored values atomically.
	HardDelete(id int64) (int64, error)
}

type OrganizationTypeFinder interface {
	GetByID(id int64) (*organizationtype.OrganizationType, error)
	GetBySlug(slug string) (*organizationtype.OrganizationType, error)
}

type Service struct {
	repo     RepositoryAPI
	orgTypes OrganizationTypeFinder
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, orgTypes OrganizationTypeFinder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		orgTypes: orgTypes,
		logger:   logger,
	}
}

func (s *Service) List(orgTypeID int64, activeOnly bool) ([]*FieldDefinition, error) {
	rows, err := s.repo.List(orgTypeID, activeOnly)
	if err != nil {
		s.logger.Error("failed to list field definitions", "error", err, "org_type_id", orgTypeID)
		return nil, errors.NewInternalError("failed to list field definitions", err)
	}
	defs := make([]*FieldDefinition, 0, len(rows))
	for _, row := range rows {
		defs = append(defs, FromDataModel(row))
	}
	return defs, nil
}

// ListActive is the key set an assignment of the type stores.
func (s *Service) ListActive(orgTypeID int64) ([]*FieldDefinition, error) {
	return s.List(orgTypeID, true)
}

func (s *Service) ListActiveBySlug(slug string) ([]*FieldDefinition, error) {
	t, err := s.orgTypes.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	return s.List(t.ID, true)
}

func (s *Service) GetByID(id int64) (*FieldDefinition, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(req CreateRequest) (*FieldDefinition, error) {
	req.FieldKey = strings.TrimSpace(req.FieldKey)
	req.FieldTitle = strings.TrimSpace(req.FieldTitle)

	validator := validation.NewValidator()
	validator.Field("organizationTypeId", req.OrganizationTypeID).Required()
	validator.Field("fieldTitle", req.FieldTitle).Required().MaxLength(200)
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}
	if appErr := validation.ValidateFieldKey(req.FieldKey); appErr != nil {
		return nil, appErr
	}

	if _, err := s.orgTypes.GetByID(req.OrganizationTypeID); err != nil {
		return nil, err
	}
	if err := s.ensureKeyFree(req.OrganizationTypeID, req.FieldKey, 0); err != nil {
		return nil, err
	}

	row := ToDataModel(&FieldDefinition{
		OrganizationTypeID: req.OrganizationTypeID,
		FieldKey:           req.FieldKey,
		FieldTitle:         req.FieldTitle,
		FieldDescription:   strings.TrimSpace(req.FieldDescription),
		DisplayOrder:       req.DisplayOrder,
		Active:             true,
	})
	if err := s.repo.Create(row); err != nil {
		if stdErrors.Is(err, ErrDuplicateFieldKey) {
			return nil, keyConflict(req.FieldKey)
		}
		s.logger.Error("failed to create field definition", "error", err, "field_key", req.FieldKey)
		return nil, errors.NewInternalError("failed to create field definition", err)
	}

	s.logger.Info("field definition created", "id", row.ID, "org_type_id", row.OrganizationTypeID, "field_key", row.FieldKey)
	return FromDataModel(row), nil
}

func (s *Service) Update(id int64, req UpdateRequest) (*FieldDefinition, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}

	if req.FieldKey != nil {
		key := strings.TrimSpace(*req.FieldKey)
		if key != row.FieldKey {
			if appErr := validation.ValidateFieldKey(key); appErr != nil {
				return nil, appErr
			}
			if err := s.ensureKeyFree(row.OrganizationTypeID, key, row.ID); err != nil {
				return nil, err
			}
			refs, err := s.countValues(row.ID)
			if err != nil {
				return nil, err
			}
			if refs > 0 {
				return nil, errors.NewConflictError(
					fmt.Sprintf("Field key '%s' is used by %d stored values and cannot be renamed", row.FieldKey, refs),
					errors.ErrCodeFieldInUse,
				).WithDetails(InUseDetails{FieldDefinitionID: row.ID, ReferenceCount: refs})
			}
			row.FieldKey = key
		}
	}
	if req.FieldTitle != nil {
		title := strings.TrimSpace(*req.FieldTitle)
		validator := validation.NewValidator()
		validator.Field("fieldTitle", title).Required().MaxLength(200)
		if appErr := validator.Validate(); appErr != nil {
			return nil, appErr
		}
		row.FieldTitle = title
	}
	if req.FieldDescription != nil {
		row.FieldDescription = strings.TrimSpace(*req.FieldDescription)
	}
	if req.DisplayOrder != nil {
		row.DisplayOrder = *req.DisplayOrder
	}
	if req.Active != nil {
		row.Active = *req.Active
	}

	if err := s.repo.Update(row); err != nil {
		if stdErrors.Is(err, ErrDuplicateFieldKey) {
			return nil, keyConflict(row.FieldKey)
		}
		s.logger.Error("failed to update field definition", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to update field definition", err)
	}
	return FromDataModel(row), nil
}

// Delete deactivates the definition; stored values are kept.
func (s *Service) Delete(id int64) error {
	if _, err := s.getRow(id); err != nil {
		return err
	}
	if err := s.repo.SetActive(id, false); err != nil {
		s.logger.Error("failed to deactivate field definition", "error", err, "id", id)
		return errors.NewInternalError("failed to delete field definition", err)
	}
	return nil
}

// HardDelete removes the definition. Referenced definitions need force, which
// also drops every stored value of the flag.
func (s *Service) HardDelete(id int64, force bool) (*HardDeleteResponse, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}

	refs, err := s.countValues(id)
	if err != nil {
		return nil, err
	}
	if refs > 0 && !force {
		return nil, errors.NewConflictError(
			fmt.Sprintf("Field definition '%s' is referenced by %d stored values; pass force=true to delete them", row.FieldKey, refs),
			errors.ErrCodeFieldInUse,
		).WithDetails(InUseDetails{FieldDefinitionID: id, ReferenceCount: refs})
	}

	dropped, err := s.repo.HardDelete(id)
	if err != nil {
		s.logger.Error("failed to hard delete field definition", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to delete field definition", err)
	}
	if dropped > 0 {
		s.logger.Warn("field definition hard deleted with stored values",
			"id", id, "field_key", row.FieldKey, "values_dropped", dropped)
	}
	return &HardDeleteResponse{Deleted: true, ValuesDropped: dropped}, nil
}

func (s *Service) getRow(id int64) (*fieldDefDatamodel.FieldDefinition, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get field definition", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to get field definition", err)
	}
	if row == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Field definition %d not found", id), errors.ErrCodeFieldDefinitionNotFound)
	}
	return row, nil
}

func (s *Service) countValues(id int64) (int64, error) {
	refs, err := s.repo.CountValues(id)
	if err != nil {
		s.logger.Error("failed to count field values", "error", err, "id", id)
		return 0, errors.NewInternalError("failed to count field values", err)
	}
	return refs, nil
}

func (s *Service) ensureKeyFree(orgTypeID int64, key string, selfID int64) error {
	existing, err := s.repo.GetByKey(orgTypeID, key)
	if err != nil {
		s.logger.Error("failed to check field key", "error", err, "field_key", key)
		return errors.NewInternalError("failed to check field key", err)
	}
	if existing != nil && existing.ID != selfID {
		return keyConflict(key)
	}
	return nil
}

func keyConflict(key string) error {
	return errors.NewConflictError(
		fmt.Sprintf("Field key '%s' already exists for this organization type", key),
		errors.ErrCodeFieldKeyConflict,
	)
}
