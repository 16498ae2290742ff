package organizationtype

import (
	stdErrors "errors"
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/slug"
	"github.com/frahmantamala/role-assignment/internal/core/common/validation"
	orgTypeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationtype"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
)

type RepositoryAPI interface {
	GetAll(activeOnly bool) ([]*orgTypeDatamodel.OrganizationType, error)
	GetByID(id int64) (*orgTypeDatamodel.OrganizationType, error)
	GetBySlug(slug string) (*orgTypeDatamodel.OrganizationType, error)
	GetByName(name string) (*orgTypeDatamodel.OrganizationType, error)
	Create(t *orgTypeDatamodel.OrganizationType) error
	// Update saves t and, when previousName differs, rewrites organization
	// details that reference the previous name in the same transaction.
	Update(t *orgTypeDatamodel.OrganizationType, previousName string) error
	SetActive(id int64, active bool) error
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

func (s *Service) ListAll() ([]*OrganizationType, error) {
	return s.list(false)
}

func (s *Service) ListActive() ([]*OrganizationType, error) {
	return s.list(true)
}

func (s *Service) list(activeOnly bool) ([]*OrganizationType, error) {
	rows, err := s.repo.GetAll(activeOnly)
	if err != nil {
		s.logger.Error("failed to list organization types", "error", err, "active_only", activeOnly)
		return nil, errors.NewInternalError("failed to list organization types", err)
	}
	types := make([]*OrganizationType, 0, len(rows))
	for _, row := range rows {
		types = append(types, FromDataModel(row))
	}
	return types, nil
}

// Menu lists the active types the actor may open.
func (s *Service) Menu(actor *coreUser.User) ([]MenuItem, error) {
	types, err := s.ListActive()
	if err != nil {
		return nil, err
	}
	items := make([]MenuItem, 0, len(types))
	for _, t := range types {
		if !actor.HasAccess(t.ID) {
			continue
		}
		items = append(items, MenuItem{ID: t.ID, Slug: t.Slug, DisplayName: t.Label(), IconName: t.IconName})
	}
	return items, nil
}

func (s *Service) GetByID(id int64) (*OrganizationType, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get organization type", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to get organization type", err)
	}
	if row == nil {
		return nil, notFound(fmt.Sprintf("Organization type %d not found", id))
	}
	return FromDataModel(row), nil
}

func (s *Service) GetBySlug(value string) (*OrganizationType, error) {
	row, err := s.repo.GetBySlug(strings.ToLower(strings.TrimSpace(value)))
	if err != nil {
		s.logger.Error("failed to get organization type by slug", "error", err, "slug", value)
		return nil, errors.NewInternalError("failed to get organization type", err)
	}
	if row == nil {
		return nil, notFound(fmt.Sprintf("Organization type '%s' not found", value))
	}
	return FromDataModel(row), nil
}

// GetByName resolves the type referenced by an organization detail.
func (s *Service) GetByName(name string) (*OrganizationType, error) {
	row, err := s.repo.GetByName(strings.TrimSpace(name))
	if err != nil {
		s.logger.Error("failed to get organization type by name", "error", err, "name", name)
		return nil, errors.NewInternalError("failed to get organization type", err)
	}
	if row == nil {
		return nil, notFound(fmt.Sprintf("Organization type '%s' not found", name))
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(req CreateRequest) (*OrganizationType, error) {
	req.Name = strings.TrimSpace(req.Name)
	validator := validation.NewValidator()
	validator.Field("name", req.Name).Required().MaxLength(100)
	validator.Field("displayName", req.DisplayName).MaxLength(200)
	validator.Field("iconName", req.IconName).MaxLength(100)
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}

	typeSlug, appErr := resolveSlug(req.Slug, req.Name)
	if appErr != nil {
		return nil, appErr
	}
	if err := s.ensureUnique(0, req.Name, typeSlug); err != nil {
		return nil, err
	}

	t := &OrganizationType{
		Name:         req.Name,
		Slug:         typeSlug,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		IconName:     strings.TrimSpace(req.IconName),
		DisplayOrder: req.DisplayOrder,
		Active:       true,
	}
	row := ToDataModel(t)
	if err := s.repo.Create(row); err != nil {
		if stdErrors.Is(err, ErrDuplicateOrganizationType) {
			return nil, typeConflict(t.Name, t.Slug)
		}
		s.logger.Error("failed to create organization type", "error", err, "name", t.Name)
		return nil, errors.NewInternalError("failed to create organization type", err)
	}

	s.logger.Info("organization type created", "id", row.ID, "slug", row.Slug)
	return FromDataModel(row), nil
}

func (s *Service) Update(id int64, req UpdateRequest) (*OrganizationType, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get organization type", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to get organization type", err)
	}
	if row == nil {
		return nil, notFound(fmt.Sprintf("Organization type %d not found", id))
	}

	previousName := row.Name
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		validator := validation.NewValidator()
		validator.Field("name", name).Required().MaxLength(100)
		if appErr := validator.Validate(); appErr != nil {
			return nil, appErr
		}
		row.Name = name
	}
	if req.Slug != nil {
		typeSlug, appErr := resolveSlug(*req.Slug, row.Name)
		if appErr != nil {
			return nil, appErr
		}
		row.Slug = typeSlug
	}
	if req.DisplayName != nil {
		row.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.IconName != nil {
		row.IconName = strings.TrimSpace(*req.IconName)
	}
	if req.DisplayOrder != nil {
		row.DisplayOrder = *req.DisplayOrder
	}
	if req.Active != nil {
		row.Active = *req.Active
	}

	if err := s.ensureUnique(row.ID, row.Name, row.Slug); err != nil {
		return nil, err
	}

	if err := s.repo.Update(row, previousName); err != nil {
		if stdErrors.Is(err, ErrDuplicateOrganizationType) {
			return nil, typeConflict(row.Name, row.Slug)
		}
		s.logger.Error("failed to update organization type", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to update organization type", err)
	}
	if previousName != row.Name {
		s.logger.Info("organization type renamed", "id", id, "from", previousName, "to", row.Name)
	}
	return FromDataModel(row), nil
}

// Delete is a soft delete: the type disappears from active listings.
func (s *Service) Delete(id int64) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.SetActive(id, false); err != nil {
		s.logger.Error("failed to deactivate organization type", "error", err, "id", id)
		return errors.NewInternalError("failed to delete organization type", err)
	}
	s.logger.Info("organization type deactivated", "id", id)
	return nil
}

func (s *Service) ensureUnique(selfID int64, name, typeSlug string) error {
	byName, err := s.repo.GetByName(name)
	if err != nil {
		s.logger.Error("failed to check organization type name", "error", err, "name", name)
		return errors.NewInternalError("failed to check organization type", err)
	}
	if byName != nil && byName.ID != selfID {
		return errors.NewConflictError(fmt.Sprintf("Organization type '%s' already exists", name), errors.ErrCodeOrganizationTypeConflict)
	}

	bySlug, err := s.repo.GetBySlug(typeSlug)
	if err != nil {
		s.logger.Error("failed to check organization type slug", "error", err, "slug", typeSlug)
		return errors.NewInternalError("failed to check organization type", err)
	}
	if bySlug != nil && bySlug.ID != selfID {
		return errors.NewConflictError(fmt.Sprintf("Slug '%s' is already in use", typeSlug), errors.ErrCodeOrganizationTypeConflict)
	}
	return nil
}

func typeConflict(name, typeSlug string) error {
	return errors.NewConflictError(
		fmt.Sprintf("Organization type '%s' or slug '%s' already exists", name, typeSlug),
		errors.ErrCodeOrganizationTypeConflict,
	)
}

func resolveSlug(requested, name string) (string, *errors.AppError) {
	value := strings.TrimSpace(requested)
	if value == "" {
		value = name
	}
	typeSlug := slug.Make(value)
	if !slug.Valid(typeSlug) || len(typeSlug) > 100 {
		return "", errors.NewValidationFieldError("slug", "slug must contain letters or digits", errors.ErrCodeInvalidSlug)
	}
	return typeSlug, nil
}

func notFound(message string) *errors.AppError {
	return errors.NewNotFoundError(message, errors.ErrCodeOrganizationTypeNotFound)
}
