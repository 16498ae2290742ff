package assignment

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	"github.com/frahmantamala/role-assignment/internal/core/common/validation"
	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	"github.com/frahmantamala/role-assignment/internal/core/events"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/employee"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/organizationdetail"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
)

type RepositoryAPI interface {
	List(typeName string, req pagination.Request) ([]*assignmentDatamodel.Row, int64, error)
	ListByType(typeName string) ([]*assignmentDatamodel.Row, error)
	ListByDetail(detailID int64) ([]*assignmentDatamodel.Row, error)
	GetRow(id int64) (*assignmentDatamodel.Row, error)
	GetByID(id int64) (*assignmentDatamodel.Assignment, error)
	Exists(employeeID, detailID int64) (bool, error)
	Values(assignmentIDs []int64) ([]assignmentDatamodel.StoredValue, error)
	// Create inserts a and its values in one transaction, filling AssignmentID.
	Create(a *assignmentDatamodel.Assignment, values []assignmentDatamodel.FieldValue) error
	ReplaceValues(assignmentID int64, values []assignmentDatamodel.FieldValue) error
	Delete(id int64) error
	// CountByType groups by organization type name; createdBy narrows to one author.
	CountByType(createdBy *int64) (map[string]int64, error)
}

type OrganizationTypeResolver interface {
	GetBySlug(slug string) (*organizationtype.OrganizationType, error)
	GetByName(name string) (*organizationtype.OrganizationType, error)
	ListActive() ([]*organizationtype.OrganizationType, error)
}

type FieldDefinitionLister interface {
	ListActive(orgTypeID int64) ([]*fielddefinition.FieldDefinition, error)
}

type OrganizationDetailFinder interface {
	GetByID(id int64) (*organizationdetail.OrganizationDetail, error)
}

type EmployeeDirectory interface {
	EmployeeFinder
	GetByID(id int64) (*employee.Employee, error)
}

type ServiceDeps struct {
	Repo       RepositoryAPI
	OrgTypes   OrganizationTypeResolver
	Fields     FieldDefinitionLister
	Details    OrganizationDetailFinder
	Employees  EmployeeDirectory
	Publisher  events.Publisher
	Logger     *slog.Logger
	MaxWorkers int
	MaxRows    int
}

type Service struct {
	repo       RepositoryAPI
	orgTypes   OrganizationTypeResolver
	fields     FieldDefinitionLister
	details    OrganizationDetailFinder
	employees  EmployeeDirectory
	publisher  events.Publisher
	logger     *slog.Logger
	maxWorkers int
	maxRows    int
}

func NewService(deps ServiceDeps) *Service {
	maxWorkers := deps.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	maxRows := deps.MaxRows
	if maxRows <= 0 {
		maxRows = 1000
	}
	return &Service{
		repo:       deps.Repo,
		orgTypes:   deps.OrgTypes,
		fields:     deps.Fields,
		details:    deps.Details,
		employees:  deps.Employees,
		publisher:  deps.Publisher,
		logger:     deps.Logger,
		maxWorkers: maxWorkers,
		maxRows:    maxRows,
	}
}

// TypeIDForSlug resolves the organization type a list request targets.
func (s *Service) TypeIDForSlug(slug string) (int64, error) {
	t, err := s.orgTypes.GetBySlug(slug)
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (s *Service) List(actor *coreUser.User, slug string, req pagination.Request) (pagination.Page[*View], error) {
	t, err := s.orgTypes.GetBySlug(slug)
	if err != nil {
		return pagination.Page[*View]{}, err
	}
	if err := authorize(actor, t.ID); err != nil {
		return pagination.Page[*View]{}, err
	}

	rows, total, err := s.repo.List(t.Name, req)
	if err != nil {
		s.logger.Error("failed to list assignments", "error", err, "org_type", t.Slug)
		return pagination.Page[*View]{}, errors.NewInternalError("failed to list assignments", err)
	}
	views, err := s.buildViews(t.ID, rows)
	if err != nil {
		return pagination.Page[*View]{}, err
	}
	return pagination.NewPage(views, total, req), nil
}

func (s *Service) Get(actor *coreUser.User, id int64) (*View, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}
	t, err := s.typeByName(row.OrganizationType)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, t.ID); err != nil {
		return nil, err
	}
	views, err := s.buildViews(t.ID, []*assignmentDatamodel.Row{row})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *Service) ListByOrganizationDetail(actor *coreUser.User, detailID int64) ([]*View, error) {
	detail, err := s.details.GetByID(detailID)
	if err != nil {
		return nil, err
	}
	t, err := s.typeByName(detail.OrganizationType)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, t.ID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByDetail(detailID)
	if err != nil {
		s.logger.Error("failed to list assignments for organization detail", "error", err, "detail_id", detailID)
		return nil, errors.NewInternalError("failed to list assignments", err)
	}
	return s.buildViews(t.ID, rows)
}

// Export returns every assignment of a type with its active definitions, in list order.
func (s *Service) Export(actor *coreUser.User, slug string) (*organizationtype.OrganizationType, []*fielddefinition.FieldDefinition, []*View, error) {
	t, err := s.orgTypes.GetBySlug(slug)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := authorize(actor, t.ID); err != nil {
		return nil, nil, nil, err
	}
	defs, err := s.fields.ListActive(t.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	rows, err := s.repo.ListByType(t.Name)
	if err != nil {
		s.logger.Error("failed to export assignments", "error", err, "org_type", t.Slug)
		return nil, nil, nil, errors.NewInternalError("failed to export assignments", err)
	}
	views, err := s.viewsWithDefs(defs, rows)
	if err != nil {
		return nil, nil, nil, err
	}
	return t, defs, views, nil
}

func (s *Service) Create(ctx context.Context, actor *coreUser.User, req CreateRequest) (*View, error) {
	validator := validation.NewValidator()
	validator.Field("employeeId", req.EmployeeID).Required()
	validator.Field("organizationDetailId", req.OrganizationDetailID).Required()
	if appErr := validator.Validate(); appErr != nil {
		return nil, appErr
	}

	if _, err := s.employees.GetByID(req.EmployeeID); err != nil {
		return nil, err
	}
	detail, err := s.details.GetByID(req.OrganizationDetailID)
	if err != nil {
		return nil, err
	}
	t, err := s.typeByName(detail.OrganizationType)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, t.ID); err != nil {
		return nil, err
	}

	defs, resolved, err := s.resolve(t.ID, req.FieldValues)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(req.EmployeeID, req.OrganizationDetailID)
	if err != nil {
		s.logger.Error("failed to check existing assignment", "error", err)
		return nil, errors.NewInternalError("failed to create assignment", err)
	}
	if exists {
		return nil, duplicate(req.EmployeeID, req.OrganizationDetailID)
	}

	row := &assignmentDatamodel.Assignment{
		EmployeeID:           req.EmployeeID,
		OrganizationDetailID: req.OrganizationDetailID,
	}
	if actor != nil && actor.ID > 0 {
		actorID := actor.ID
		row.CreatedByID = &actorID
	}
	if err := s.repo.Create(row, ValueRows(0, defs, resolved)); err != nil {
		if stdErrors.Is(err, ErrDuplicateAssignment) {
			return nil, duplicate(req.EmployeeID, req.OrganizationDetailID)
		}
		s.logger.Error("failed to create assignment", "error", err,
			"employee_id", req.EmployeeID, "detail_id", req.OrganizationDetailID)
		return nil, errors.NewInternalError("failed to create assignment", err)
	}

	s.publish(ctx, events.AssignmentCreated, row.ID, actor, map[string]interface{}{
		"org_type":     t.Slug,
		"employee_id":  row.EmployeeID,
		"detail_id":    row.OrganizationDetailID,
		"field_values": resolved,
	})
	return s.Get(actor, row.ID)
}

// AssignEmployee creates an assignment for the detail named in the path.
func (s *Service) AssignEmployee(ctx context.Context, actor *coreUser.User, detailID int64, req AssignEmployeeRequest) (*View, error) {
	return s.Create(ctx, actor, CreateRequest{
		EmployeeID:           req.EmployeeID,
		OrganizationDetailID: detailID,
		FieldValues:          req.FieldValues,
	})
}

// Update replaces the values of every active definition; values of inactive
// definitions are kept. Submitting the same set twice is a no-op.
func (s *Service) Update(ctx context.Context, actor *coreUser.User, id int64, req UpdateRequest) (*View, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}
	t, err := s.typeByName(row.OrganizationType)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, t.ID); err != nil {
		return nil, err
	}

	defs, resolved, err := s.resolve(t.ID, req.FieldValues)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceValues(id, ValueRows(id, defs, resolved)); err != nil {
		s.logger.Error("failed to replace assignment values", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to update assignment", err)
	}

	s.publish(ctx, events.AssignmentUpdated, id, actor, map[string]interface{}{
		"org_type":     t.Slug,
		"field_values": resolved,
	})
	return s.Get(actor, id)
}

func (s *Service) Delete(ctx context.Context, actor *coreUser.User, id int64) error {
	row, err := s.getRow(id)
	if err != nil {
		return err
	}
	t, err := s.typeByName(row.OrganizationType)
	if err != nil {
		return err
	}
	if err := authorize(actor, t.ID); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete assignment", "error", err, "id", id)
		return errors.NewInternalError("failed to delete assignment", err)
	}

	s.publish(ctx, events.AssignmentDeleted, id, actor, map[string]interface{}{
		"org_type":    t.Slug,
		"employee_id": row.EmployeeID,
		"detail_id":   row.OrganizationDetailID,
	})
	return nil
}

// Stats counts assignments for every active type the actor can open.
func (s *Service) Stats(actor *coreUser.User) (Stats, error) {
	types, err := s.orgTypes.ListActive()
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByType(nil)
	if err != nil {
		s.logger.Error("failed to count assignments", "error", err)
		return nil, errors.NewInternalError("failed to load assignment stats", err)
	}
	stats := Stats{}
	for _, t := range types {
		if actor.HasAccess(t.ID) {
			stats[t.ID] = counts[t.Name]
		}
	}
	return stats, nil
}

// CreatedByStats counts assignments authored by userID, keyed by type slug.
func (s *Service) CreatedByStats(userID int64) (map[string]int64, error) {
	types, err := s.orgTypes.ListActive()
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByType(&userID)
	if err != nil {
		s.logger.Error("failed to count assignments by author", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to load assignment stats", err)
	}
	stats := make(map[string]int64, len(types))
	for _, t := range types {
		stats[t.Slug] = counts[t.Name]
	}
	return stats, nil
}

// ValidateRows resolves each pending row independently.
func (s *Service) ValidateRows(rows []ValidateRowRequest) ([]*PendingRow, error) {
	if len(rows) > s.maxRows {
		return nil, errors.NewValidationError(fmt.Sprintf("at most %d rows can be validated at once", s.maxRows), errors.ErrCodeInvalidRequest)
	}
	out := make([]*PendingRow, 0, len(rows))
	for _, req := range rows {
		row := NewPendingRow(req)
		if err := row.Validate(s.employees); err != nil {
			s.logger.Warn("failed to validate pending row", "error", err, "row_id", row.RowID)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Service) buildViews(orgTypeID int64, rows []*assignmentDatamodel.Row) ([]*View, error) {
	defs, err := s.fields.ListActive(orgTypeID)
	if err != nil {
		return nil, err
	}
	return s.viewsWithDefs(defs, rows)
}

// viewsWithDefs batch-loads values for rows, matched by definition id. Active
// keys without a stored value read as false.
func (s *Service) viewsWithDefs(defs []*fielddefinition.FieldDefinition, rows []*assignmentDatamodel.Row) ([]*View, error) {
	views := make([]*View, 0, len(rows))
	if len(rows) == 0 {
		return views, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	stored, err := s.repo.Values(ids)
	if err != nil {
		s.logger.Error("failed to load assignment values", "error", err, "count", len(ids))
		return nil, errors.NewInternalError("failed to load assignment values", err)
	}

	keyByDef := make(map[int64]string, len(defs))
	for _, d := range defs {
		keyByDef[d.ID] = d.FieldKey
	}
	byAssignment := make(map[int64]map[string]bool, len(rows))
	for _, row := range rows {
		values := make(map[string]bool, len(defs))
		for _, d := range defs {
			values[d.FieldKey] = false
		}
		byAssignment[row.ID] = values
	}
	for _, v := range stored {
		key, active := keyByDef[v.FieldDefinitionID]
		if !active {
			continue
		}
		if values, ok := byAssignment[v.AssignmentID]; ok {
			values[key] = v.FieldValue
		}
	}

	for _, row := range rows {
		views = append(views, ViewFromRow(row, byAssignment[row.ID]))
	}
	return views, nil
}

func (s *Service) resolve(orgTypeID int64, submitted map[string]bool) ([]*fielddefinition.FieldDefinition, map[string]bool, error) {
	defs, err := s.fields.ListActive(orgTypeID)
	if err != nil {
		return nil, nil, err
	}
	resolved, unknown := ResolveValues(defs, submitted)
	if len(unknown) > 0 {
		sort.Strings(unknown)
		validationErrors := make([]errors.ValidationError, 0, len(unknown))
		for _, key := range unknown {
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   "fieldValues." + key,
				Message: fmt.Sprintf("unknown field key '%s'", key),
				Code:    string(errors.ErrCodeUnknownFieldKey),
			})
		}
		return nil, nil, errors.NewValidationError(
			fmt.Sprintf("Unknown field keys: %s", strings.Join(unknown, ", ")),
			errors.ErrCodeUnknownFieldKey,
		).WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}
	return defs, resolved, nil
}

func (s *Service) typeByName(name string) (*organizationtype.OrganizationType, error) {
	t, err := s.orgTypes.GetByName(name)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeOrganizationTypeNotFound) {
			return nil, errors.NewValidationFieldError("organizationType",
				fmt.Sprintf("organization type '%s' does not exist", name), errors.ErrCodeUnknownOrgType)
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) getRow(id int64) (*assignmentDatamodel.Row, error) {
	row, err := s.repo.GetRow(id)
	if err != nil {
		s.logger.Error("failed to get assignment", "error", err, "id", id)
		return nil, errors.NewInternalError("failed to get assignment", err)
	}
	if row == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("Assignment %d not found", id), errors.ErrCodeAssignmentNotFound)
	}
	return row, nil
}

func (s *Service) publish(ctx context.Context, eventType string, assignmentID int64, actor *coreUser.User, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	if err := s.publisher.Publish(ctx, events.NewAssignmentEvent(eventType, assignmentID, actorID, data)); err != nil {
		s.logger.Warn("failed to publish assignment event", "error", err, "event_type", eventType, "id", assignmentID)
	}
}

func authorize(actor *coreUser.User, orgTypeID int64) error {
	if !actor.HasAccess(orgTypeID) {
		return errors.ErrAccessDenied
	}
	return nil
}

func duplicate(employeeID, detailID int64) error {
	return errors.NewConflictError(
		fmt.Sprintf("Employee %d is already assigned to organization detail %d", employeeID, detailID),
		errors.ErrCodeAssignmentConflict,
	)
}
