package user

import (
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/auth"
	"github.com/frahmantamala/role-assignment/internal/core/common/csvimport"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	"github.com/frahmantamala/role-assignment/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
)

type RepositoryAPI interface {
	// List narrows to users holding access to accessTypeID when it is non-nil.
	List(req pagination.Request, accessTypeID *int64) ([]*userDatamodel.User, int64, error)
	GetByID(id int64) (*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	AccessMaps(userIDs []int64) (map[int64]map[int64]bool, error)
	Create(u *userDatamodel.User, access map[int64]bool) error
	// Update saves u; a non-nil access map replaces the stored one.
	Update(u *userDatamodel.User, access map[int64]bool) error
	SetPassword(id int64, hash *string) error
	Delete(id int64) error
	Counts() (Counts, error)
	CountAccess() (map[int64]int64, error)
}

type OrganizationTypeResolver interface {
	GetBySlug(slug string) (*organizationtype.OrganizationType, error)
	ListActive() ([]*organizationtype.OrganizationType, error)
}

type AssignmentStats interface {
	CreatedByStats(userID int64) (map[string]int64, error)
}

type Service struct {
	repo        RepositoryAPI
	orgTypes    OrganizationTypeResolver
	assignments AssignmentStats
	bcryptCost  int
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, orgTypes OrganizationTypeResolver, assignments AssignmentStats, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		orgTypes:    orgTypes,
		assignments: assignments,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

func (s *Service) List(req pagination.Request, filter ListFilter) (pagination.Page[*User], error) {
	var accessTypeID *int64
	if f := strings.TrimSpace(filter.AccessFilter); f != "" && !strings.EqualFold(f, AccessFilterAll) {
		t, err := s.orgTypes.GetBySlug(f)
		if err != nil {
			return pagination.Page[*User]{}, err
		}
		accessTypeID = &t.ID
	}

	rows, total, err := s.repo.List(req, accessTypeID)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return pagination.Page[*User]{}, errors.NewInternalError("failed to list users", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	access, err := s.repo.AccessMaps(ids)
	if err != nil {
		s.logger.Error("failed to load user access", "error", err)
		return pagination.Page[*User]{}, errors.NewInternalError("failed to list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row, access[row.ID]))
	}
	return pagination.NewPage(users, total, req), nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}
	return s.withAccess(row)
}

func (s *Service) Create(req CreateRequest) (*User, error) {
	row := &userDatamodel.User{
		Email:      strings.TrimSpace(req.Email),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Company:    strings.TrimSpace(req.Company),
		EmployeeID: strings.TrimSpace(req.EmployeeID),
		PositionID: strings.TrimSpace(req.PositionID),
		Role:       NormalizeRole(req.Role),
	}
	if appErr := validate(row); appErr != nil {
		return nil, appErr
	}
	if err := s.ensureEmailFree(row.Email, 0); err != nil {
		return nil, err
	}
	if err := s.applyPassword(row, req.Password); err != nil {
		return nil, err
	}

	access := req.OrganizationAccess
	if access == nil {
		access = map[int64]bool{}
	}
	if err := s.repo.Create(row, access); err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, errors.NewInternalError("failed to create user", err)
	}
	s.logger.Info("user created", "user_id", row.ID, "role", row.Role)
	return s.withAccess(row)
}

func (s *Service) Update(id int64, req UpdateRequest) (*User, error) {
	row, err := s.getRow(id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		row.Email = strings.TrimSpace(*req.Email)
	}
	if req.FirstName != nil {
		row.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		row.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Company != nil {
		row.Company = strings.TrimSpace(*req.Company)
	}
	if req.EmployeeID != nil {
		row.EmployeeID = strings.TrimSpace(*req.EmployeeID)
	}
	if req.PositionID != nil {
		row.PositionID = strings.TrimSpace(*req.PositionID)
	}
	if req.Role != nil {
		row.Role = NormalizeRole(*req.Role)
	}
	if appErr := validate(row); appErr != nil {
		return nil, appErr
	}
	if err := s.ensureEmailFree(row.Email, row.ID); err != nil {
		return nil, err
	}
	// an empty password on update leaves the stored one untouched
	if req.Password != nil && *req.Password != "" {
		if err := s.applyPassword(row, req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(row, req.OrganizationAccess); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, errors.NewInternalError("failed to update user", err)
	}
	return s.withAccess(row)
}

// Delete removes a user. Admins cannot remove their own account.
func (s *Service) Delete(actor *coreUser.User, id int64) error {
	if _, err := s.getRow(id); err != nil {
		return err
	}
	if actor != nil && actor.ID == id {
		return errors.NewForbiddenError("You cannot delete your own account", errors.ErrCodeAccessDenied)
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return errors.NewInternalError("failed to delete user", err)
	}
	return nil
}

// ResetPassword clears the stored password; the user sets a new one at next login.
func (s *Service) ResetPassword(id int64) (*MessageResponse, error) {
	if _, err := s.getRow(id); err != nil {
		return nil, err
	}
	if err := s.repo.SetPassword(id, nil); err != nil {
		s.logger.Error("failed to reset password", "error", err, "user_id", id)
		return nil, errors.NewInternalError("failed to reset password", err)
	}
	s.logger.Info("password reset", "user_id", id)
	return &MessageResponse{Message: "Password reset successfully. User must set a new password on next login."}, nil
}

func (s *Service) Stats() (Stats, error) {
	counts, err := s.repo.Counts()
	if err != nil {
		s.logger.Error("failed to count users", "error", err)
		return nil, errors.NewInternalError("failed to load user stats", err)
	}
	perType, err := s.repo.CountAccess()
	if err != nil {
		s.logger.Error("failed to count user access", "error", err)
		return nil, errors.NewInternalError("failed to load user stats", err)
	}
	types, err := s.orgTypes.ListActive()
	if err != nil {
		return nil, err
	}

	stats := Stats{
		"totalUsers":         counts.Total,
		"adminUsers":         counts.Admins,
		"regularUsers":       counts.Total - counts.Admins,
		"mustChangePassword": counts.MustChangePassword,
	}
	for _, t := range types {
		stats["access_"+t.Slug] = perType[t.ID]
	}
	return stats, nil
}

func (s *Service) MyAssignmentStats(actor *coreUser.User) (map[string]int64, error) {
	if actor == nil {
		return nil, errors.ErrInvalidToken
	}
	return s.assignments.CreatedByStats(actor.ID)
}

var importColumns = []csvimport.Column{
	{Field: "email", AllOf: []string{"email"}},
	{Field: "firstName", AllOf: []string{"first", "name"}},
	{Field: "lastName", AllOf: []string{"last", "name"}},
	{Field: "password", AllOf: []string{"password"}},
	{Field: "role", AllOf: []string{"role"}},
	{Field: "company", AllOf: []string{"company"}},
	{Field: "employeeId", AllOf: []string{"employee", "id"}},
	{Field: "positionId", AllOf: []string{"position", "id"}},
}

// ImportCSV creates users from a headed file. Rows whose email already exists are skipped.
func (s *Service) ImportCSV(r io.Reader) (*ImportResponse, error) {
	table, err := csvimport.Parse(r, csvimport.Options{Columns: importColumns})
	if err != nil {
		if stdErrors.Is(err, csvimport.ErrEmptyFile) || stdErrors.Is(err, csvimport.ErrTooManyRows) {
			return nil, errors.NewValidationError(err.Error(), errors.ErrCodeInvalidFile)
		}
		return nil, errors.NewValidationError("could not read csv file", errors.ErrCodeInvalidFile).WithCause(err)
	}
	for _, required := range []string{"email", "firstName", "lastName"} {
		if !table.Has(required) {
			return nil, errors.NewValidationFieldError("file", fmt.Sprintf("CSV must contain a %s column", required), errors.ErrCodeInvalidFile)
		}
	}

	result := csvimport.Result{Errors: []csvimport.RowError{}}
	for _, row := range table.Rows {
		req := CreateRequest{
			Email:      row.Get("email"),
			FirstName:  row.Get("firstName"),
			LastName:   row.Get("lastName"),
			Company:    row.Get("company"),
			EmployeeID: row.Get("employeeId"),
			PositionID: row.Get("positionId"),
			Role:       row.Get("role"),
		}
		if p := row.Get("password"); p != "" {
			req.Password = &p
		}
		if req.Email == "" || req.FirstName == "" || req.LastName == "" {
			result.Fail(row.Line, "email, first name and last name are required")
			continue
		}
		if _, err := s.Create(req); err != nil {
			reason := "failed to save row"
			if appErr, ok := errors.IsAppError(err); ok {
				reason = appErr.GetDetailedMessage()
			}
			result.Fail(row.Line, reason)
			continue
		}
		result.Imported++
	}

	s.logger.Info("users imported", "imported", result.Imported, "skipped", result.Skipped)
	return &ImportResponse{
		Result:  result,
		Message: fmt.Sprintf("Successfully imported %d users", result.Imported),
	}, nil
}

func (s *Service) getRow(id int64) (*userDatamodel.User, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, errors.NewInternalError("failed to get user", err)
	}
	if row == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("User %d not found", id), errors.ErrCodeUserNotFound)
	}
	return row, nil
}

func (s *Service) withAccess(row *userDatamodel.User) (*User, error) {
	access, err := s.repo.AccessMaps([]int64{row.ID})
	if err != nil {
		s.logger.Error("failed to load user access", "error", err, "user_id", row.ID)
		return nil, errors.NewInternalError("failed to load user", err)
	}
	return FromDataModel(row, access[row.ID]), nil
}

func (s *Service) ensureEmailFree(email string, selfID int64) error {
	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		s.logger.Error("failed to check email", "error", err)
		return errors.NewInternalError("failed to save user", err)
	}
	if existing != nil && existing.ID != selfID {
		return errors.NewConflictError(fmt.Sprintf("A user with email %s already exists", email), errors.ErrCodeEmailConflict)
	}
	return nil
}

// applyPassword hashes password onto row; nil or empty stores NULL.
func (s *Service) applyPassword(row *userDatamodel.User, password *string) error {
	if password == nil || *password == "" {
		row.Password = nil
		return nil
	}
	if appErr := validation.ValidatePassword(*password); appErr != nil {
		return appErr
	}
	hash, err := auth.HashPassword(*password, s.bcryptCost)
	if err != nil {
		return errors.NewInternalError("failed to hash password", err)
	}
	row.Password = &hash
	return nil
}

func validate(u *userDatamodel.User) *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("email", u.Email).Required().MaxLength(200)
	validator.Field("firstName", u.FirstName).MaxLength(100)
	validator.Field("lastName", u.LastName).MaxLength(100)
	validator.Field("company", u.Company).MaxLength(200)
	validator.Field("role", u.Role).OneOf(coreUser.RoleAdmin, coreUser.RoleUser)
	return validator.Validate()
}
