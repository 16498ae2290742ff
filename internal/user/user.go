package user

import (
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
)

type User struct {
	ID                 int64          `json:"id"`
	Email              string         `json:"email"`
	FirstName          string         `json:"firstName"`
	LastName           string         `json:"lastName"`
	Company            string         `json:"company"`
	EmployeeID         string         `json:"employeeId"`
	PositionID         string         `json:"positionId"`
	Role               string         `json:"role"`
	MustChangePassword bool           `json:"mustChangePassword"`
	OrganizationAccess map[int64]bool `json:"organizationAccess"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// IsAdmin mirrors the session principal's role check.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == coreUser.RoleAdmin
}

func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return coreUser.RoleUser
	}
	return role
}

func FromDataModel(u *userDatamodel.User, access map[int64]bool) *User {
	if access == nil {
		access = map[int64]bool{}
	}
	return &User{
		ID:                 u.ID,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Company:            u.Company,
		EmployeeID:         u.EmployeeID,
		PositionID:         u.PositionID,
		Role:               u.Role,
		MustChangePassword: u.Password == nil || *u.Password == "",
		OrganizationAccess: access,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
