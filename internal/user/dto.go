package user

import "github.com/frahmantamala/role-assignment/internal/core/common/csvimport"

type CreateRequest struct {
	Email              string         `json:"email"`
	FirstName          string         `json:"firstName"`
	LastName           string         `json:"lastName"`
	Company            string         `json:"company"`
	EmployeeID         string         `json:"employeeId"`
	PositionID         string         `json:"positionId"`
	Password           *string        `json:"password"`
	Role               string         `json:"role"`
	OrganizationAccess map[int64]bool `json:"organizationAccess"`
}

// UpdateRequest is partial. A non-nil OrganizationAccess replaces the stored map.
type UpdateRequest struct {
	Email              *string        `json:"email"`
	FirstName          *string        `json:"firstName"`
	LastName           *string        `json:"lastName"`
	Company            *string        `json:"company"`
	EmployeeID         *string        `json:"employeeId"`
	PositionID         *string        `json:"positionId"`
	Password           *string        `json:"password"`
	Role               *string        `json:"role"`
	OrganizationAccess map[int64]bool `json:"organizationAccess"`
}

const AccessFilterAll = "all"

type ListFilter struct {
	// AccessFilter is "all" or an organization type slug.
	AccessFilter string
}

// Counts is the role breakdown behind the stats endpoint.
type Counts struct {
	Total              int64
	Admins             int64
	MustChangePassword int64
}

type Stats map[string]int64

type ImportResponse struct {
	csvimport.Result
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
