package user

// Role values stored in users.role.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the authenticated principal carried through request contexts.
type User struct {
	ID                 int64          `json:"id"`
	Email              string         `json:"email"`
	FirstName          string         `json:"firstName"`
	LastName           string         `json:"lastName"`
	Role               string         `json:"role"`
	MustChangePassword bool           `json:"mustChangePassword"`
	OrganizationAccess map[int64]bool `json:"organizationAccess"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasAccess is fail-closed: unknown organization types are denied for non-admins.
func (u *User) HasAccess(organizationTypeID int64) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return u.OrganizationAccess[organizationTypeID]
}

func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
