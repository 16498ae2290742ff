package auth

import (
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
)

// AccessChecker answers the two questions route guards ask about a principal.
type AccessChecker interface {
	IsAdmin(u *coreUser.User) bool
	CanAccessOrganizationType(u *coreUser.User, organizationTypeID int64) bool
}

type DefaultAccessChecker struct{}

func NewAccessChecker() AccessChecker {
	return &DefaultAccessChecker{}
}

func (c *DefaultAccessChecker) IsAdmin(u *coreUser.User) bool {
	return u.IsAdmin()
}

// CanAccessOrganizationType denies unknown types for non-admins.
func (c *DefaultAccessChecker) CanAccessOrganizationType(u *coreUser.User, organizationTypeID int64) bool {
	return u.HasAccess(organizationTypeID)
}
