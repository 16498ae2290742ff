package organizationtype

import (
	"errors"
	"time"

	orgTypeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationtype"
)

// ErrDuplicateOrganizationType is returned by repositories when the name or
// slug is already taken.
var ErrDuplicateOrganizationType = errors.New("organization type already exists")

type OrganizationType struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	DisplayName  string    `json:"displayName"`
	IconName     string    `json:"iconName"`
	DisplayOrder int       `json:"displayOrder"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Label is what menus show; DisplayName falls back to Name.
func (t *OrganizationType) Label() string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}

func ToDataModel(t *OrganizationType) *orgTypeDatamodel.OrganizationType {
	return &orgTypeDatamodel.OrganizationType{
		ID:           t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		DisplayName:  t.DisplayName,
		IconName:     t.IconName,
		DisplayOrder: t.DisplayOrder,
		Active:       t.Active,
		CreatedAt:    t.CreatedAt,
	}
}

func FromDataModel(t *orgTypeDatamodel.OrganizationType) *OrganizationType {
	return &OrganizationType{
		ID:           t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		DisplayName:  t.DisplayName,
		IconName:     t.IconName,
		DisplayOrder: t.DisplayOrder,
		Active:       t.Active,
		CreatedAt:    t.CreatedAt,
	}
}
