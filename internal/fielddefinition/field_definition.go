package fielddefinition

import (
	"errors"
	"time"

	fieldDefDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/fielddefinition"
)

// ErrDuplicateFieldKey is returned by repositories when the key already
// exists for the organization type.
var ErrDuplicateFieldKey = errors.New("field key already exists")

// FieldDefinition is one boolean role flag available on assignments of a type.
type FieldDefinition struct {
	ID                 int64     `json:"id"`
	OrganizationTypeID int64     `json:"organizationTypeId"`
	FieldKey           string    `json:"fieldKey"`
	FieldTitle         string    `json:"fieldTitle"`
	FieldDescription   string    `json:"fieldDescription"`
	DisplayOrder       int       `json:"displayOrder"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Keys returns the keys of defs in order.
func Keys(defs []*FieldDefinition) []string {
	keys := make([]string, 0, len(defs))
	for _, d := range defs {
		keys = append(keys, d.FieldKey)
	}
	return keys
}

func ToDataModel(d *FieldDefinition) *fieldDefDatamodel.FieldDefinition {
	return &fieldDefDatamodel.FieldDefinition{
		ID:                 d.ID,
		OrganizationTypeID: d.OrganizationTypeID,
		FieldKey:           d.FieldKey,
		FieldTitle:         d.FieldTitle,
		FieldDescription:   d.FieldDescription,
		DisplayOrder:       d.DisplayOrder,
		Active:             d.Active,
		CreatedAt:          d.CreatedAt,
	}
}

func FromDataModel(d *fieldDefDatamodel.FieldDefinition) *FieldDefinition {
	return &FieldDefinition{
		ID:                 d.ID,
		OrganizationTypeID: d.OrganizationTypeID,
		FieldKey:           d.FieldKey,
		FieldTitle:         d.FieldTitle,
		FieldDescription:   d.FieldDescription,
		DisplayOrder:       d.DisplayOrder,
		Active:             d.Active,
		CreatedAt:          d.CreatedAt,
	}
}
