package organizationdetail

import (
	"strings"

	orgDetailDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationdetail"
)

const maxValueLength = 100

type OrganizationDetail struct {
	ID                     int64   `json:"id"`
	LegacyOrganizationName string  `json:"legacyOrganizationName"`
	Organization           string  `json:"organization"`
	OrganizationType       string  `json:"organizationType"`
	ReferenceID            *string `json:"referenceId"`
}

// DisplayName prefers the current organization name over the legacy one.
func (d *OrganizationDetail) DisplayName() string {
	if d.Organization != "" {
		return d.Organization
	}
	return d.LegacyOrganizationName
}

// NormalizeReferenceID treats blank and '#'-prefixed placeholders as absent.
func NormalizeReferenceID(ref *string) *string {
	if ref == nil {
		return nil
	}
	v := strings.TrimSpace(*ref)
	if v == "" || strings.HasPrefix(v, "#") {
		return nil
	}
	return &v
}

func ToDataModel(d *OrganizationDetail) *orgDetailDatamodel.OrganizationDetail {
	return &orgDetailDatamodel.OrganizationDetail{
		ID:                     d.ID,
		LegacyOrganizationName: d.LegacyOrganizationName,
		Organization:           d.Organization,
		OrganizationType:       d.OrganizationType,
		ReferenceID:            NormalizeReferenceID(d.ReferenceID),
	}
}

func FromDataModel(d *orgDetailDatamodel.OrganizationDetail) *OrganizationDetail {
	return &OrganizationDetail{
		ID:                     d.ID,
		LegacyOrganizationName: d.LegacyOrganizationName,
		Organization:           d.Organization,
		OrganizationType:       d.OrganizationType,
		ReferenceID:            NormalizeReferenceID(d.ReferenceID),
	}
}
