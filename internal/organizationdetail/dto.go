package organizationdetail

import "github.com/frahmantamala/role-assignment/internal/core/common/csvimport"

type CreateRequest struct {
	LegacyOrganizationName string  `json:"legacyOrganizationName"`
	Organization           string  `json:"organization"`
	OrganizationType       string  `json:"organizationType"`
	ReferenceID            *string `json:"referenceId"`
}

type UpdateRequest struct {
	LegacyOrganizationName *string `json:"legacyOrganizationName"`
	Organization           *string `json:"organization"`
	OrganizationType       *string `json:"organizationType"`
	ReferenceID            *string `json:"referenceId"`
}

// ListFilter narrows a page to one organization type; "all" or blank is no filter.
type ListFilter struct {
	OrganizationType string
}

type ImportResponse struct {
	csvimport.Result
	Message string `json:"message"`
}
