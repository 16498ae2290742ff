package fielddefinition

type CreateRequest struct {
	OrganizationTypeID int64  `json:"organizationTypeId"`
	FieldKey           string `json:"fieldKey"`
	FieldTitle         string `json:"fieldTitle"`
	FieldDescription   string `json:"fieldDescription"`
	DisplayOrder       int    `json:"displayOrder"`
}

type UpdateRequest struct {
	FieldKey         *string `json:"fieldKey"`
	FieldTitle       *string `json:"fieldTitle"`
	FieldDescription *string `json:"fieldDescription"`
	DisplayOrder     *int    `json:"displayOrder"`
	Active           *bool   `json:"active"`
}

// InUseDetails is attached to the conflict returned by a hard delete without force.
type InUseDetails struct {
	FieldDefinitionID int64 `json:"fieldDefinitionId"`
	ReferenceCount    int64 `json:"referenceCount"`
}

type HardDeleteResponse struct {
	Deleted       bool  `json:"deleted"`
	ValuesDropped int64 `json:"valuesDropped"`
}
