package organizationdetail

type OrganizationDetail struct {
	ID                     int64   `gorm:"primaryKey"`
	LegacyOrganizationName string  `gorm:"column:legacy_organization_name;size:100"`
	Organization           string  `gorm:"column:organization;size:100"`
	OrganizationType       string  `gorm:"column:organization_type;size:100;index"`
	ReferenceID            *string `gorm:"column:reference_id;size:100"`
}

func (OrganizationDetail) TableName() string {
	return "organization_details"
}
