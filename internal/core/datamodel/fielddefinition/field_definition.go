package fielddefinition

import "time"

type FieldDefinition struct {
	ID                 int64     `gorm:"primaryKey"`
	OrganizationTypeID int64     `gorm:"column:organization_type_id;not null;uniqueIndex:uk_field_def_type_key"`
	FieldKey           string    `gorm:"column:field_key;size:100;not null;uniqueIndex:uk_field_def_type_key"`
	FieldTitle         string    `gorm:"column:field_title;size:200;not null"`
	FieldDescription   string    `gorm:"column:field_description;type:text"`
	DisplayOrder       int       `gorm:"column:display_order;not null;default:0"`
	Active             bool      `gorm:"column:active;not null;default:true"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (FieldDefinition) TableName() string {
	return "assignment_field_definitions"
}
