package organizationtype

import "time"

type OrganizationType struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;size:100;uniqueIndex;not null"`
	Slug         string    `gorm:"column:slug;size:100;uniqueIndex;not null"`
	DisplayName  string    `gorm:"column:display_name;size:200"`
	IconName     string    `gorm:"column:icon_name;size:100"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	Active       bool      `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OrganizationType) TableName() string {
	return "organization_types"
}
