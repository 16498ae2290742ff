package user

import "time"

type User struct {
	ID         int64     `gorm:"primaryKey"`
	FirstName  string    `gorm:"column:first_name;size:100"`
	LastName   string    `gorm:"column:last_name;size:100"`
	Company    string    `gorm:"column:company;size:200"`
	Email      string    `gorm:"column:email;size:200;uniqueIndex;not null"`
	EmployeeID string    `gorm:"column:employee_id;size:100"`
	PositionID string    `gorm:"column:position_id;size:100"`
	Password   *string   `gorm:"column:password"`
	Role       string    `gorm:"column:role;size:20;not null;default:USER"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type OrganizationAccess struct {
	ID                 int64 `gorm:"primaryKey"`
	UserID             int64 `gorm:"column:user_id;not null;uniqueIndex:uk_user_org_access"`
	OrganizationTypeID int64 `gorm:"column:organization_type_id;not null;uniqueIndex:uk_user_org_access"`
	HasAccess          bool  `gorm:"column:has_access;not null;default:false"`
}

func (OrganizationAccess) TableName() string {
	return "user_organization_access"
}
