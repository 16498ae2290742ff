package assignment

import "time"

type Assignment struct {
	ID                   int64     `gorm:"primaryKey"`
	EmployeeID           int64     `gorm:"column:employee_id;not null;uniqueIndex:uk_assignment_employee_detail"`
	OrganizationDetailID int64     `gorm:"column:organization_detail_id;not null;uniqueIndex:uk_assignment_employee_detail"`
	CreatedByID          *int64    `gorm:"column:created_by_id"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Assignment) TableName() string {
	return "assignments"
}

type FieldValue struct {
	ID                int64 `gorm:"primaryKey"`
	AssignmentID      int64 `gorm:"column:assignment_id;not null;uniqueIndex:uk_field_value_assignment_def"`
	FieldDefinitionID int64 `gorm:"column:field_definition_id;not null;uniqueIndex:uk_field_value_assignment_def;index"`
	FieldValue        bool  `gorm:"column:field_value;not null;default:false"`
}

func (FieldValue) TableName() string {
	return "assignment_field_values"
}

// Row is the joined read model used for list and detail views.
type Row struct {
	ID                     int64     `gorm:"column:id"`
	EmployeeID             int64     `gorm:"column:employee_id"`
	OrganizationDetailID   int64     `gorm:"column:organization_detail_id"`
	CreatedByID            *int64    `gorm:"column:created_by_id"`
	CreatedAt              time.Time `gorm:"column:created_at"`
	WorkerID               string    `gorm:"column:worker_id"`
	FirstName              string    `gorm:"column:first_name"`
	LastName               string    `gorm:"column:last_name"`
	Email                  string    `gorm:"column:email"`
	PositionID             string    `gorm:"column:position_id"`
	PositionTitle          string    `gorm:"column:position_title"`
	Organization           string    `gorm:"column:organization"`
	LegacyOrganizationName string    `gorm:"column:legacy_organization_name"`
	OrganizationType       string    `gorm:"column:organization_type"`
	ReferenceID            *string   `gorm:"column:reference_id"`
	CreatedByFirstName     *string   `gorm:"column:created_by_first_name"`
	CreatedByLastName      *string   `gorm:"column:created_by_last_name"`
}

// StoredValue is a persisted flag joined with its definition key.
type StoredValue struct {
	AssignmentID      int64  `gorm:"column:assignment_id"`
	FieldDefinitionID int64  `gorm:"column:field_definition_id"`
	FieldKey          string `gorm:"column:field_key"`
	FieldValue        bool   `gorm:"column:field_value"`
}
