package parameter

import "time"

type AppParameter struct {
	ID          int64     `gorm:"primaryKey"`
	ParamKey    string    `gorm:"column:param_key;size:100;uniqueIndex;not null"`
	ParamValue  string    `gorm:"column:param_value;type:text"`
	ParamType   string    `gorm:"column:param_type;size:20;not null;default:text"`
	Description string    `gorm:"column:description;size:500"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AppParameter) TableName() string {
	return "app_parameters"
}
