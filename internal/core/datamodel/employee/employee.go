package employee

type Employee struct {
	ID            int64  `gorm:"primaryKey"`
	EmployeeID    string `gorm:"column:employee_id;size:100;not null;index"`
	FirstName     string `gorm:"column:first_name;size:100"`
	LastName      string `gorm:"column:last_name;size:100"`
	PositionID    string `gorm:"column:position_id;size:100;index"`
	PositionTitle string `gorm:"column:position_title;size:200"`
	Email         string `gorm:"column:email;size:200;index"`
}

func (Employee) TableName() string {
	return "employees"
}
