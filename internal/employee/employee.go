package employee

import (
	employeeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/employee"
)

// Employee is a directory entry. EmployeeID is the HR worker id and is not unique.
type Employee struct {
	ID            int64  `json:"id"`
	EmployeeID    string `json:"employeeId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	PositionID    string `json:"positionId"`
	PositionTitle string `json:"positionTitle"`
	Email         string `json:"email"`
}

func (e *Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:            e.ID,
		EmployeeID:    e.EmployeeID,
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		PositionID:    e.PositionID,
		PositionTitle: e.PositionTitle,
		Email:         e.Email,
	}
}

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	return &Employee{
		ID:            e.ID,
		EmployeeID:    e.EmployeeID,
		FirstName:     e.FirstName,
		LastName:      e.LastName,
		PositionID:    e.PositionID,
		PositionTitle: e.PositionTitle,
		Email:         e.Email,
	}
}

func fromDataModels(rows []*employeeDatamodel.Employee) []*Employee {
	out := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
