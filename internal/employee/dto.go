package employee

import "github.com/frahmantamala/role-assignment/internal/core/common/csvimport"

type CreateRequest struct {
	EmployeeID    string `json:"employeeId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	PositionID    string `json:"positionId"`
	PositionTitle string `json:"positionTitle"`
	Email         string `json:"email"`
}

type UpdateRequest struct {
	EmployeeID    *string `json:"employeeId"`
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	PositionID    *string `json:"positionId"`
	PositionTitle *string `json:"positionTitle"`
	Email         *string `json:"email"`
}

type ImportResponse struct {
	csvimport.Result
	Message string `json:"message"`
}
