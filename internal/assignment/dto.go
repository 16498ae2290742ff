package assignment

type CreateRequest struct {
	EmployeeID           int64           `json:"employeeId"`
	OrganizationDetailID int64           `json:"organizationDetailId"`
	FieldValues          map[string]bool `json:"fieldValues"`
}

// UpdateRequest replaces the values of every active definition.
type UpdateRequest struct {
	FieldValues map[string]bool `json:"fieldValues"`
}

// AssignEmployeeRequest is the body of POST /organization-details/{id}/assign-employee.
type AssignEmployeeRequest struct {
	EmployeeID  int64           `json:"employeeId"`
	FieldValues map[string]bool `json:"fieldValues"`
}

type BulkRow struct {
	RowID                string          `json:"rowId"`
	EmployeeID           int64           `json:"employeeId"`
	OrganizationDetailID int64           `json:"organizationDetailId"`
	FieldValues          map[string]bool `json:"fieldValues"`
}

type BulkRequest struct {
	Rows []BulkRow `json:"rows"`
}

const (
	BulkStatusCreated = "created"
	BulkStatusFailed  = "failed"
)

type BulkResult struct {
	RowID      string `json:"rowId"`
	Status     string `json:"status"`
	Assignment *View  `json:"assignment,omitempty"`
	Error      string `json:"error,omitempty"`
}

type BulkResponse struct {
	Results []BulkResult `json:"results"`
	Created int          `json:"created"`
	Failed  int          `json:"failed"`
}

type ValidateRowRequest struct {
	RowID      string `json:"rowId"`
	WorkerID   string `json:"workerId"`
	Email      string `json:"email"`
	PositionID string `json:"positionId"`
}

type ValidateRequest struct {
	Rows []ValidateRowRequest `json:"rows"`
}

// Stats counts assignments per organization type id.
type Stats map[int64]int64
