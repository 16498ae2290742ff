package assignment

import (
	"errors"
	"time"

	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/organizationdetail"
)

// ErrDuplicateAssignment is returned by repositories when the (employee,
// organization detail) pair already exists.
var ErrDuplicateAssignment = errors.New("assignment already exists")

// Assignment grants role flags to one employee on one organization detail.
type Assignment struct {
	ID                   int64           `json:"id"`
	EmployeeID           int64           `json:"employeeId"`
	OrganizationDetailID int64           `json:"organizationDetailId"`
	CreatedByID          *int64          `json:"createdById"`
	CreatedAt            time.Time       `json:"createdAt"`
	FieldValues          map[string]bool `json:"fieldValues"`
}

// View is an assignment joined with its employee, detail and author.
type View struct {
	ID                   int64           `json:"id"`
	EmployeeID           int64           `json:"employeeId"`
	OrganizationDetailID int64           `json:"organizationDetailId"`
	WorkerID             string          `json:"workerId"`
	EmployeeFirstName    string          `json:"employeeFirstName"`
	EmployeeLastName     string          `json:"employeeLastName"`
	EmployeeName         string          `json:"employeeName"`
	Email                string          `json:"email"`
	PositionID           string          `json:"positionId"`
	PositionTitle        string          `json:"positionTitle"`
	OrganizationName     string          `json:"organizationName"`
	OrganizationType     string          `json:"organizationType"`
	ReferenceID          *string         `json:"referenceId"`
	CreatedByID          *int64          `json:"createdById"`
	CreatedByName        string          `json:"createdByName"`
	CreatedAt            time.Time       `json:"createdAt"`
	FieldValues          map[string]bool `json:"fieldValues"`
}

func ViewFromRow(row *assignmentDatamodel.Row, values map[string]bool) *View {
	detail := organizationdetail.OrganizationDetail{
		Organization:           row.Organization,
		LegacyOrganizationName: row.LegacyOrganizationName,
	}
	if values == nil {
		values = map[string]bool{}
	}
	return &View{
		ID:                   row.ID,
		EmployeeID:           row.EmployeeID,
		OrganizationDetailID: row.OrganizationDetailID,
		WorkerID:             row.WorkerID,
		EmployeeFirstName:    row.FirstName,
		EmployeeLastName:     row.LastName,
		EmployeeName:         joinName(row.FirstName, row.LastName),
		Email:                row.Email,
		PositionID:           row.PositionID,
		PositionTitle:        row.PositionTitle,
		OrganizationName:     detail.DisplayName(),
		OrganizationType:     row.OrganizationType,
		ReferenceID:          organizationdetail.NormalizeReferenceID(row.ReferenceID),
		CreatedByID:          row.CreatedByID,
		CreatedByName:        joinName(deref(row.CreatedByFirstName), deref(row.CreatedByLastName)),
		CreatedAt:            row.CreatedAt,
		FieldValues:          values,
	}
}

// ResolveValues maps submitted flags onto the active definitions. Every active
// key gets a value, missing keys default to false. Submitted keys that are not
// active definitions are returned as unknown.
func ResolveValues(defs []*fielddefinition.FieldDefinition, submitted map[string]bool) (map[string]bool, []string) {
	resolved := make(map[string]bool, len(defs))
	for _, d := range defs {
		resolved[d.FieldKey] = submitted[d.FieldKey]
	}
	var unknown []string
	for key := range submitted {
		if _, ok := resolved[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	return resolved, unknown
}

// ValueRows builds the stored rows for resolved values of assignmentID.
func ValueRows(assignmentID int64, defs []*fielddefinition.FieldDefinition, resolved map[string]bool) []assignmentDatamodel.FieldValue {
	rows := make([]assignmentDatamodel.FieldValue, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, assignmentDatamodel.FieldValue{
			AssignmentID:      assignmentID,
			FieldDefinitionID: d.ID,
			FieldValue:        resolved[d.FieldKey],
		})
	}
	return rows
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
