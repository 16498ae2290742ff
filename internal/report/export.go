package report

import (
	"github.com/frahmantamala/role-assignment/internal/assignment"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
)

const (
	SheetAssignments = "Assignments"
	exportTimeLayout = "2006-01-02 15:04"
)

var exportHeaders = []interface{}{
	"Worker ID",
	"First Name",
	"Last Name",
	"Email",
	"Position ID",
	"Organization",
	"Reference ID",
	"Created At",
}

// AssignmentsSheet lists one row per assignment followed by a Yes/No column for
// each definition, in definition order.
func AssignmentsSheet(defs []*fielddefinition.FieldDefinition, views []*assignment.View) *Sheet {
	widths := []float64{14, 16, 16, 28, 14, 32, 16, 18}
	for range defs {
		widths = append(widths, 18)
	}
	s := NewSheet(SheetAssignments, widths...)

	s.SetRow(1, 1, StyleBlue, exportHeaders...)
	for i, d := range defs {
		s.Set(len(exportHeaders)+1+i, 1, d.FieldTitle, StyleBlue)
	}

	for i, v := range views {
		row := i + 2
		ref := ""
		if v.ReferenceID != nil {
			ref = *v.ReferenceID
		}
		s.SetRow(1, row, StyleData,
			v.WorkerID,
			v.EmployeeFirstName,
			v.EmployeeLastName,
			v.Email,
			v.PositionID,
			v.OrganizationName,
			ref,
			v.CreatedAt.Format(exportTimeLayout),
		)
		for j, d := range defs {
			s.Set(len(exportHeaders)+1+j, row, yesNo(v.FieldValues[d.FieldKey]), StyleData)
		}
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
