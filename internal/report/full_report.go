package report

import "time"

const (
	SheetOverview    = "Overview"
	SheetAssignRoles = "Assign Roles"

	// DataStartRow is the first data row of the Assign Roles sheet.
	DataStartRow = 6

	versionLabel = "Assign Roles - v44.0"
	dateLayout   = "2006-01-02"
)

// Assign Roles columns, 1-based.
const (
	colFields         = 1
	colSpreadsheetKey = 2
	colEffectiveDate  = 3
	colTargetAssignee = 5
	colRowID          = 7
	colAssignableRole = 12
	colAssigneesToAdd = 15
)

var overviewWidths = []float64{9.11, 28.55, 13, 13, 13}

var assignRolesWidths = []float64{
	9.11, 17.55, 15.66, 15.66, 13, 15.66, 13, 44.44, 15.66,
	15.66, 13, 32, 15.66, 13, 15.66, 13, 15.66, 13,
}

var overviewHeaders = []interface{}{
	"Business Process",
	"Processing Instruction",
	"Discard on Exit Validation Error",
	"Processing Comment",
}

var assignRolesRestrictions = []interface{}{
	"Restrictions",
	"Required",
	"Optional",
	"Optional",
	"Required",
	"Optional",
	"Required",
	"Required",
	"Required",
	"Conditionally Required",
	"Conditionally Required",
	"Required",
	"Optional",
	"Optional",
	"Optional. May have multiples",
	"Optional. May have multiples",
	"Optional",
	"Optional",
}

var assignRolesFormats = []interface{}{
	"Format",
	"Text",
	"YYYY-MM-DD",
	"Time_Zone_ID",
	"Position_ID",
	"Y/N",
	"Text",
	"Lookup",
	"Text",
	"Text",
	"External_Supplier_Invoice_Source_ID",
	"Organization_Role_ID",
	"Y/N",
	"Y/N",
	"Academic_Affiliate_ID",
	"Academic_Affiliate_ID",
	"Academic_Affiliate_ID",
	"Y/N",
}

var assignRolesFields = []interface{}{
	"Fields",
	"Spreadsheet Key*",
	"Effective Date",
	"Effective Timezone",
	"Event Target Assignee*",
	"Remove All Role Assignments for Event Target Assignee",
	"Row ID*",
	"ID Type",
	"ID Value",
	"Parent ID Type",
	"Parent ID Value",
	"Assignable Role*",
	"Remove Existing Assignees for Assignable Role on Role Assigner",
	"Update Later Dated Assignments",
	"Assignees to Add+",
	"Assignees to Remove+",
	"Supervisory Organization Single Assignment Manager",
	"Remove Supervisory Organization Single Assignment Manager",
}

const (
	roleAssignmentData = "Assign Roles Role Assignment Data+ (All)"
	roleAssigner       = "Role Assigner* (All > Assign Roles Role Assignment Data+)"
)

// AssignmentRow is one assignment of the full report, ordered by position then
// creation time.
type AssignmentRow struct {
	CreatedAt     time.Time `db:"created_at"`
	PositionID    string    `db:"position_id"`
	PositionTitle string    `db:"position_title"`
}

func OverviewSheet() *Sheet {
	s := NewSheet(SheetOverview, overviewWidths...)
	s.Set(1, 1, versionLabel, StyleNone)
	s.Heights[2] = 28.8
	s.Set(2, 2, "Assign Roles v44.0", StyleOverviewHead)
	s.Heights[4] = 15
	s.Set(2, 4, "This operation will assign organization roles to one or more workers or positions.", StyleDescription)
	s.Merge("B4", "E4")
	s.SetRow(2, 6, StyleColumnHead, overviewHeaders...)
	s.Set(1, 7, "1", StyleNone)
	s.Set(2, 7, "Assign Roles", StyleNone)
	return s
}

// AssignRolesSheet lays out the five header rows then one row per assignment.
// The row id restarts at 1 whenever the position id changes.
func AssignRolesSheet(rows []AssignmentRow) *Sheet {
	s := NewSheet(SheetAssignRoles, assignRolesWidths...)
	last := len(assignRolesFields)

	s.Heights[1] = 17.4
	s.Set(1, 1, versionLabel, StyleTitle)
	s.Merge("A1", "R1")

	s.Set(colFields, 2, "Area", StyleGreen)
	s.Set(2, 2, "All", StyleBlue)
	for col := 3; col <= 6; col++ {
		s.Set(col, 2, "", StyleBlue)
	}
	s.Merge("B2", "F2")
	s.Set(7, 2, roleAssignmentData, StyleDarkBlue)
	s.Set(8, 2, roleAssigner, StyleBlue)
	for col := 9; col <= 11; col++ {
		s.Set(col, 2, "", StyleBlue)
	}
	s.Merge("H2", "K2")
	s.Set(12, 2, roleAssignmentData, StyleDarkBlue)
	for col := 13; col <= last; col++ {
		s.Set(col, 2, "", StyleDarkBlue)
	}
	s.Merge("L2", "R2")

	s.Set(colFields, 3, assignRolesRestrictions[0], StyleGreen)
	s.SetRow(2, 3, StyleRestriction, assignRolesRestrictions[1:]...)
	s.Set(colFields, 4, assignRolesFormats[0], StyleGreen)
	s.SetRow(2, 4, StyleRestriction, assignRolesFormats[1:]...)
	s.Set(colFields, 5, assignRolesFields[0], StyleGreen)
	s.SetRow(2, 5, StyleBlue, assignRolesFields[1:]...)

	rowID := 0
	previous := ""
	for i, r := range rows {
		if i == 0 || r.PositionID != previous {
			rowID = 0
		}
		rowID++
		previous = r.PositionID

		line := DataStartRow + i
		effective := ""
		if !r.CreatedAt.IsZero() {
			effective = r.CreatedAt.Format(dateLayout)
		}
		s.Set(colSpreadsheetKey, line, i+1, StyleData)
		s.Set(colEffectiveDate, line, effective, StyleData)
		s.Set(colTargetAssignee, line, r.PositionID, StyleData)
		s.Set(colRowID, line, rowID, StyleData)
		s.Set(colAssignableRole, line, r.PositionTitle, StyleData)
		s.Set(colAssigneesToAdd, line, r.PositionID, StyleData)
	}
	return s
}
