package assignment

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/role-assignment/internal/employee"
)

type RowState string

const (
	StateEmpty      RowState = "empty"
	StateValidating RowState = "validating"
	StateValid      RowState = "valid"
	StateFailed     RowState = "failed"
	StateMultiple   RowState = "multiple"
)

// EmployeeFinder resolves the identifiers a pending row may carry.
type EmployeeFinder interface {
	FindByWorkerID(workerID string) ([]*employee.Employee, error)
	FindByEmail(email string) ([]*employee.Employee, error)
	FindByPositionID(positionID string) ([]*employee.Employee, error)
}

// PendingRow is one line of the bulk assign form. Only the first non-blank
// identifier in priority order workerId, email, positionId is used. An
// ambiguous match is never auto-picked.
type PendingRow struct {
	RowID      string               `json:"rowId"`
	WorkerID   string               `json:"workerId"`
	Email      string               `json:"email"`
	PositionID string               `json:"positionId"`
	State      RowState             `json:"state"`
	LookupBy   string               `json:"lookupBy,omitempty"`
	Selected   *employee.Employee   `json:"employee,omitempty"`
	Candidates []*employee.Employee `json:"candidates"`
	Message    string               `json:"message,omitempty"`
}

func NewPendingRow(req ValidateRowRequest) *PendingRow {
	return &PendingRow{
		RowID:      req.RowID,
		WorkerID:   strings.TrimSpace(req.WorkerID),
		Email:      strings.TrimSpace(req.Email),
		PositionID: strings.TrimSpace(req.PositionID),
		State:      StateEmpty,
		Candidates: []*employee.Employee{},
	}
}

// Identifier returns the field and value used for lookup, or "" when the row is blank.
func (p *PendingRow) Identifier() (string, string) {
	switch {
	case p.WorkerID != "":
		return "workerId", p.WorkerID
	case p.Email != "":
		return "email", p.Email
	case p.PositionID != "":
		return "positionId", p.PositionID
	}
	return "", ""
}

// Validate runs the lookup and moves the row to valid, failed or multiple.
// A blank row stays empty.
func (p *PendingRow) Validate(finder EmployeeFinder) error {
	p.Selected = nil
	p.Candidates = []*employee.Employee{}
	p.Message = ""

	field, value := p.Identifier()
	p.LookupBy = field
	if field == "" {
		p.State = StateEmpty
		return nil
	}

	p.State = StateValidating
	var (
		matches []*employee.Employee
		err     error
	)
	switch field {
	case "workerId":
		matches, err = finder.FindByWorkerID(value)
	case "email":
		matches, err = finder.FindByEmail(value)
	default:
		matches, err = finder.FindByPositionID(value)
	}
	if err != nil {
		p.State = StateFailed
		p.Message = "employee lookup failed"
		return err
	}

	switch len(matches) {
	case 0:
		p.State = StateFailed
		p.Message = fmt.Sprintf("No employee found for %s '%s'", field, value)
	case 1:
		p.State = StateValid
		p.Selected = matches[0]
	default:
		p.State = StateMultiple
		p.Candidates = matches
		p.Message = fmt.Sprintf("%d employees match %s '%s'; select one", len(matches), field, value)
	}
	return nil
}

// Select resolves a multiple row to one of its candidates.
func (p *PendingRow) Select(employeeID int64) error {
	if p.State != StateMultiple {
		return fmt.Errorf("row %s is %s, not %s", p.RowID, p.State, StateMultiple)
	}
	for _, c := range p.Candidates {
		if c.ID == employeeID {
			p.Selected = c
			p.State = StateValid
			p.Message = ""
			return nil
		}
	}
	return fmt.Errorf("employee %d is not a candidate for row %s", employeeID, p.RowID)
}

// MarkSaved resets the row so it can be reused.
func (p *PendingRow) MarkSaved() {
	p.WorkerID, p.Email, p.PositionID = "", "", ""
	p.State = StateEmpty
	p.LookupBy = ""
	p.Selected = nil
	p.Candidates = []*employee.Employee{}
	p.Message = ""
}

// Eligible reports whether the row may be saved.
func (p *PendingRow) Eligible() bool {
	return p.State == StateValid && p.Selected != nil
}
