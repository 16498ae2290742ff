package assignment_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/role-assignment/internal/assignment"
	"github.com/frahmantamala/role-assignment/internal/employee"
)

type stubFinder struct {
	byWorker   map[string][]*employee.Employee
	byEmail    map[string][]*employee.Employee
	byPosition map[string][]*employee.Employee
	calls      []string
	fail       bool
}

func (f *stubFinder) FindByWorkerID(v string) ([]*employee.Employee, error) {
	f.calls = append(f.calls, "workerId")
	if f.fail {
		return nil, errors.New("lookup down")
	}
	return f.byWorker[v], nil
}

func (f *stubFinder) FindByEmail(v string) ([]*employee.Employee, error) {
	f.calls = append(f.calls, "email")
	return f.byEmail[v], nil
}

func (f *stubFinder) FindByPositionID(v string) ([]*employee.Employee, error) {
	f.calls = append(f.calls, "positionId")
	return f.byPosition[v], nil
}

var _ = Describe("PendingRow", func() {
	var finder *stubFinder

	BeforeEach(func() {
		ada := &employee.Employee{ID: 1, EmployeeID: "W1", Email: "ada@example.com"}
		twinA := &employee.Employee{ID: 2, EmployeeID: "W2"}
		twinB := &employee.Employee{ID: 3, EmployeeID: "W2"}
		finder = &stubFinder{
			byWorker:   map[string][]*employee.Employee{"W1": {ada}, "W2": {twinA, twinB}},
			byEmail:    map[string][]*employee.Employee{"ada@example.com": {ada}},
			byPosition: map[string][]*employee.Employee{},
		}
	})

	It("stays empty without identifiers", func() {
		row := assignment.NewPendingRow(assignment.ValidateRowRequest{RowID: "r1", Email: "  "})
		Expect(row.Validate(finder)).To(Succeed())
		Expect(row.State).To(Equal(assignment.StateEmpty))
		Expect(finder.calls).To(BeEmpty())
		Expect(row.Eligible()).To(BeFalse())
	})

	It("uses only the highest priority identifier", func() {
		row := assignment.NewPendingRow(assignment.ValidateRowRequest{RowID: "r1", WorkerID: "W1", Email: "other@example.com", PositionID: "P1"})
		Expect(row.Validate(finder)).To(Succeed())
		Expect(finder.calls).To(Equal([]string{"workerId"}))
		Expect(row.State).To(Equal(assignment.StateValid))
		Expect(row.Selected.ID).To(BeEquivalentTo(1))
		Expect(row.Eligible()).To(BeTrue())
	})

	It("falls through to email when worker id is blank", func() {
		row := assignment.NewPendingRow(assignment.ValidateRowRequest{RowID: "r1", Email: "ada@example.com"})
		Expect(row.Validate(finder)).To(Succeed())
		Expect(row.LookupBy).To(Equal("email"))
		Expect(row.State).To(Equal(assignment.StateValid))
	})

	It("fails when nothing matches", func() {
		row := assignment.NewPendingRow(assignment.ValidateRowRequest{RowID: "r1", PositionID: "P404"})
		Expect(row.Validate(finder)).To(Succeed())
		Expect(row.State).To(Equal(assignment.StateFailed))
		Expect(row.Message).To(ContainSubstring("P404"))
	})

	It("never auto-picks an ambiguous match", func() {
		row := assignment.NewPendingRow(assignment.ValidateRowRequest{RowID: "r1", WorkerID: "W2"})
		Expect(row.Validate(finder)).To(Succeed())
		Expect(row.State).To(Equal(assignment.StateMultiple))
		Expect(row.Candidates).To(HaveLen(2))
		Expect(row.Eligible()).To(BeFalse())

		Expect(row.Select(99)).NotTo(Succeed())
		Expect(row.Select(3)).To(Succeed())
		Expect(row.State).To(Equal(assignment.StateValid))
		Expect(row.Selected.ID).To(BeEquivalentTo(3))
		Expect(row.Eligible()).To(BeTrue())
	})

	It("refuses selection outside the multiple state", func() {
		row := assignment.NewPendingRow(assignment.ValidateRowRequest{RowID: "r1", WorkerID: "W1"})
		Expect(row.Validate(finder)).To(Succeed())
		Expect(row.Select(1)).NotTo(Succeed())
	})

	It("resets after save", func() {
		row := assignment.NewPendingRow(assignment.ValidateRowRequest{RowID: "r1", WorkerID: "W1"})
		Expect(row.Validate(finder)).To(Succeed())
		row.MarkSaved()
		Expect(row.State).To(Equal(assignment.StateEmpty))
		Expect(row.WorkerID).To(BeEmpty())
		Expect(row.Selected).To(BeNil())
	})

	It("marks the row failed when the lookup errors", func() {
		finder.fail = true
		row := assignment.NewPendingRow(assignment.ValidateRowRequest{RowID: "r1", WorkerID: "W1"})
		Expect(row.Validate(finder)).NotTo(Succeed())
		Expect(row.State).To(Equal(assignment.StateFailed))
	})
})
