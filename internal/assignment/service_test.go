package assignment_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/assignment"
	assignmentPostgres "github.com/frahmantamala/role-assignment/internal/assignment/postgres"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	"github.com/frahmantamala/role-assignment/internal/core/events"
	"github.com/frahmantamala/role-assignment/internal/core/testutil"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/employee"
	employeePostgres "github.com/frahmantamala/role-assignment/internal/employee/postgres"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	fieldDefPostgres "github.com/frahmantamala/role-assignment/internal/fielddefinition/postgres"
	"github.com/frahmantamala/role-assignment/internal/organizationdetail"
	orgDetailPostgres "github.com/frahmantamala/role-assignment/internal/organizationdetail/postgres"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
	orgTypePostgres "github.com/frahmantamala/role-assignment/internal/organizationtype/postgres"
)

type fixture struct {
	db        *gorm.DB
	service   *assignment.Service
	fields    *fielddefinition.Service
	giftDefs  map[string]*fielddefinition.FieldDefinition
	bus       *events.EventBus
	gift, lab *organizationtype.OrganizationType
	giftDet   *organizationdetail.OrganizationDetail
	labDet    *organizationdetail.OrganizationDetail
	ada, alan *employee.Employee
	admin     *coreUser.User
	eventsMu  sync.Mutex
	seen      []string
}

func newFixture() *fixture {
	slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	db, err := testutil.NewSQLiteDB()
	Expect(err).NotTo(HaveOccurred())

	f := &fixture{db: db, admin: &coreUser.User{ID: 1, Role: coreUser.RoleAdmin}}

	orgTypes := organizationtype.NewService(orgTypePostgres.NewOrganizationTypeRepository(db), slogger)
	fields := fielddefinition.NewService(fieldDefPostgres.NewFieldDefinitionRepository(db), orgTypes, slogger)
	details := organizationdetail.NewService(orgDetailPostgres.NewOrganizationDetailRepository(db), orgTypes, slogger)
	employees := employee.NewService(employeePostgres.NewEmployeeRepository(db), slogger)

	f.gift, err = orgTypes.Create(organizationtype.CreateRequest{Name: "Gift", DisplayOrder: 1})
	Expect(err).NotTo(HaveOccurred())
	f.lab, err = orgTypes.Create(organizationtype.CreateRequest{Name: "Lab", DisplayOrder: 2})
	Expect(err).NotTo(HaveOccurred())

	f.fields = fields
	f.giftDefs = map[string]*fielddefinition.FieldDefinition{}
	for i, key := range []string{"finGiftManager", "finGiftFinancialAnalyst"} {
		def, err := fields.Create(fielddefinition.CreateRequest{OrganizationTypeID: f.gift.ID, FieldKey: key, FieldTitle: key, DisplayOrder: i})
		Expect(err).NotTo(HaveOccurred())
		f.giftDefs[key] = def
	}
	retired, err := fields.Create(fielddefinition.CreateRequest{OrganizationTypeID: f.gift.ID, FieldKey: "retiredFlag", FieldTitle: "Retired", DisplayOrder: 9})
	Expect(err).NotTo(HaveOccurred())
	Expect(fields.Delete(retired.ID)).To(Succeed())
	_, err = fields.Create(fielddefinition.CreateRequest{OrganizationTypeID: f.lab.ID, FieldKey: "safetyOfficer", FieldTitle: "Safety Officer"})
	Expect(err).NotTo(HaveOccurred())

	f.giftDet, err = details.Create(organizationdetail.CreateRequest{Organization: "Chemistry Endowment", OrganizationType: "Gift"})
	Expect(err).NotTo(HaveOccurred())
	f.labDet, err = details.Create(organizationdetail.CreateRequest{Organization: "Wet Lab", OrganizationType: "Lab"})
	Expect(err).NotTo(HaveOccurred())

	f.ada, err = employees.Create(employee.CreateRequest{EmployeeID: "W1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PositionID: "P1"})
	Expect(err).NotTo(HaveOccurred())
	f.alan, err = employees.Create(employee.CreateRequest{EmployeeID: "W2", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", PositionID: "P2"})
	Expect(err).NotTo(HaveOccurred())

	f.bus = events.NewEventBus(slogger)
	for _, t := range []string{events.AssignmentCreated, events.AssignmentUpdated, events.AssignmentDeleted} {
		f.bus.Subscribe(t, func(ctx context.Context, e events.Event) error {
			f.eventsMu.Lock()
			defer f.eventsMu.Unlock()
			f.seen = append(f.seen, e.EventType())
			return nil
		})
	}

	f.service = assignment.NewService(assignment.ServiceDeps{
		Repo:       assignmentPostgres.NewAssignmentRepository(db),
		OrgTypes:   orgTypes,
		Fields:     fields,
		Details:    details,
		Employees:  employees,
		Publisher:  f.bus,
		Logger:     slogger,
		MaxWorkers: 3,
		MaxRows:    50,
	})
	return f
}

func (f *fixture) events() []string {
	f.bus.Wait()
	f.eventsMu.Lock()
	defer f.eventsMu.Unlock()
	return append([]string(nil), f.seen...)
}

var _ = Describe("Assignment Service", func() {
	var (
		f   *fixture
		ctx context.Context
	)

	BeforeEach(func() {
		f = newFixture()
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("stores exactly the active key set with missing keys false", func() {
			view, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{
				EmployeeID:           f.ada.ID,
				OrganizationDetailID: f.giftDet.ID,
				FieldValues:          map[string]bool{"finGiftManager": true},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(view.FieldValues).To(Equal(map[string]bool{"finGiftManager": true, "finGiftFinancialAnalyst": false}))
			Expect(view.EmployeeName).To(Equal("Ada Lovelace"))
			Expect(view.OrganizationName).To(Equal("Chemistry Endowment"))
			Expect(*view.CreatedByID).To(Equal(f.admin.ID))

			var stored int64
			Expect(f.db.Model(&assignmentDatamodel.FieldValue{}).Where("assignment_id = ?", view.ID).Count(&stored).Error).To(Succeed())
			Expect(stored).To(BeEquivalentTo(2))
			Expect(f.events()).To(ContainElement(events.AssignmentCreated))
		})

		It("rejects unknown and inactive keys", func() {
			_, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{
				EmployeeID:           f.ada.ID,
				OrganizationDetailID: f.giftDet.ID,
				FieldValues:          map[string]bool{"retiredFlag": true, "bogus": false},
			})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeUnknownFieldKey)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("bogus"))
		})

		It("returns conflict for a duplicate employee and detail pair", func() {
			req := assignment.CreateRequest{EmployeeID: f.ada.ID, OrganizationDetailID: f.giftDet.ID}
			_, err := f.service.Create(ctx, f.admin, req)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Create(ctx, f.admin, req)
			Expect(appErrors.HasCode(err, appErrors.ErrCodeAssignmentConflict)).To(BeTrue())
		})

		It("returns not found for unknown employees and details", func() {
			_, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{EmployeeID: 999, OrganizationDetailID: f.giftDet.ID})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeEmployeeNotFound)).To(BeTrue())
			_, err = f.service.Create(ctx, f.admin, assignment.CreateRequest{EmployeeID: f.ada.ID, OrganizationDetailID: 999})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeOrganizationDetailNotFound)).To(BeTrue())
		})

		It("denies users without access to the detail's type", func() {
			u := &coreUser.User{ID: 7, Role: coreUser.RoleUser, OrganizationAccess: map[int64]bool{f.lab.ID: true}}
			_, err := f.service.Create(ctx, u, assignment.CreateRequest{EmployeeID: f.ada.ID, OrganizationDetailID: f.giftDet.ID})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeAccessDenied)).To(BeTrue())

			_, err = f.service.Create(ctx, u, assignment.CreateRequest{EmployeeID: f.ada.ID, OrganizationDetailID: f.labDet.ID})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("replaces the whole set and is idempotent", func() {
			created, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{
				EmployeeID: f.ada.ID, OrganizationDetailID: f.giftDet.ID,
				FieldValues: map[string]bool{"finGiftManager": true, "finGiftFinancialAnalyst": true},
			})
			Expect(err).NotTo(HaveOccurred())

			req := assignment.UpdateRequest{FieldValues: map[string]bool{"finGiftFinancialAnalyst": true}}
			first, err := f.service.Update(ctx, f.admin, created.ID, req)
			Expect(err).NotTo(HaveOccurred())
			second, err := f.service.Update(ctx, f.admin, created.ID, req)
			Expect(err).NotTo(HaveOccurred())

			expected := map[string]bool{"finGiftManager": false, "finGiftFinancialAnalyst": true}
			Expect(first.FieldValues).To(Equal(expected))
			Expect(second.FieldValues).To(Equal(expected))
		})

		It("keeps values of deactivated definitions", func() {
			view, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{
				EmployeeID: f.ada.ID, OrganizationDetailID: f.giftDet.ID,
				FieldValues: map[string]bool{"finGiftManager": true},
			})
			Expect(err).NotTo(HaveOccurred())

			manager := f.giftDefs["finGiftManager"]
			Expect(f.fields.Delete(manager.ID)).To(Succeed())

			updated, err := f.service.Update(ctx, f.admin, view.ID, assignment.UpdateRequest{
				FieldValues: map[string]bool{"finGiftFinancialAnalyst": true},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FieldValues).To(Equal(map[string]bool{"finGiftFinancialAnalyst": true}))

			active := true
			_, err = f.fields.Update(manager.ID, fielddefinition.UpdateRequest{Active: &active})
			Expect(err).NotTo(HaveOccurred())

			restored, err := f.service.Get(f.admin, view.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.FieldValues).To(Equal(map[string]bool{"finGiftManager": true, "finGiftFinancialAnalyst": true}))
		})

		It("reads values by definition, not by key", func() {
			view, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{
				EmployeeID: f.alan.ID, OrganizationDetailID: f.giftDet.ID,
			})
			Expect(err).NotTo(HaveOccurred())

			labManager, err := f.fields.Create(fielddefinition.CreateRequest{OrganizationTypeID: f.lab.ID, FieldKey: "finGiftManager", FieldTitle: "Lab Manager"})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.db.Create(&assignmentDatamodel.FieldValue{
				AssignmentID: view.ID, FieldDefinitionID: labManager.ID, FieldValue: true,
			}).Error).To(Succeed())

			got, err := f.service.Get(f.admin, view.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.FieldValues["finGiftManager"]).To(BeFalse())
		})

		It("returns not found for unknown assignments", func() {
			_, err := f.service.Update(ctx, f.admin, 404, assignment.UpdateRequest{})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeAssignmentNotFound)).To(BeTrue())
		})
	})

	Describe("List and Get", func() {
		BeforeEach(func() {
			for _, e := range []*employee.Employee{f.ada, f.alan} {
				_, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{EmployeeID: e.ID, OrganizationDetailID: f.giftDet.ID})
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{EmployeeID: f.ada.ID, OrganizationDetailID: f.labDet.ID})
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists only the slug's type, newest first by default", func() {
			page, err := f.service.List(f.admin, "gift", pagination.Request{SortBy: "id", SortDir: "desc", Size: 10}.Normalize())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalElements).To(BeEquivalentTo(2))
			Expect(page.Content[0].EmployeeFirstName).To(Equal("Alan"))
		})

		It("searches employee and organization fields", func() {
			page, err := f.service.List(f.admin, "gift", pagination.Request{Search: "LOVELACE", Size: 10}.Normalize())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Content).To(HaveLen(1))

			page, err = f.service.List(f.admin, "gift", pagination.Request{Search: "endow", Size: 10}.Normalize())
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Content).To(HaveLen(2))
		})

		It("denies a user without access and leaks nothing", func() {
			u := &coreUser.User{ID: 7, Role: coreUser.RoleUser, OrganizationAccess: map[int64]bool{f.gift.ID: true}}
			page, err := f.service.List(u, "lab", pagination.Request{}.Normalize())
			Expect(appErrors.HasCode(err, appErrors.ErrCodeAccessDenied)).To(BeTrue())
			Expect(page.Content).To(BeEmpty())

			labRows, err := f.service.ListByOrganizationDetail(f.admin, f.labDet.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.Get(u, labRows[0].ID)
			Expect(appErrors.HasCode(err, appErrors.ErrCodeAccessDenied)).To(BeTrue())
		})

		It("filters stats to accessible types", func() {
			stats, err := f.service.Stats(f.admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(assignment.Stats{f.gift.ID: 2, f.lab.ID: 1}))

			u := &coreUser.User{ID: 7, Role: coreUser.RoleUser, OrganizationAccess: map[int64]bool{f.lab.ID: true}}
			stats, err = f.service.Stats(u)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(assignment.Stats{f.lab.ID: 1}))
		})

		It("counts assignments by author", func() {
			stats, err := f.service.CreatedByStats(f.admin.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(Equal(map[string]int64{"gift": 2, "lab": 1}))
		})

		It("exports rows with their definitions", func() {
			t, defs, views, err := f.service.Export(f.admin, "gift")
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Slug).To(Equal("gift"))
			Expect(fielddefinition.Keys(defs)).To(Equal([]string{"finGiftManager", "finGiftFinancialAnalyst"}))
			Expect(views).To(HaveLen(2))
		})
	})

	Describe("Delete", func() {
		It("hard deletes the assignment and its values", func() {
			view, err := f.service.Create(ctx, f.admin, assignment.CreateRequest{EmployeeID: f.ada.ID, OrganizationDetailID: f.giftDet.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.service.Delete(ctx, f.admin, view.ID)).To(Succeed())

			_, err = f.service.Get(f.admin, view.ID)
			Expect(appErrors.HasCode(err, appErrors.ErrCodeAssignmentNotFound)).To(BeTrue())

			var remaining int64
			Expect(f.db.Model(&assignmentDatamodel.FieldValue{}).Count(&remaining).Error).To(Succeed())
			Expect(remaining).To(BeZero())
			Expect(f.events()).To(ContainElements(events.AssignmentCreated, events.AssignmentDeleted))
		})
	})

	Describe("BulkCreate", func() {
		It("reports per-row results in input order", func() {
			resp, err := f.service.BulkCreate(ctx, f.admin, []assignment.BulkRow{
				{RowID: "a", EmployeeID: f.ada.ID, OrganizationDetailID: f.giftDet.ID, FieldValues: map[string]bool{"finGiftManager": true}},
				{RowID: "b", EmployeeID: 999, OrganizationDetailID: f.giftDet.ID},
				{RowID: "c", EmployeeID: f.alan.ID, OrganizationDetailID: f.giftDet.ID},
				{RowID: "d", EmployeeID: f.ada.ID, OrganizationDetailID: f.labDet.ID, FieldValues: map[string]bool{"nope": true}},
				{RowID: "e", EmployeeID: f.alan.ID, OrganizationDetailID: f.labDet.ID},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Created).To(Equal(3))
			Expect(resp.Failed).To(Equal(2))

			ids := make([]string, 0, len(resp.Results))
			statuses := make([]string, 0, len(resp.Results))
			for _, r := range resp.Results {
				ids = append(ids, r.RowID)
				statuses = append(statuses, r.Status)
			}
			Expect(ids).To(Equal([]string{"a", "b", "c", "d", "e"}))
			Expect(statuses).To(Equal([]string{"created", "failed", "created", "failed", "created"}))
			Expect(resp.Results[0].Assignment.FieldValues["finGiftManager"]).To(BeTrue())
			Expect(resp.Results[1].Error).To(ContainSubstring("not found"))
		})

		It("marks every row failed when the request is already cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			resp, err := f.service.BulkCreate(cancelled, f.admin, []assignment.BulkRow{
				{RowID: "a", EmployeeID: f.ada.ID, OrganizationDetailID: f.giftDet.ID},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Created + resp.Failed).To(Equal(1))
		})

		It("rejects empty and oversized batches", func() {
			_, err := f.service.BulkCreate(ctx, f.admin, nil)
			Expect(err).To(HaveOccurred())

			rows := make([]assignment.BulkRow, 51)
			_, err = f.service.BulkCreate(ctx, f.admin, rows)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ValidateRows", func() {
		It("resolves each row independently", func() {
			rows, err := f.service.ValidateRows([]assignment.ValidateRowRequest{
				{RowID: "1", WorkerID: "W1"},
				{RowID: "2", Email: "ALAN@example.com"},
				{RowID: "3", PositionID: "P9"},
				{RowID: "4"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0].State).To(Equal(assignment.StateValid))
			Expect(rows[1].State).To(Equal(assignment.StateValid))
			Expect(rows[1].Selected.EmployeeID).To(Equal("W2"))
			Expect(rows[2].State).To(Equal(assignment.StateFailed))
			Expect(rows[3].State).To(Equal(assignment.StateEmpty))
		})

		It("saves only valid rows after validation", func() {
			employees := employee.NewService(employeePostgres.NewEmployeeRepository(f.db), slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
			_, err := employees.Create(employee.CreateRequest{EmployeeID: "W3", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", PositionID: "P2"})
			Expect(err).NotTo(HaveOccurred())

			pending, err := f.service.ValidateRows([]assignment.ValidateRowRequest{
				{RowID: "A", WorkerID: "W1"},
				{RowID: "B", Email: "nobody@example.com"},
				{RowID: "C", PositionID: "P2"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(pending[0].State).To(Equal(assignment.StateValid))
			Expect(pending[1].State).To(Equal(assignment.StateFailed))
			Expect(pending[2].State).To(Equal(assignment.StateMultiple))
			Expect(pending[2].Selected).To(BeNil())
			Expect(pending[2].Candidates).To(HaveLen(2))

			details := map[string]int64{"A": f.giftDet.ID, "B": f.giftDet.ID, "C": f.labDet.ID}
			var rows []assignment.BulkRow
			for _, p := range pending {
				if p.Eligible() {
					rows = append(rows, assignment.BulkRow{RowID: p.RowID, EmployeeID: p.Selected.ID, OrganizationDetailID: details[p.RowID]})
				}
			}
			Expect(rows).To(HaveLen(1))

			resp, err := f.service.BulkCreate(ctx, f.admin, rows)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Created).To(Equal(1))
			Expect(resp.Results[0].RowID).To(Equal("A"))

			var count int64
			Expect(f.db.Model(&assignmentDatamodel.Assignment{}).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})
	})
})
