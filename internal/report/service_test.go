package report_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/assignment"
	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	employeeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/employee"
	orgDetailDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationdetail"
	"github.com/frahmantamala/role-assignment/internal/core/testutil"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
	"github.com/frahmantamala/role-assignment/internal/report"
	reportPostgres "github.com/frahmantamala/role-assignment/internal/report/postgres"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

type stubExporter struct {
	actor *coreUser.User
	slug  string
	err   error
}

func (s *stubExporter) Export(actor *coreUser.User, slug string) (*organizationtype.OrganizationType, []*fielddefinition.FieldDefinition, []*assignment.View, error) {
	s.actor, s.slug = actor, slug
	if s.err != nil {
		return nil, nil, nil, s.err
	}
	defs, views := fixtureExport()
	return &organizationtype.OrganizationType{ID: 1, Name: "Gift", Slug: "gift"}, defs, views, nil
}

func seedAssignment(db *gorm.DB, detailID int64, workerID, positionID, title string, createdAt time.Time) {
	e := &employeeDatamodel.Employee{EmployeeID: workerID, PositionID: positionID, PositionTitle: title}
	Expect(db.Create(e).Error).To(Succeed())
	Expect(db.Create(&assignmentDatamodel.Assignment{
		EmployeeID: e.ID, OrganizationDetailID: detailID, CreatedAt: createdAt,
	}).Error).To(Succeed())
}

func openWorkbook(data []byte) *excelize.File {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(f.Close)
	return f
}

func cellValue(f *excelize.File, sheet, ref string) string {
	v, err := f.GetCellValue(sheet, ref)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Report Service", func() {
	var (
		exporter *stubExporter
		service  *report.Service
		handler  *report.Handler
		clock    = time.Date(2025, 12, 15, 10, 30, 0, 0, time.UTC)
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err := testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())

		detail := &orgDetailDatamodel.OrganizationDetail{Organization: "Chemistry Endowment", OrganizationType: "Gift"}
		Expect(db.Create(detail).Error).To(Succeed())
		seedAssignment(db, detail.ID, "W3", "P2", "Analyst", day("2025-01-01"))
		seedAssignment(db, detail.ID, "W2", "P1", "Manager", day("2025-01-03"))
		seedAssignment(db, detail.ID, "W1", "P1", "Manager", day("2025-01-02"))

		sqlxDB, err := testutil.SQLX(db)
		Expect(err).NotTo(HaveOccurred())

		exporter = &stubExporter{}
		service = report.NewService(reportPostgres.NewReportRepository(sqlxDB), exporter, slogger).
			WithClock(func() time.Time { return clock })
		handler = report.NewHandler(transport.NewBaseHandler(slogger), service)
	})

	Describe("FullReportSheets", func() {
		It("orders rows by position then creation time", func() {
			sheets, err := service.FullReportSheets(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(sheets).To(HaveLen(2))

			var expected, actual bytes.Buffer
			Expect(report.AssignRolesSheet(fixtureReportRows()).Dump(&expected)).To(Succeed())
			Expect(sheets[1].Dump(&actual)).To(Succeed())
			Expect(actual.String()).To(Equal(expected.String()))
		})
	})

	Describe("FullReport", func() {
		It("renders both sheets with data from row 6", func() {
			wb, err := service.FullReport(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(wb.Filename).To(Equal("Assign_Roles_20251215_1030.xlsx"))

			f := openWorkbook(wb.Data)
			Expect(f.GetSheetList()).To(Equal([]string{report.SheetOverview, report.SheetAssignRoles}))
			Expect(cellValue(f, report.SheetOverview, "B2")).To(Equal("Assign Roles v44.0"))
			Expect(cellValue(f, report.SheetAssignRoles, "B5")).To(Equal("Spreadsheet Key*"))

			Expect(cellValue(f, report.SheetAssignRoles, "B6")).To(Equal("1"))
			Expect(cellValue(f, report.SheetAssignRoles, "C6")).To(Equal("2025-01-02"))
			Expect(cellValue(f, report.SheetAssignRoles, "E6")).To(Equal("P1"))
			Expect(cellValue(f, report.SheetAssignRoles, "G7")).To(Equal("2"))
			Expect(cellValue(f, report.SheetAssignRoles, "G8")).To(Equal("1"))
			Expect(cellValue(f, report.SheetAssignRoles, "L8")).To(Equal("Analyst"))
			Expect(cellValue(f, report.SheetAssignRoles, "O8")).To(Equal("P2"))
			Expect(cellValue(f, report.SheetAssignRoles, "B9")).To(BeEmpty())
		})
	})

	Describe("ExportAssignments", func() {
		It("names the file after the type and writes Yes/No flags", func() {
			actor := &coreUser.User{ID: 9, Role: coreUser.RoleUser}
			wb, err := service.ExportAssignments(actor, "gift")
			Expect(err).NotTo(HaveOccurred())
			Expect(exporter.actor).To(Equal(actor))
			Expect(exporter.slug).To(Equal("gift"))
			Expect(wb.Filename).To(Equal("gift_assignments_20251215_1030.xlsx"))

			f := openWorkbook(wb.Data)
			Expect(cellValue(f, report.SheetAssignments, "I1")).To(Equal("Gift Manager"))
			Expect(cellValue(f, report.SheetAssignments, "I2")).To(Equal("Yes"))
			Expect(cellValue(f, report.SheetAssignments, "J3")).To(Equal("No"))
		})

		It("passes access errors through", func() {
			exporter.err = appErrors.ErrAccessDenied
			_, err := service.ExportAssignments(&coreUser.User{ID: 9}, "gift")
			Expect(appErrors.HasCode(err, appErrors.ErrCodeAccessDenied)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		It("downloads the full report as an attachment", func() {
			w := httptest.NewRecorder()
			handler.FullReport(w, httptest.NewRequest(http.MethodGet, "/reports/full-report", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("spreadsheetml"))
			Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="Assign_Roles_20251215_1030.xlsx"`))
			Expect(w.Body.Len()).To(BeNumerically(">", 0))
		})

		It("maps denied exports to 403", func() {
			exporter.err = appErrors.ErrAccessDenied
			req := httptest.NewRequest(http.MethodGet, "/reports/assignments?orgTypeSlug=gift", nil)
			req = req.WithContext(coreUser.WithContext(req.Context(), &coreUser.User{ID: 9}))
			w := httptest.NewRecorder()
			handler.ExportAssignments(w, req)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(exporter.slug).To(Equal("gift"))
		})
	})
})
