package user_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
	"github.com/frahmantamala/role-assignment/internal/core/testutil"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
	orgTypePostgres "github.com/frahmantamala/role-assignment/internal/organizationtype/postgres"
	"github.com/frahmantamala/role-assignment/internal/transport"
	"github.com/frahmantamala/role-assignment/internal/user"
	userPostgres "github.com/frahmantamala/role-assignment/internal/user/postgres"
)

type stubAssignmentStats struct {
	userID int64
}

func (s *stubAssignmentStats) CreatedByStats(userID int64) (map[string]int64, error) {
	s.userID = userID
	return map[string]int64{"gift": 2}, nil
}

func strPtr(s string) *string { return &s }

var _ = Describe("User Service", func() {
	var (
		db        *gorm.DB
		service   *user.Service
		stats     *stubAssignmentStats
		gift, lab *organizationtype.OrganizationType
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())

		orgTypes := organizationtype.NewService(orgTypePostgres.NewOrganizationTypeRepository(db), slogger)
		gift, err = orgTypes.Create(organizationtype.CreateRequest{Name: "Gift"})
		Expect(err).NotTo(HaveOccurred())
		lab, err = orgTypes.Create(organizationtype.CreateRequest{Name: "Lab"})
		Expect(err).NotTo(HaveOccurred())

		stats = &stubAssignmentStats{}
		service = user.NewService(userPostgres.NewUserRepository(db), orgTypes, stats, bcrypt.MinCost, slogger)
	})

	Describe("Create", func() {
		It("defaults the role and leaves the password unset", func() {
			u, err := service.Create(user.CreateRequest{
				Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace",
				OrganizationAccess: map[int64]bool{gift.ID: true, lab.ID: false},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(coreUser.RoleUser))
			Expect(u.MustChangePassword).To(BeTrue())
			Expect(u.OrganizationAccess).To(Equal(map[int64]bool{gift.ID: true, lab.ID: false}))
		})

		It("hashes a provided password", func() {
			u, err := service.Create(user.CreateRequest{Email: "ada@example.com", Password: strPtr("secret1"), Role: "admin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.MustChangePassword).To(BeFalse())
			Expect(u.Role).To(Equal(coreUser.RoleAdmin))

			var row userDatamodel.User
			Expect(db.First(&row, u.ID).Error).To(Succeed())
			Expect(*row.Password).NotTo(Equal("secret1"))
			Expect(bcrypt.CompareHashAndPassword([]byte(*row.Password), []byte("secret1"))).To(Succeed())
		})

		It("rejects duplicate emails regardless of case", func() {
			_, err := service.Create(user.CreateRequest{Email: "ada@example.com"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(user.CreateRequest{Email: "ADA@example.com"})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeEmailConflict)).To(BeTrue())
		})

		It("rejects unknown roles and short passwords", func() {
			_, err := service.Create(user.CreateRequest{Email: "ada@example.com", Role: "owner"})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeValidationFailed)).To(BeTrue())

			_, err = service.Create(user.CreateRequest{Email: "ada@example.com", Password: strPtr("abc")})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("replaces the access map only when one is sent", func() {
			u, err := service.Create(user.CreateRequest{Email: "ada@example.com", OrganizationAccess: map[int64]bool{gift.ID: true}})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.Update(u.ID, user.UpdateRequest{FirstName: strPtr("Augusta")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FirstName).To(Equal("Augusta"))
			Expect(updated.OrganizationAccess).To(Equal(map[int64]bool{gift.ID: true}))

			updated, err = service.Update(u.ID, user.UpdateRequest{OrganizationAccess: map[int64]bool{lab.ID: true}})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.OrganizationAccess).To(Equal(map[int64]bool{lab.ID: true}))
		})

		It("keeps emails unique", func() {
			_, err := service.Create(user.CreateRequest{Email: "ada@example.com"})
			Expect(err).NotTo(HaveOccurred())
			other, err := service.Create(user.CreateRequest{Email: "alan@example.com"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(other.ID, user.UpdateRequest{Email: strPtr("ada@example.com")})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeEmailConflict)).To(BeTrue())

			_, err = service.Update(other.ID, user.UpdateRequest{Email: strPtr("ALAN@example.com")})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, req := range []user.CreateRequest{
				{Email: "ada@example.com", FirstName: "Ada", Company: "Analytical", OrganizationAccess: map[int64]bool{gift.ID: true}},
				{Email: "alan@example.com", FirstName: "Alan", OrganizationAccess: map[int64]bool{gift.ID: false, lab.ID: true}},
				{Email: "grace@example.com", FirstName: "Grace", Role: coreUser.RoleAdmin},
			} {
				_, err := service.Create(req)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("filters by access to a type", func() {
			page, err := service.List(pagination.Request{Size: 10}.Normalize(), user.ListFilter{AccessFilter: "gift"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalElements).To(BeEquivalentTo(1))
			Expect(page.Content[0].Email).To(Equal("ada@example.com"))

			page, err = service.List(pagination.Request{Size: 10}.Normalize(), user.ListFilter{AccessFilter: "all"})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.TotalElements).To(BeEquivalentTo(3))
		})

		It("searches names, emails and companies", func() {
			page, err := service.List(pagination.Request{Search: "analyt", Size: 10}.Normalize(), user.ListFilter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Content).To(HaveLen(1))
			Expect(page.Content[0].OrganizationAccess).To(HaveKeyWithValue(gift.ID, true))
		})

		It("returns not found for an unknown access filter", func() {
			_, err := service.List(pagination.Request{}.Normalize(), user.ListFilter{AccessFilter: "nope"})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeOrganizationTypeNotFound)).To(BeTrue())
		})

		It("reports stats per role and type", func() {
			s, err := service.Stats()
			Expect(err).NotTo(HaveOccurred())
			Expect(s["totalUsers"]).To(BeEquivalentTo(3))
			Expect(s["adminUsers"]).To(BeEquivalentTo(1))
			Expect(s["regularUsers"]).To(BeEquivalentTo(2))
			Expect(s["mustChangePassword"]).To(BeEquivalentTo(3))
			Expect(s["access_gift"]).To(BeEquivalentTo(1))
			Expect(s["access_lab"]).To(BeEquivalentTo(1))
		})
	})

	Describe("ResetPassword and Delete", func() {
		It("clears the stored password", func() {
			u, err := service.Create(user.CreateRequest{Email: "ada@example.com", Password: strPtr("secret1")})
			Expect(err).NotTo(HaveOccurred())

			resp, err := service.ResetPassword(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message).To(Equal("Password reset successfully. User must set a new password on next login."))

			reloaded, err := service.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.MustChangePassword).To(BeTrue())
		})

		It("refuses self deletion and removes others", func() {
			u, err := service.Create(user.CreateRequest{Email: "ada@example.com", OrganizationAccess: map[int64]bool{gift.ID: true}})
			Expect(err).NotTo(HaveOccurred())

			err = service.Delete(&coreUser.User{ID: u.ID, Role: coreUser.RoleAdmin}, u.ID)
			Expect(appErrors.HasCode(err, appErrors.ErrCodeAccessDenied)).To(BeTrue())

			Expect(service.Delete(&coreUser.User{ID: 999, Role: coreUser.RoleAdmin}, u.ID)).To(Succeed())
			_, err = service.GetByID(u.ID)
			Expect(appErrors.HasCode(err, appErrors.ErrCodeUserNotFound)).To(BeTrue())

			var remaining int64
			Expect(db.Model(&userDatamodel.OrganizationAccess{}).Count(&remaining).Error).To(Succeed())
			Expect(remaining).To(BeZero())
		})
	})

	It("delegates assignment stats to the caller", func() {
		s, err := service.MyAssignmentStats(&coreUser.User{ID: 42})
		Expect(err).NotTo(HaveOccurred())
		Expect(s).To(HaveKeyWithValue("gift", int64(2)))
		Expect(stats.userID).To(BeEquivalentTo(42))
	})

	Describe("ImportCSV", func() {
		It("imports rows and skips existing emails", func() {
			_, err := service.Create(user.CreateRequest{Email: "ada@example.com"})
			Expect(err).NotTo(HaveOccurred())

			csv := "Email|First Name|Last Name|Role|Password\n" +
				"ada@example.com|Ada|Lovelace|USER|\n" +
				"alan@example.com|Alan|Turing|ADMIN|secret1\n" +
				"|No|Email||\n"
			resp, err := service.ImportCSV(strings.NewReader(csv))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Imported).To(Equal(1))
			Expect(resp.Skipped).To(Equal(2))
			Expect(resp.Message).To(Equal("Successfully imported 1 users"))
		})

		It("requires the name and email columns", func() {
			_, err := service.ImportCSV(strings.NewReader("Email,Role\nada@example.com,USER\n"))
			Expect(appErrors.HasCode(err, appErrors.ErrCodeValidationFailed)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		var handler *user.Handler

		BeforeEach(func() {
			handler = user.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))), service)
		})

		It("creates over HTTP and lists with the access filter", func() {
			body := bytes.NewBufferString(`{"email":"ada@example.com","firstName":"Ada","organizationAccess":{"` + jsonID(gift.ID) + `":true}}`)
			w := httptest.NewRecorder()
			handler.Create(w, httptest.NewRequest(http.MethodPost, "/users", body))
			Expect(w.Code).To(Equal(http.StatusCreated))

			w = httptest.NewRecorder()
			handler.List(w, httptest.NewRequest(http.MethodGet, "/users?accessFilter=gift", nil))
			Expect(w.Code).To(Equal(http.StatusOK))

			var page struct {
				TotalElements int64        `json:"totalElements"`
				Content       []*user.User `json:"content"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &page)).To(Succeed())
			Expect(page.TotalElements).To(BeEquivalentTo(1))
			Expect(page.Content[0].OrganizationAccess[gift.ID]).To(BeTrue())
		})

		It("imports a multipart upload", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			part, err := mw.CreateFormFile("file", "users.csv")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte("email,first name,last name\nada@example.com,Ada,Lovelace\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/users/import", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			w := httptest.NewRecorder()
			handler.Import(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("Successfully imported 1 users"))
		})
	})
})

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
