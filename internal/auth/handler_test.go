package auth_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/auth"
	authPostgres "github.com/frahmantamala/role-assignment/internal/auth/postgres"
	"github.com/frahmantamala/role-assignment/internal/core/testutil"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

type fakeResolver map[string]int64

func (f fakeResolver) TypeIDForSlug(slug string) (int64, error) {
	id, ok := f[slug]
	if !ok {
		return 0, appErrors.NewNotFoundError("Organization type not found", appErrors.ErrCodeOrganizationTypeNotFound)
	}
	return id, nil
}

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		db       *gorm.DB
		handler  *auth.Handler
		tokenGen *auth.JWTTokenGenerator
		reached  *coreUser.User
		next     http.Handler
	)

	ginkgo.BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err = testutil.NewSQLiteDB()
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		tokenGen = auth.NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 24*time.Hour)
		service := auth.NewService(authPostgres.NewRepository(db), tokenGen, bcrypt.MinCost, slogger)
		handler = auth.NewHandler(transport.NewBaseHandler(slogger), service)

		reached = nil
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = coreUser.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	})

	bearer := func(path string, userID int64) *http.Request {
		token, err := tokenGen.GenerateAccessToken(userID, "", "")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	ginkgo.It("logs in over HTTP", func() {
		seedUser(db, "user@example.com", coreUser.RoleUser, strPtr("correct_password"))
		body := bytes.NewBufferString(`{"email":"user@example.com","password":"correct_password"}`)
		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", body))
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))

		var resp auth.LoginResponse
		gomega.Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(gomega.Succeed())
		gomega.Expect(resp.Email).To(gomega.Equal("user@example.com"))
		gomega.Expect(resp.AccessToken).NotTo(gomega.BeEmpty())
	})

	ginkgo.It("answers 401 for bad credentials", func() {
		body := bytes.NewBufferString(`{"email":"nobody@example.com","password":"x"}`)
		w := httptest.NewRecorder()
		handler.Login(w, httptest.NewRequest(http.MethodPost, "/auth/login", body))
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(w.Body.String()).To(gomega.ContainSubstring("Invalid email or password"))
	})

	ginkgo.Describe("AuthMiddleware", func() {
		ginkgo.It("requires a bearer token", func() {
			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/employees", nil))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(reached).To(gomega.BeNil())
		})

		ginkgo.It("puts the principal on the context", func() {
			u := seedUser(db, "user@example.com", coreUser.RoleUser, strPtr("correct_password"))
			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, bearer("/api/employees", u.ID))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(reached.Email).To(gomega.Equal("user@example.com"))
		})

		ginkgo.It("holds back users with a pending password change", func() {
			u := seedUser(db, "fresh@example.com", coreUser.RoleUser, nil)

			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, bearer("/api/employees", u.ID))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(w.Body.String()).To(gomega.ContainSubstring(string(appErrors.ErrCodePasswordChangeRequired)))

			w = httptest.NewRecorder()
			handler.PasswordChangeMiddleware(next).ServeHTTP(w, bearer("/api/auth/change-password", u.ID))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(reached.MustChangePassword).To(gomega.BeTrue())
		})

		ginkgo.It("rejects tokens for deleted users", func() {
			w := httptest.NewRecorder()
			handler.AuthMiddleware(next).ServeHTTP(w, bearer("/api/employees", 404))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("RBACAuthorization", func() {
		var rbac *auth.RBACAuthorization

		ginkgo.BeforeEach(func() {
			rbac = auth.NewRBACAuthorization(auth.NewAccessChecker(), slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
		})

		withUser := func(req *http.Request, u *coreUser.User) *http.Request {
			return req.WithContext(coreUser.WithContext(req.Context(), u))
		}

		ginkgo.It("restricts admin routes", func() {
			w := httptest.NewRecorder()
			req := withUser(httptest.NewRequest(http.MethodGet, "/api/users", nil), &coreUser.User{ID: 1, Role: coreUser.RoleUser})
			rbac.RequireAdmin()(next).ServeHTTP(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))

			w = httptest.NewRecorder()
			req = withUser(httptest.NewRequest(http.MethodGet, "/api/users", nil), &coreUser.User{ID: 2, Role: coreUser.RoleAdmin})
			rbac.RequireAdmin()(next).ServeHTTP(w, req)
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("gates by organization type slug", func() {
			guard := rbac.RequireOrganizationTypeAccess(fakeResolver{"gift": 1, "lab": 2})(next)
			u := &coreUser.User{ID: 1, Role: coreUser.RoleUser, OrganizationAccess: map[int64]bool{1: true, 2: false}}

			w := httptest.NewRecorder()
			guard.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/api/assignments?orgTypeSlug=gift", nil), u))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))

			w = httptest.NewRecorder()
			guard.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/api/assignments?orgTypeSlug=lab", nil), u))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))

			w = httptest.NewRecorder()
			guard.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/api/assignments?orgTypeSlug=nope", nil), u))
			gomega.Expect(w.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})
})
