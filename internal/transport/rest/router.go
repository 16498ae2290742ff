package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/role-assignment/internal/assignment"
	"github.com/frahmantamala/role-assignment/internal/auth"
	"github.com/frahmantamala/role-assignment/internal/employee"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/organizationdetail"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
	"github.com/frahmantamala/role-assignment/internal/parameter"
	"github.com/frahmantamala/role-assignment/internal/report"
	"github.com/frahmantamala/role-assignment/internal/transport/middleware"
	"github.com/frahmantamala/role-assignment/internal/transport/swagger"
	"github.com/frahmantamala/role-assignment/internal/user"
)

// Handlers groups every HTTP surface the router mounts.
type Handlers struct {
	Auth               *auth.Handler
	RBAC               *auth.RBACAuthorization
	AccessResolver     auth.OrganizationTypeResolver
	OrganizationType   *organizationtype.Handler
	FieldDefinition    *fielddefinition.Handler
	OrganizationDetail *organizationdetail.Handler
	Employee           *employee.Handler
	Assignment         *assignment.Handler
	User               *user.Handler
	Parameter          *parameter.Handler
	Report             *report.Handler
}

type RouterOptions struct {
	AllowedOrigins string
	OpenAPIPath    string
	UploadDir      string
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, opts RouterOptions, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, opts.UploadDir)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, opts.OpenAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)

			// reachable while a password change is pending
			ar.Group(func(pr chi.Router) {
				pr.Use(h.Auth.PasswordChangeMiddleware)
				pr.Post("/change-password", h.Auth.ChangePassword)
				pr.Get("/me", h.Auth.Me)
			})
		})

		r.Get("/parameters/public", h.Parameter.Public)
		r.Get("/parameters/image/{key}", h.Parameter.Image)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			registerProtected(pr, h)
		})
	})
}

func registerProtected(pr chi.Router, h Handlers) {
	admin := h.RBAC.RequireAdmin()

	pr.Route("/organization-types", func(r chi.Router) {
		r.Get("/active", h.OrganizationType.ListActive)
		r.Get("/menu", h.OrganizationType.Menu)
		r.Get("/by-slug/{slug}", h.OrganizationType.GetBySlug)
		r.Group(func(ar chi.Router) {
			ar.Use(admin)
			ar.Get("/", h.OrganizationType.List)
			ar.Post("/", h.OrganizationType.Create)
			ar.Get("/{id}", h.OrganizationType.GetByID)
			ar.Put("/{id}", h.OrganizationType.Update)
			ar.Delete("/{id}", h.OrganizationType.Delete)
		})
	})

	pr.Route("/field-definitions", func(r chi.Router) {
		r.Get("/by-slug/{slug}", h.FieldDefinition.ListBySlug)
		r.Group(func(ar chi.Router) {
			ar.Use(admin)
			ar.Get("/", h.FieldDefinition.List)
			ar.Post("/", h.FieldDefinition.Create)
			ar.Get("/{id}", h.FieldDefinition.GetByID)
			ar.Put("/{id}", h.FieldDefinition.Update)
			ar.Delete("/{id}", h.FieldDefinition.Delete)
			ar.Delete("/{id}/hard", h.FieldDefinition.HardDelete)
		})
	})

	pr.Route("/organization-details", func(r chi.Router) {
		r.Get("/", h.OrganizationDetail.List)
		r.Get("/organization-types", h.OrganizationDetail.ListOrganizationTypes)
		r.Get("/{id}", h.OrganizationDetail.GetByID)
		r.Get("/{id}/assignments", h.Assignment.ListByOrganizationDetail)
		r.Post("/{id}/assign-employee", h.Assignment.AssignEmployee)
		r.Group(func(ar chi.Router) {
			ar.Use(admin)
			ar.Post("/", h.OrganizationDetail.Create)
			ar.Post("/import", h.OrganizationDetail.Import)
			ar.Put("/{id}", h.OrganizationDetail.Update)
			ar.Delete("/{id}", h.OrganizationDetail.Delete)
		})
	})

	pr.Route("/employees", func(r chi.Router) {
		r.Get("/", h.Employee.List)
		r.Get("/search", h.Employee.Search)
		r.Get("/find-by-worker-id", h.Employee.FindByWorkerID)
		r.Get("/find-by-email", h.Employee.FindByEmail)
		r.Get("/find-by-position-id", h.Employee.FindByPositionID)
		r.Get("/{id}", h.Employee.GetByID)
		r.Group(func(ar chi.Router) {
			ar.Use(admin)
			ar.Post("/", h.Employee.Create)
			ar.Post("/import", h.Employee.Import)
			ar.Put("/{id}", h.Employee.Update)
			ar.Delete("/{id}", h.Employee.Delete)
		})
	})

	pr.Route("/assignments", func(r chi.Router) {
		r.With(h.RBAC.RequireOrganizationTypeAccess(h.AccessResolver)).Get("/", h.Assignment.List)
		r.Get("/stats", h.Assignment.Stats)
		r.Post("/", h.Assignment.Create)
		r.Post("/bulk", h.Assignment.BulkCreate)
		r.Post("/bulk/validate", h.Assignment.ValidateRows)
		r.Get("/{id}", h.Assignment.Get)
		r.Put("/{id}", h.Assignment.Update)
		r.Delete("/{id}", h.Assignment.Delete)
	})

	pr.Route("/users", func(r chi.Router) {
		r.Get("/me/assignment-stats", h.User.MyAssignmentStats)
		r.Group(func(ar chi.Router) {
			ar.Use(admin)
			ar.Get("/", h.User.List)
			ar.Post("/", h.User.Create)
			ar.Get("/stats", h.User.Stats)
			ar.Post("/import", h.User.Import)
			ar.Get("/{id}", h.User.GetByID)
			ar.Put("/{id}", h.User.Update)
			ar.Delete("/{id}", h.User.Delete)
			ar.Post("/{id}/reset-password", h.User.ResetPassword)
		})
	})

	pr.Route("/parameters", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.Parameter.List)
		r.Post("/", h.Parameter.Save)
		r.Post("/upload/{key}", h.Parameter.Upload)
		r.Get("/{key}", h.Parameter.Get)
		r.Delete("/{key}", h.Parameter.Delete)
	})

	pr.Route("/reports", func(r chi.Router) {
		r.With(admin).Get("/full-report", h.Report.FullReport)
		r.With(h.RBAC.RequireOrganizationTypeAccess(h.AccessResolver)).Get("/assignments", h.Report.ExportAssignments)
	})
}
