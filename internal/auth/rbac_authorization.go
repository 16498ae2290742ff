package auth

import (
	"log/slog"
	"net/http"
	"strings"

	errors "github.com/frahmantamala/role-assignment/internal"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

// OrganizationTypeResolver maps an organization type slug onto its id.
type OrganizationTypeResolver interface {
	TypeIDForSlug(slug string) (int64, error)
}

type RBACAuthorization struct {
	*transport.BaseHandler
	checker AccessChecker
}

func NewRBACAuthorization(checker AccessChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		checker:     checker,
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := coreUser.FromContext(r.Context())
			if user == nil {
				ra.WriteAppError(w, errors.ErrInvalidToken)
				return
			}
			if !ra.checker.IsAdmin(user) {
				ra.Logger.WarnContext(r.Context(), "access denied: admin role required", "user_id", user.ID, "path", r.URL.Path)
				ra.WriteAppError(w, errors.ErrAdminRequired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOrganizationTypeAccess gates routes addressed by the orgTypeSlug query
// parameter. Requests without the parameter pass through to the handler.
func (ra *RBACAuthorization) RequireOrganizationTypeAccess(resolver OrganizationTypeResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := coreUser.FromContext(r.Context())
			if user == nil {
				ra.WriteAppError(w, errors.ErrInvalidToken)
				return
			}
			slug := strings.TrimSpace(r.URL.Query().Get("orgTypeSlug"))
			if slug == "" {
				next.ServeHTTP(w, r)
				return
			}

			typeID, err := resolver.TypeIDForSlug(slug)
			if err != nil {
				ra.HandleServiceError(w, err)
				return
			}
			if !ra.checker.CanAccessOrganizationType(user, typeID) {
				ra.Logger.WarnContext(r.Context(), "access denied: organization type",
					"user_id", user.ID, "org_type", slug)
				ra.WriteAppError(w, errors.ErrAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
