package auth

import (
	"net/http"

	errors "github.com/frahmantamala/role-assignment/internal"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/transport"
	"github.com/frahmantamala/role-assignment/pkg/logger"
)

type ServiceAPI interface {
	Login(dto LoginDTO) (*LoginResponse, error)
	Refresh(dto RefreshTokenDTO) (*AuthTokens, error)
	ValidateAccessToken(token string) (*Claims, error)
	LoadPrincipal(userID int64) (*coreUser.User, error)
	ChangePassword(actor *coreUser.User, dto ChangePasswordDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.Login(dto)
	if err != nil {
		h.Logger.Warn("Login: authentication failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	tokens, err := h.Service.Refresh(dto)
	if err != nil {
		h.Logger.Warn("RefreshToken: token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var dto ChangePasswordDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.ChangePassword(coreUser.FromContext(r.Context()), dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Password changed successfully"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := coreUser.FromContext(r.Context())
	if u == nil {
		h.WriteAppError(w, errors.ErrInvalidToken)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

// AuthMiddleware requires a valid access token and a settled password.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return h.authenticate(next, false)
}

// PasswordChangeMiddleware is AuthMiddleware for the routes a user with a
// pending password change may still reach.
func (h *Handler) PasswordChangeMiddleware(next http.Handler) http.Handler {
	return h.authenticate(next, true)
}

func (h *Handler) authenticate(next http.Handler, allowPendingPassword bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Debug("auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteAppError(w, errors.NewUnauthorizedError("missing authorization token", errors.ErrCodeInvalidToken))
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Debug("auth middleware: token validation failed", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		principal, err := h.Service.LoadPrincipal(claims.UserID)
		if err != nil {
			h.Logger.Warn("auth middleware: failed to load user", "user_id", claims.UserID, "error", err)
			h.HandleServiceError(w, err)
			return
		}

		if principal.MustChangePassword && !allowPendingPassword {
			h.WriteAppError(w, errors.ErrPasswordChangeRequired)
			return
		}

		ctx := coreUser.WithContext(r.Context(), principal)
		ctx = logger.With(ctx, "user_id", principal.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
