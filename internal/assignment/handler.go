package assignment

import (
	"context"
	"net/http"
	"strings"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

type ServiceAPI interface {
	List(actor *coreUser.User, slug string, req pagination.Request) (pagination.Page[*View], error)
	Get(actor *coreUser.User, id int64) (*View, error)
	ListByOrganizationDetail(actor *coreUser.User, detailID int64) ([]*View, error)
	Create(ctx context.Context, actor *coreUser.User, req CreateRequest) (*View, error)
	AssignEmployee(ctx context.Context, actor *coreUser.User, detailID int64, req AssignEmployeeRequest) (*View, error)
	Update(ctx context.Context, actor *coreUser.User, id int64, req UpdateRequest) (*View, error)
	Delete(ctx context.Context, actor *coreUser.User, id int64) error
	Stats(actor *coreUser.User) (Stats, error)
	BulkCreate(ctx context.Context, actor *coreUser.User, rows []BulkRow) (*BulkResponse, error)
	ValidateRows(rows []ValidateRowRequest) ([]*PendingRow, error)
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

// List handles GET /assignments?orgTypeSlug&page&size&sortBy&sortDir&search
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slug := strings.TrimSpace(q.Get("orgTypeSlug"))
	if slug == "" {
		h.WriteAppError(w, errors.NewValidationError("orgTypeSlug is required", errors.ErrCodeInvalidRequest))
		return
	}
	actor := coreUser.FromContext(r.Context())

	page, err := h.Service.List(actor, slug, pagination.FromQuery(q, "id", "desc"))
	if err != nil {
		h.Logger.Warn("List: assignments not listed", "error", err, "org_type", slug, "user_id", actorID(actor))
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	view, err := h.Service.Get(coreUser.FromContext(r.Context()), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) ListByOrganizationDetail(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	views, err := h.Service.ListByOrganizationDetail(coreUser.FromContext(r.Context()), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	actor := coreUser.FromContext(r.Context())
	view, err := h.Service.Create(r.Context(), actor, req)
	if err != nil {
		h.Logger.Warn("Create: assignment rejected", "error", err, "user_id", actorID(actor))
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, view)
}

// AssignEmployee handles POST /organization-details/{id}/assign-employee
func (h *Handler) AssignEmployee(w http.ResponseWriter, r *http.Request) {
	detailID, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	var req AssignEmployeeRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	view, err := h.Service.AssignEmployee(r.Context(), coreUser.FromContext(r.Context()), detailID, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, view)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	var req UpdateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	view, err := h.Service.Update(r.Context(), coreUser.FromContext(r.Context()), id, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if err := h.Service.Delete(r.Context(), coreUser.FromContext(r.Context()), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(coreUser.FromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

// BulkCreate handles POST /assignments/bulk
func (h *Handler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	actor := coreUser.FromContext(r.Context())
	resp, err := h.Service.BulkCreate(r.Context(), actor, req.Rows)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.Logger.Info("BulkCreate: rows processed", "created", resp.Created, "failed", resp.Failed, "user_id", actorID(actor))
	h.WriteJSON(w, http.StatusOK, resp)
}

// ValidateRows handles POST /assignments/bulk/validate
func (h *Handler) ValidateRows(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	rows, err := h.Service.ValidateRows(req.Rows)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

func actorID(u *coreUser.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
