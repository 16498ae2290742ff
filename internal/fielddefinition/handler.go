package fielddefinition

import (
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(orgTypeID int64, activeOnly bool) ([]*FieldDefinition, error)
	ListActiveBySlug(slug string) ([]*FieldDefinition, error)
	GetByID(id int64) (*FieldDefinition, error)
	Create(req CreateRequest) (*FieldDefinition, error)
	Update(id int64, req UpdateRequest) (*FieldDefinition, error)
	Delete(id int64) error
	HardDelete(id int64, force bool) (*HardDeleteResponse, error)
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

// List handles GET /field-definitions?orgTypeId=&activeOnly=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orgTypeID, err := strconv.ParseInt(q.Get("orgTypeId"), 10, 64)
	if err != nil || orgTypeID <= 0 {
		h.WriteAppError(w, errors.NewValidationError("orgTypeId is required", errors.ErrCodeInvalidRequest))
		return
	}
	activeOnly, _ := strconv.ParseBool(q.Get("activeOnly"))

	defs, err := h.Service.List(orgTypeID, activeOnly)
	if err != nil {
		h.Logger.Error("List: failed to list field definitions", "error", err, "org_type_id", orgTypeID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, defs)
}

func (h *Handler) ListBySlug(w http.ResponseWriter, r *http.Request) {
	defs, err := h.Service.ListActiveBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, defs)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	def, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, def)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	def, err := h.Service.Create(req)
	if err != nil {
		h.Logger.Warn("Create: field definition rejected", "error", err, "field_key", req.FieldKey)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, def)
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
	def, err := h.Service.Update(id, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, def)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if err := h.Service.Delete(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HardDelete handles DELETE /field-definitions/{id}/hard?force=true
func (h *Handler) HardDelete(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	resp, err := h.Service.HardDelete(id, force)
	if err != nil {
		h.Logger.Warn("HardDelete: field definition not deleted", "error", err, "id", id, "force", force)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
