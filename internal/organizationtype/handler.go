package organizationtype

import (
	"net/http"

	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListAll() ([]*OrganizationType, error)
	ListActive() ([]*OrganizationType, error)
	Menu(actor *coreUser.User) ([]MenuItem, error)
	GetByID(id int64) (*OrganizationType, error)
	GetBySlug(slug string) (*OrganizationType, error)
	Create(req CreateRequest) (*OrganizationType, error)
	Update(id int64, req UpdateRequest) (*OrganizationType, error)
	Delete(id int64) error
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListAll()
	if err != nil {
		h.Logger.Error("List: failed to list organization types", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListActive()
	if err != nil {
		h.Logger.Error("ListActive: failed to list organization types", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.Menu(coreUser.FromContext(r.Context()))
	if err != nil {
		h.Logger.Error("Menu: failed to build menu", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	t, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	t, err := h.Service.Create(req)
	if err != nil {
		h.Logger.Warn("Create: organization type rejected", "error", err, "name", req.Name)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
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
	t, err := h.Service.Update(id, req)
	if err != nil {
		h.Logger.Warn("Update: organization type rejected", "error", err, "id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
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
