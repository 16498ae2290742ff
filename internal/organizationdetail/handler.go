package organizationdetail

import (
	"io"
	"net/http"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/csvimport"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

type ServiceAPI interface {
	List(req pagination.Request, filter ListFilter) (pagination.Page[*OrganizationDetail], error)
	ListOrganizationTypes() ([]string, error)
	GetByID(id int64) (*OrganizationDetail, error)
	Create(req CreateRequest) (*OrganizationDetail, error)
	Update(id int64, req UpdateRequest) (*OrganizationDetail, error)
	Delete(id int64) error
	ImportCSV(r io.Reader) (*ImportResponse, error)
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

// List handles GET /organization-details?page&size&sortBy&sortDir&search&organizationTypeFilter
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := pagination.FromQuery(q, "id", "asc")
	page, err := h.Service.List(req, ListFilter{OrganizationType: q.Get("organizationTypeFilter")})
	if err != nil {
		h.Logger.Error("List: failed to list organization details", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) ListOrganizationTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListOrganizationTypes()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	detail, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	detail, err := h.Service.Create(req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, detail)
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
	detail, err := h.Service.Update(id, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
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

// Import handles POST /organization-details/import with a multipart "file" field.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvimport.MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warn("Import: missing upload", "error", err)
		h.WriteAppError(w, errors.NewValidationError("a csv file is required in the 'file' field", errors.ErrCodeInvalidFile))
		return
	}
	defer file.Close()

	resp, err := h.Service.ImportCSV(file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
