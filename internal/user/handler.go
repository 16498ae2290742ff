package user

import (
	"io"
	"net/http"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/csvimport"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

type ServiceAPI interface {
	List(req pagination.Request, filter ListFilter) (pagination.Page[*User], error)
	GetByID(id int64) (*User, error)
	Create(req CreateRequest) (*User, error)
	Update(id int64, req UpdateRequest) (*User, error)
	Delete(actor *coreUser.User, id int64) error
	ResetPassword(id int64) (*MessageResponse, error)
	Stats() (Stats, error)
	MyAssignmentStats(actor *coreUser.User) (map[string]int64, error)
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

// List handles GET /users?page&size&sortBy&sortDir&search&accessFilter
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Service.List(pagination.FromQuery(q, "id", "asc"), ListFilter{AccessFilter: q.Get("accessFilter")})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	u, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	u, err := h.Service.Create(req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, u)
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
	u, err := h.Service.Update(id, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	if err := h.Service.Delete(coreUser.FromContext(r.Context()), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword handles POST /users/{id}/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	resp, err := h.Service.ResetPassword(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.Logger.Info("ResetPassword: password cleared", "user_id", id)
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

// MyAssignmentStats handles GET /users/me/assignment-stats
func (h *Handler) MyAssignmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.MyAssignmentStats(coreUser.FromContext(r.Context()))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

// Import handles POST /users/import with a multipart "file" field.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvimport.MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warn("Import: missing upload", "error", err)
		h.WriteAppError(w, errors.NewValidationError("a csv file is required in the 'file' field", errors.ErrCodeInvalidFile))
		return
	}
	defer file.Close()

	h.Logger.Info("Import: user file received", "filename", header.Filename, "size", header.Size)
	resp, err := h.Service.ImportCSV(file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
