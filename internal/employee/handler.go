package employee

import (
	"io"
	"net/http"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/core/common/csvimport"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

type ServiceAPI interface {
	List(req pagination.Request) (pagination.Page[*Employee], error)
	Search(query string) ([]*Employee, error)
	FindByWorkerID(workerID string) ([]*Employee, error)
	FindByEmail(email string) ([]*Employee, error)
	FindByPositionID(positionID string) ([]*Employee, error)
	GetByID(id int64) (*Employee, error)
	Create(req CreateRequest) (*Employee, error)
	Update(id int64, req UpdateRequest) (*Employee, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.List(pagination.FromQuery(r.URL.Query(), "id", "asc"))
	if err != nil {
		h.Logger.Error("List: failed to list employees", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.Search(r.URL.Query().Get("query"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, employees)
}

func (h *Handler) FindByWorkerID(w http.ResponseWriter, r *http.Request) {
	h.writeLookup(w, r.URL.Query().Get("workerId"), h.Service.FindByWorkerID)
}

func (h *Handler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	h.writeLookup(w, r.URL.Query().Get("email"), h.Service.FindByEmail)
}

func (h *Handler) FindByPositionID(w http.ResponseWriter, r *http.Request) {
	h.writeLookup(w, r.URL.Query().Get("positionId"), h.Service.FindByPositionID)
}

func (h *Handler) writeLookup(w http.ResponseWriter, value string, find func(string) ([]*Employee, error)) {
	employees, err := find(value)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, employees)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	e, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	e, err := h.Service.Create(req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, e)
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
	e, err := h.Service.Update(id, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
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

// Import handles POST /employees/import with a multipart "file" field.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, csvimport.MaxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warn("Import: missing upload", "error", err)
		h.WriteAppError(w, errors.NewValidationError("a csv file is required in the 'file' field", errors.ErrCodeInvalidFile))
		return
	}
	defer file.Close()

	h.Logger.Info("Import: employee file received", "filename", header.Filename, "size", header.Size)
	resp, err := h.Service.ImportCSV(file)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
