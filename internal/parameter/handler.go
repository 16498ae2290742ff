package parameter

import (
	"io"
	"net/http"
	"os"

	"github.com/go-chi/chi"

	errors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

type ServiceAPI interface {
	List() ([]*Parameter, error)
	Public() (PublicParameters, error)
	Get(key string) (*Parameter, error)
	Save(req SaveRequest) (*Parameter, error)
	SaveImage(key, description string, upload Upload) (*Parameter, error)
	OpenImage(key string) (*os.File, *Parameter, error)
	Delete(key string) error
}

type Handler struct {
	*transport.BaseHandler
	Service       ServiceAPI
	maxUploadSize int64
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, maxUploadSize int64) *Handler {
	return &Handler{
		BaseHandler:   baseHandler,
		Service:       service,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := h.Service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, params)
}

// Public handles GET /parameters/public
func (h *Handler) Public(w http.ResponseWriter, r *http.Request) {
	params, err := h.Service.Public()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, params)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(chi.URLParam(r, "key"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if appErr := h.DecodeJSON(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	p, err := h.Service.Save(req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// Upload handles POST /parameters/upload/{key} with multipart "file" and "description".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// room for the description field and multipart framing
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.Logger.Warn("Upload: missing file", "error", err)
		h.WriteAppError(w, errors.NewValidationError("an image is required in the 'file' field", errors.ErrCodeInvalidFile))
		return
	}
	defer file.Close()

	p, err := h.Service.SaveImage(chi.URLParam(r, "key"), r.FormValue("description"), Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// Image handles GET /parameters/image/{key}. Clients fall back to a default on 404.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	f, p, err := h.Service.OpenImage(chi.URLParam(r, "key"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer f.Close()

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	info, statErr := f.Stat()
	if statErr != nil {
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, f); err != nil {
			h.Logger.Warn("Image: copy failed", "error", err)
		}
		return
	}
	http.ServeContent(w, r, p.ParamValue, info.ModTime(), f)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(chi.URLParam(r, "key")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
