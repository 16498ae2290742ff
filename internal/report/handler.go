package report

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ServiceAPI interface {
	FullReport(ctx context.Context) (*Workbook, error)
	ExportAssignments(actor *coreUser.User, slug string) (*Workbook, error)
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

// FullReport handles GET /reports/full-report
func (h *Handler) FullReport(w http.ResponseWriter, r *http.Request) {
	wb, err := h.Service.FullReport(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeWorkbook(w, wb)
}

// ExportAssignments handles GET /reports/assignments?orgTypeSlug=
func (h *Handler) ExportAssignments(w http.ResponseWriter, r *http.Request) {
	wb, err := h.Service.ExportAssignments(coreUser.FromContext(r.Context()), r.URL.Query().Get("orgTypeSlug"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeWorkbook(w, wb)
}

func (h *Handler) writeWorkbook(w http.ResponseWriter, wb *Workbook) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", wb.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(wb.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(wb.Data); err != nil {
		h.Logger.Warn("report download interrupted", "filename", wb.Filename, "error", err)
	}
}
