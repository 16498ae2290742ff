package assignment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	appErrors "github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/assignment"
	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

type mockService struct {
	listSlug  string
	listReq   pagination.Request
	actor     *coreUser.User
	getErr    error
	bulkRows  []assignment.BulkRow
	detailID  int64
	validated []assignment.ValidateRowRequest
}

func (m *mockService) List(actor *coreUser.User, slug string, req pagination.Request) (pagination.Page[*assignment.View], error) {
	m.actor, m.listSlug, m.listReq = actor, slug, req
	return pagination.NewPage([]*assignment.View{{ID: 1}}, 1, req), nil
}

func (m *mockService) Get(actor *coreUser.User, id int64) (*assignment.View, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &assignment.View{ID: id}, nil
}

func (m *mockService) ListByOrganizationDetail(actor *coreUser.User, detailID int64) ([]*assignment.View, error) {
	return []*assignment.View{}, nil
}

func (m *mockService) Create(ctx context.Context, actor *coreUser.User, req assignment.CreateRequest) (*assignment.View, error) {
	return &assignment.View{ID: 10, EmployeeID: req.EmployeeID}, nil
}

func (m *mockService) AssignEmployee(ctx context.Context, actor *coreUser.User, detailID int64, req assignment.AssignEmployeeRequest) (*assignment.View, error) {
	m.detailID = detailID
	return &assignment.View{ID: 11, OrganizationDetailID: detailID}, nil
}

func (m *mockService) Update(ctx context.Context, actor *coreUser.User, id int64, req assignment.UpdateRequest) (*assignment.View, error) {
	return &assignment.View{ID: id, FieldValues: req.FieldValues}, nil
}

func (m *mockService) Delete(ctx context.Context, actor *coreUser.User, id int64) error {
	return nil
}

func (m *mockService) Stats(actor *coreUser.User) (assignment.Stats, error) {
	return assignment.Stats{1: 3}, nil
}

func (m *mockService) BulkCreate(ctx context.Context, actor *coreUser.User, rows []assignment.BulkRow) (*assignment.BulkResponse, error) {
	m.bulkRows = rows
	return &assignment.BulkResponse{Results: []assignment.BulkResult{}, Created: len(rows)}, nil
}

func (m *mockService) ValidateRows(rows []assignment.ValidateRowRequest) ([]*assignment.PendingRow, error) {
	m.validated = rows
	out := make([]*assignment.PendingRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, assignment.NewPendingRow(r))
	}
	return out, nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var _ = Describe("Assignment Handler", func() {
	var (
		service *mockService
		handler *assignment.Handler
		admin   *coreUser.User
	)

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = &mockService{}
		handler = assignment.NewHandler(transport.NewBaseHandler(slogger), service)
		admin = &coreUser.User{ID: 1, Role: coreUser.RoleAdmin}
	})

	authed := func(req *http.Request) *http.Request {
		return req.WithContext(coreUser.WithContext(req.Context(), admin))
	}

	It("requires orgTypeSlug on list", func() {
		w := httptest.NewRecorder()
		handler.List(w, authed(httptest.NewRequest(http.MethodGet, "/assignments", nil)))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("passes paging and the principal to the service", func() {
		w := httptest.NewRecorder()
		handler.List(w, authed(httptest.NewRequest(http.MethodGet, "/assignments?orgTypeSlug=gift&page=2&size=5&search=ada", nil)))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(service.listSlug).To(Equal("gift"))
		Expect(service.listReq.Page).To(Equal(2))
		Expect(service.listReq.Size).To(Equal(5))
		Expect(service.listReq.SortDir).To(Equal("desc"))
		Expect(service.actor).To(BeIdenticalTo(admin))

		var page map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &page)).To(Succeed())
		Expect(page["totalElements"]).To(BeEquivalentTo(1))
	})

	It("maps service errors onto their status", func() {
		service.getErr = appErrors.ErrAccessDenied
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/assignments/4", nil), "id", "4")
		w := httptest.NewRecorder()
		handler.Get(w, authed(req))
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring(string(appErrors.ErrCodeAccessDenied)))
	})

	It("rejects a non-numeric id", func() {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/assignments/x", nil), "id", "x")
		w := httptest.NewRecorder()
		handler.Get(w, authed(req))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("creates with 201", func() {
		body := bytes.NewBufferString(`{"employeeId":3,"organizationDetailId":4,"fieldValues":{"a":true}}`)
		w := httptest.NewRecorder()
		handler.Create(w, authed(httptest.NewRequest(http.MethodPost, "/assignments", body)))
		Expect(w.Code).To(Equal(http.StatusCreated))
	})

	It("assigns an employee to the detail in the path", func() {
		body := bytes.NewBufferString(`{"employeeId":3}`)
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/organization-details/8/assignments", body), "id", "8")
		w := httptest.NewRecorder()
		handler.AssignEmployee(w, authed(req))
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(service.detailID).To(BeEquivalentTo(8))
	})

	It("deletes with 204", func() {
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/assignments/4", nil), "id", "4")
		w := httptest.NewRecorder()
		handler.Delete(w, authed(req))
		Expect(w.Code).To(Equal(http.StatusNoContent))
	})

	It("rejects malformed bulk bodies", func() {
		w := httptest.NewRecorder()
		handler.BulkCreate(w, authed(httptest.NewRequest(http.MethodPost, "/assignments/bulk", bytes.NewBufferString("{"))))
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("forwards bulk rows", func() {
		body := bytes.NewBufferString(`{"rows":[{"rowId":"a","employeeId":1,"organizationDetailId":2},{"rowId":"b","employeeId":3,"organizationDetailId":2}]}`)
		w := httptest.NewRecorder()
		handler.BulkCreate(w, authed(httptest.NewRequest(http.MethodPost, "/assignments/bulk", body)))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(service.bulkRows).To(HaveLen(2))
		Expect(service.bulkRows[1].RowID).To(Equal("b"))
	})

	It("wraps validated rows", func() {
		body := bytes.NewBufferString(`{"rows":[{"rowId":"a","workerId":"W1"}]}`)
		w := httptest.NewRecorder()
		handler.ValidateRows(w, authed(httptest.NewRequest(http.MethodPost, "/assignments/bulk/validate", body)))
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp struct {
			Rows []assignment.PendingRow `json:"rows"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Rows).To(HaveLen(1))
		Expect(resp.Rows[0].WorkerID).To(Equal("W1"))
	})
})
