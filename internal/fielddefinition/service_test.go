package fielddefinition_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	appErrors "github.com/frahmantamala/role-assignment/internal"
	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	fieldDefDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/core/testutil"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	fieldDefPostgres "github.com/frahmantamala/role-assignment/internal/fielddefinition/postgres"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
	orgTypePostgres "github.com/frahmantamala/role-assignment/internal/organizationtype/postgres"
	"github.com/frahmantamala/role-assignment/internal/transport"
)

// staleKeyLookup hides existing keys, as a concurrent create would see them.
type staleKeyLookup struct {
	fielddefinition.RepositoryAPI
}

func (staleKeyLookup) GetByKey(int64, string) (*fieldDefDatamodel.FieldDefinition, error) {
	return nil, nil
}

var _ = Describe("FieldDefinition Service", func() {
	var (
		db      *gorm.DB
		service *fielddefinition.Service
		labID   int64
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())

		orgTypes := organizationtype.NewService(orgTypePostgres.NewOrganizationTypeRepository(db), slogger)
		lab, err := orgTypes.Create(organizationtype.CreateRequest{Name: "Lab"})
		Expect(err).NotTo(HaveOccurred())
		labID = lab.ID

		service = fielddefinition.NewService(fieldDefPostgres.NewFieldDefinitionRepository(db), orgTypes, slogger)
	})

	create := func(key string, order int) *fielddefinition.FieldDefinition {
		def, err := service.Create(fielddefinition.CreateRequest{
			OrganizationTypeID: labID,
			FieldKey:           key,
			FieldTitle:         key + " title",
			DisplayOrder:       order,
		})
		Expect(err).NotTo(HaveOccurred())
		return def
	}

	storeValue := func(defID int64) {
		Expect(db.Create(&assignmentDatamodel.FieldValue{AssignmentID: 1, FieldDefinitionID: defID, FieldValue: true}).Error).To(Succeed())
	}

	Describe("Create", func() {
		It("stores an active definition", func() {
			def := create("safetyOfficer", 1)
			Expect(def.ID).To(BeNumerically(">", 0))
			Expect(def.Active).To(BeTrue())
		})

		It("maps a unique index violation to conflict", func() {
			create("safetyOfficer", 1)

			quiet := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			orgTypes := organizationtype.NewService(orgTypePostgres.NewOrganizationTypeRepository(db), quiet)
			racing := fielddefinition.NewService(staleKeyLookup{fieldDefPostgres.NewFieldDefinitionRepository(db)}, orgTypes, quiet)
			_, err := racing.Create(fielddefinition.CreateRequest{OrganizationTypeID: labID, FieldKey: "safetyOfficer", FieldTitle: "Again"})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeFieldKeyConflict)).To(BeTrue())
			appErr, _ := appErrors.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(http.StatusConflict))
		})

		It("rejects keys that cannot be used as map keys", func() {
			for _, key := range []string{"", "1abc", "with space", "dash-key"} {
				_, err := service.Create(fielddefinition.CreateRequest{OrganizationTypeID: labID, FieldKey: key, FieldTitle: "t"})
				Expect(err).To(HaveOccurred(), key)
				appErr, _ := appErrors.IsAppError(err)
				Expect(appErr.StatusCode).To(Equal(http.StatusBadRequest), key)
			}
		})

		It("returns conflict for a duplicate key within the type", func() {
			create("safetyOfficer", 1)
			_, err := service.Create(fielddefinition.CreateRequest{OrganizationTypeID: labID, FieldKey: "safetyOfficer", FieldTitle: "again"})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeFieldKeyConflict)).To(BeTrue())
		})

		It("returns not found for an unknown organization type", func() {
			_, err := service.Create(fielddefinition.CreateRequest{OrganizationTypeID: 999, FieldKey: "k", FieldTitle: "t"})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeOrganizationTypeNotFound)).To(BeTrue())
		})
	})

	Describe("listing", func() {
		It("orders by display order and honours activeOnly", func() {
			b := create("second", 2)
			create("first", 1)
			Expect(service.Delete(b.ID)).To(Succeed())

			all, err := service.List(labID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(fielddefinition.Keys(all)).To(Equal([]string{"first", "second"}))

			active, err := service.ListActiveBySlug("lab")
			Expect(err).NotTo(HaveOccurred())
			Expect(fielddefinition.Keys(active)).To(Equal([]string{"first"}))
		})
	})

	Describe("Update", func() {
		It("renames an unreferenced key", func() {
			def := create("oldKey", 1)
			key := "newKey"
			updated, err := service.Update(def.ID, fielddefinition.UpdateRequest{FieldKey: &key})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FieldKey).To(Equal("newKey"))
		})

		It("refuses to rename a key with stored values", func() {
			def := create("oldKey", 1)
			storeValue(def.ID)
			key := "newKey"
			_, err := service.Update(def.ID, fielddefinition.UpdateRequest{FieldKey: &key})
			Expect(appErrors.HasCode(err, appErrors.ErrCodeFieldInUse)).To(BeTrue())
		})

		It("allows title changes on referenced definitions", func() {
			def := create("oldKey", 1)
			storeValue(def.ID)
			title := "Renamed title"
			updated, err := service.Update(def.ID, fielddefinition.UpdateRequest{FieldTitle: &title})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.FieldTitle).To(Equal(title))
		})
	})

	Describe("HardDelete", func() {
		It("deletes an unreferenced definition", func() {
			def := create("unused", 1)
			resp, err := service.HardDelete(def.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ValuesDropped).To(BeZero())

			_, err = service.GetByID(def.ID)
			Expect(appErrors.HasCode(err, appErrors.ErrCodeFieldDefinitionNotFound)).To(BeTrue())
		})

		It("reports the reference count without force", func() {
			def := create("used", 1)
			storeValue(def.ID)
			_, err := service.HardDelete(def.ID, false)
			appErr, ok := appErrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(appErrors.ErrCodeFieldInUse))
			Expect(appErr.Details).To(Equal(fielddefinition.InUseDetails{FieldDefinitionID: def.ID, ReferenceCount: 1}))
		})

		It("cascades stored values with force", func() {
			def := create("used", 1)
			storeValue(def.ID)
			resp, err := service.HardDelete(def.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ValuesDropped).To(BeEquivalentTo(1))

			var remaining int64
			Expect(db.Model(&assignmentDatamodel.FieldValue{}).Count(&remaining).Error).To(Succeed())
			Expect(remaining).To(BeZero())
		})
	})

	Describe("Handler", func() {
		var handler *fielddefinition.Handler

		BeforeEach(func() {
			handler = fielddefinition.NewHandler(transport.NewBaseHandler(nil), service)
		})

		It("answers 409 on a forced-less hard delete of a referenced flag", func() {
			def := create("used", 1)
			storeValue(def.ID)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", strconv.FormatInt(def.ID, 10))
			req := httptest.NewRequest(http.MethodDelete, "/field-definitions/1/hard", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()
			handler.HardDelete(w, req)
			Expect(w.Code).To(Equal(http.StatusConflict))
			Expect(w.Body.String()).To(ContainSubstring(`"referenceCount":1`))
		})

		It("requires orgTypeId on list", func() {
			w := httptest.NewRecorder()
			handler.List(w, httptest.NewRequest(http.MethodGet, "/field-definitions", nil))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("creates through the handler", func() {
			body := `{"organizationTypeId":` + strconv.FormatInt(labID, 10) + `,"fieldKey":"leadChemist","fieldTitle":"Lead Chemist"}`
			w := httptest.NewRecorder()
			handler.Create(w, httptest.NewRequest(http.MethodPost, "/field-definitions", bytes.NewBufferString(body)))
			Expect(w.Code).To(Equal(http.StatusCreated))
		})
	})
})
