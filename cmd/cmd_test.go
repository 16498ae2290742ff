package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/role-assignment/internal/core/datamodel/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationtype"
	parameterDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/parameter"
	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
	"github.com/frahmantamala/role-assignment/internal/core/events"
	"github.com/frahmantamala/role-assignment/internal/core/testutil"
)

const testConfig = `
app:
  env: development
http_server:
  port: 9090
  allowed_origins: "http://localhost:5173"
  read_header_timeout: 5s
  read_timeout: 30s
  openapi_path: ./api/openapi.yml
database:
  source: postgres://localhost:5432/roles?sslmode=disable
  max_open_conns: 10
  max_idle_conns: 2
security:
  access_token_secret: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa
  refresh_token_secret: bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb
  access_token_duration: 15m
  refresh_token_duration: 24h
  bcrypt_cost: 4
storage:
  upload_dir: ./uploads
  max_upload_size: 1048576
bulk:
  max_workers: 2
  max_rows: 500
logging:
  level: error
  format: text
`

var _ = Describe("loadConfig", func() {
	BeforeEach(func() {
		if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
			Skip("environment forces env-based config")
		}
	})

	It("decodes config.yml from the given directory", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfig), 0o600)).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(15 * time.Minute))
		Expect(cfg.Storage.MaxUploadSize).To(BeEquivalentTo(1 << 20))
		Expect(cfg.Bulk.MaxWorkers).To(Equal(2))
	})

	It("rejects a config that fails validation", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte("http_server:\n  port: 0\n"), 0o600)).To(Succeed())

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("error validating config")))
	})

	It("fails when config.yml is missing", func() {
		_, err := loadConfig(GinkgoT().TempDir())
		Expect(err).To(MatchError(ContainSubstring("error reading config")))
	})
})

var _ = Describe("seedDefaults", func() {
	var db *gorm.DB

	BeforeEach(func() {
		var err error
		db, err = testutil.NewSQLiteDB()
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the admin, every default type and the Gift and Academic Unit definitions", func() {
		lines, err := seedDefaults(db, "hash")
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).NotTo(BeEmpty())

		var admin userDatamodel.User
		Expect(db.Where("email = ?", defaultAdminEmail).First(&admin).Error).To(Succeed())
		Expect(admin.Role).To(Equal("ADMIN"))
		Expect(admin.Password).NotTo(BeNil())

		var types []organizationtype.OrganizationType
		Expect(db.Order("display_order").Find(&types).Error).To(Succeed())
		Expect(types).To(HaveLen(10))
		Expect(types[1].Slug).To(Equal("academic-unit"))
		Expect(types[6].Slug).To(Equal("pay-group"))

		var defs int64
		Expect(db.Model(&fielddefinition.FieldDefinition{}).Where("organization_type_id = ?", types[0].ID).Count(&defs).Error).To(Succeed())
		Expect(defs).To(BeEquivalentTo(3))
		Expect(db.Model(&fielddefinition.FieldDefinition{}).Where("organization_type_id = ?", types[1].ID).Count(&defs).Error).To(Succeed())
		Expect(defs).To(BeEquivalentTo(6))
	})

	It("creates nothing on a second run", func() {
		_, err := seedDefaults(db, "hash")
		Expect(err).NotTo(HaveOccurred())

		lines, err := seedDefaults(db, "hash")
		Expect(err).NotTo(HaveOccurred())
		Expect(lines).To(BeEmpty())

		var n int64
		Expect(db.Model(&organizationtype.OrganizationType{}).Count(&n).Error).To(Succeed())
		Expect(n).To(BeEquivalentTo(10))
	})

	It("clears domain tables but keeps users", func() {
		_, err := seedDefaults(db, "hash")
		Expect(err).NotTo(HaveOccurred())
		Expect(db.Create(&parameterDatamodel.AppParameter{ParamKey: "title", ParamValue: "x", ParamType: "text"}).Error).To(Succeed())

		Expect(clearDomainTables(db)).To(Succeed())

		var n int64
		Expect(db.Model(&organizationtype.OrganizationType{}).Count(&n).Error).To(Succeed())
		Expect(n).To(BeZero())
		Expect(db.Model(&parameterDatamodel.AppParameter{}).Count(&n).Error).To(Succeed())
		Expect(n).To(BeZero())
		Expect(db.Model(&userDatamodel.User{}).Count(&n).Error).To(Succeed())
		Expect(n).To(BeEquivalentTo(1))
	})
})

var _ = Describe("publishSampleEvent", func() {
	It("publishes known assignment events", func() {
		Expect(publishSampleEvent(context.Background(), events.AssignmentCreated)).To(Succeed())
	})

	It("rejects unknown event types", func() {
		Expect(publishSampleEvent(context.Background(), "assignment.archived")).To(MatchError(ContainSubstring("unknown event type")))
	})
})
