package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/role-assignment/internal/core/common/slug"
	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	employeeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/employee"
	fieldDefDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/fielddefinition"
	orgDetailDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationdetail"
	orgTypeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationtype"
	parameterDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/parameter"
	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
)

const (
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "admin123"
)

var seedAdminPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the default admin and organization types",
	Long:  `Seed the default administrator, organization types and field definitions. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearDomainTables(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared domain tables")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		report, err := seedDefaults(db, string(hash))
		if err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
		for _, line := range report {
			fmt.Println(line)
		}
		fmt.Println("Seeding complete")
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", defaultAdminPassword, "password for the seeded administrator")
}

type seedType struct {
	Name        string
	DisplayName string
	IconName    string
	Order       int
	Fields      []seedField
}

type seedField struct {
	Key         string
	Title       string
	Description string
}

var defaultTypes = []seedType{
	{Name: "Gift", DisplayName: "Gift Assignments", IconName: "Gift", Order: 1, Fields: []seedField{
		{"finGiftFinancialAnalyst", "FIN_Gift_Financial_Analyst", "In Workday I am responsible for preparing or analyzing financial reports for assigned gifts. I support Gift Managers or finance teams with financial data and insights. I maintain and review financial records for gift funds, but do not approve expenses, requisitions, etc."},
		{"finGiftManager", "FIN_Gift_Manager", "In Workday I am responsible for approving transactions impacting the financial results of a gift and upholding donor intent. I am the designated primary manager for specific gifts. I have responsibility for approving spend transactions charged to those gifts. I oversee the financial stewardship and compliance of assigned gift funds."},
		{"finProfessorshipPartnerGift", "FIN_Professorship_Partner_Gift", "In Workday I am responsible for managing or overseeing named professorships funded by specific gifts. I need to review detailed reports on professorship funds and activities. I have authority to approve business processes related to the establishment, management, or modification of named professorships."},
	}},
	{Name: "Academic Unit", DisplayName: "Academic Unit Assignments", IconName: "GraduationCap", Order: 2, Fields: []seedField{
		{"hcmAcademicChairAu", "HCM_Academic_Chair_AU", "Department Chair role for Academic Unit"},
		{"hcmAcademicDeanAuh", "HCM_Academic_Dean_AUH", "Dean role for Academic Unit Hierarchy"},
		{"hcmAcademicFacultyExecutiveAuh", "HCM_Academic_Faculty_Executive_AUH", "Faculty Executive role for Academic Unit Hierarchy"},
		{"hcmAcademicFacultyHrAnalystAu", "HCM_Academic_Faculty_HR_Analyst_AU", "Faculty HR Analyst role for Academic Unit"},
		{"hcmAcademicProvostPartnerAuh", "HCM_Academic_Provost_Partner_AUH", "Provost Partner role for Academic Unit Hierarchy"},
		{"hcmAcademicSchoolDirectorAuh", "HCM_Academic_School_Director_AUH", "School Director role for Academic Unit Hierarchy"},
	}},
	{Name: "Company", DisplayName: "Company Assignments", IconName: "Building2", Order: 3},
	{Name: "Cost Center", DisplayName: "Cost Center Assignments", IconName: "DollarSign", Order: 4},
	{Name: "Fund", DisplayName: "Fund Assignments", IconName: "Wallet", Order: 5},
	{Name: "Location", DisplayName: "Location Assignments", IconName: "MapPin", Order: 6},
	{Name: "Pay Group", DisplayName: "Pay Group Assignments", IconName: "Users", Order: 7},
	{Name: "Project", DisplayName: "Project Assignments", IconName: "FolderKanban", Order: 8},
	{Name: "Grant", DisplayName: "Grant Assignments", IconName: "Award", Order: 9},
	{Name: "Program", DisplayName: "Program Assignments", IconName: "Layers", Order: 10},
}

// seedDefaults inserts whatever part of the default data is missing and
// returns one line per row it created.
func seedDefaults(db *gorm.DB, adminPasswordHash string) ([]string, error) {
	var created []string

	err := db.Transaction(func(tx *gorm.DB) error {
		var admins int64
		if err := tx.Model(&userDatamodel.User{}).Where("email = ?", defaultAdminEmail).Count(&admins).Error; err != nil {
			return err
		}
		if admins == 0 {
			admin := &userDatamodel.User{
				FirstName: "Admin",
				LastName:  "User",
				Email:     defaultAdminEmail,
				Password:  &adminPasswordHash,
				Role:      coreUser.RoleAdmin,
			}
			if err := tx.Create(admin).Error; err != nil {
				return fmt.Errorf("admin user: %w", err)
			}
			created = append(created, "Seeded admin user: "+defaultAdminEmail)
		}

		for _, st := range defaultTypes {
			var t orgTypeDatamodel.OrganizationType
			res := tx.Where("name = ?", st.Name).Limit(1).Find(&t)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				t = orgTypeDatamodel.OrganizationType{
					Name:         st.Name,
					Slug:         slug.Make(st.Name),
					DisplayName:  st.DisplayName,
					IconName:     st.IconName,
					DisplayOrder: st.Order,
					Active:       true,
				}
				if err := tx.Create(&t).Error; err != nil {
					return fmt.Errorf("organization type %s: %w", st.Name, err)
				}
				created = append(created, "Seeded organization type: "+st.Name)
			}

			for i, f := range st.Fields {
				var n int64
				if err := tx.Model(&fieldDefDatamodel.FieldDefinition{}).
					Where("organization_type_id = ? AND field_key = ?", t.ID, f.Key).
					Count(&n).Error; err != nil {
					return err
				}
				if n > 0 {
					continue
				}
				def := &fieldDefDatamodel.FieldDefinition{
					OrganizationTypeID: t.ID,
					FieldKey:           f.Key,
					FieldTitle:         f.Title,
					FieldDescription:   f.Description,
					DisplayOrder:       i + 1,
					Active:             true,
				}
				if err := tx.Create(def).Error; err != nil {
					return fmt.Errorf("field definition %s: %w", f.Key, err)
				}
				created = append(created, fmt.Sprintf("Seeded field definition: %s.%s", st.Name, f.Key))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// clearDomainTables empties every table except users, children first.
func clearDomainTables(db *gorm.DB) error {
	models := []interface{}{
		&assignmentDatamodel.FieldValue{},
		&assignmentDatamodel.Assignment{},
		&userDatamodel.OrganizationAccess{},
		&fieldDefDatamodel.FieldDefinition{},
		&orgDetailDatamodel.OrganizationDetail{},
		&employeeDatamodel.Employee{},
		&orgTypeDatamodel.OrganizationType{},
		&parameterDatamodel.AppParameter{},
	}
	return db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range models {
			if err := all.Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
