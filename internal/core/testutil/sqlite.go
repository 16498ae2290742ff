// Package testutil opens throwaway databases for repository and handler tests.
package testutil

import (
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	employeeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/employee"
	fieldDefDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/fielddefinition"
	orgDetailDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationdetail"
	orgTypeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationtype"
	parameterDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/parameter"
	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
)

// Models lists every table row type in creation order.
func Models() []interface{} {
	return []interface{}{
		&orgTypeDatamodel.OrganizationType{},
		&fieldDefDatamodel.FieldDefinition{},
		&orgDetailDatamodel.OrganizationDetail{},
		&employeeDatamodel.Employee{},
		&userDatamodel.User{},
		&userDatamodel.OrganizationAccess{},
		&assignmentDatamodel.Assignment{},
		&assignmentDatamodel.FieldValue{},
		&parameterDatamodel.AppParameter{},
	}
}

// NewSQLiteDB returns an in-memory database with every table migrated.
// The pool is pinned to one connection because each sqlite :memory:
// connection is its own database.
func NewSQLiteDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return db, nil
}

// SQLX wraps the gorm connection for read models written against sqlx.
func SQLX(db *gorm.DB) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlx.NewDb(sqlDB, "sqlite3"), nil
}
