package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	parameterDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/parameter"
	"github.com/frahmantamala/role-assignment/internal/parameter"
)

type ParameterRepository struct {
	db *gorm.DB
}

func NewParameterRepository(db *gorm.DB) parameter.RepositoryAPI {
	return &ParameterRepository{
		db: db,
	}
}

func (r *ParameterRepository) List() ([]*parameterDatamodel.AppParameter, error) {
	var rows []*parameterDatamodel.AppParameter
	if err := r.db.Order("param_key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ParameterRepository) GetByKey(key string) (*parameterDatamodel.AppParameter, error) {
	var p parameterDatamodel.AppParameter
	err := r.db.Where("param_key = ?", key).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert updates by primary key when p.ID is set; otherwise a concurrent insert
// of the same key turns into an update.
func (r *ParameterRepository) Upsert(p *parameterDatamodel.AppParameter) error {
	if p.ID != 0 {
		return r.db.Save(p).Error
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "param_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"param_value", "param_type", "description", "updated_at"}),
	}).Create(p).Error
}

func (r *ParameterRepository) DeleteByKey(key string) error {
	return r.db.Where("param_key = ?", key).Delete(&parameterDatamodel.AppParameter{}).Error
}
