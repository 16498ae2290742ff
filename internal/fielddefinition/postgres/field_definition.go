package postgres

import (
	"errors"

	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	fieldDefDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/fielddefinition"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	"gorm.io/gorm"
)

type FieldDefinitionRepository struct {
	db *gorm.DB
}

func NewFieldDefinitionRepository(db *gorm.DB) fielddefinition.RepositoryAPI {
	return &FieldDefinitionRepository{db: db}
}

func (r *FieldDefinitionRepository) List(orgTypeID int64, activeOnly bool) ([]*fieldDefDatamodel.FieldDefinition, error) {
	var defs []*fieldDefDatamodel.FieldDefinition
	query := r.db.Where("organization_type_id = ?", orgTypeID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Order("display_order ASC").Order("id ASC").Find(&defs).Error
	return defs, err
}

func (r *FieldDefinitionRepository) GetByID(id int64) (*fieldDefDatamodel.FieldDefinition, error) {
	return r.first("id = ?", id)
}

func (r *FieldDefinitionRepository) GetByKey(orgTypeID int64, key string) (*fieldDefDatamodel.FieldDefinition, error) {
	return r.first("organization_type_id = ? AND field_key = ?", orgTypeID, key)
}

func (r *FieldDefinitionRepository) first(query string, args ...interface{}) (*fieldDefDatamodel.FieldDefinition, error) {
	var def fieldDefDatamodel.FieldDefinition
	err := r.db.Where(query, args...).First(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &def, nil
}

func (r *FieldDefinitionRepository) Create(def *fieldDefDatamodel.FieldDefinition) error {
	return translate(r.db.Create(def).Error)
}

func (r *FieldDefinitionRepository) Update(def *fieldDefDatamodel.FieldDefinition) error {
	return translate(r.db.Save(def).Error)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fielddefinition.ErrDuplicateFieldKey
	}
	return err
}

func (r *FieldDefinitionRepository) SetActive(id int64, active bool) error {
	return r.db.Model(&fieldDefDatamodel.FieldDefinition{}).Where("id = ?", id).Update("active", active).Error
}

func (r *FieldDefinitionRepository) CountValues(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&assignmentDatamodel.FieldValue{}).Where("field_definition_id = ?", id).Count(&count).Error
	return count, err
}

func (r *FieldDefinitionRepository) HardDelete(id int64) (int64, error) {
	var dropped int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("field_definition_id = ?", id).Delete(&assignmentDatamodel.FieldValue{})
		if res.Error != nil {
			return res.Error
		}
		dropped = res.RowsAffected
		return tx.Delete(&fieldDefDatamodel.FieldDefinition{}, id).Error
	})
	return dropped, err
}
