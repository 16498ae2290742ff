package postgres

import (
	"errors"

	orgDetailDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationdetail"
	orgTypeDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationtype"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
	"gorm.io/gorm"
)

type OrganizationTypeRepository struct {
	db *gorm.DB
}

func NewOrganizationTypeRepository(db *gorm.DB) organizationtype.RepositoryAPI {
	return &OrganizationTypeRepository{db: db}
}

func (r *OrganizationTypeRepository) GetAll(activeOnly bool) ([]*orgTypeDatamodel.OrganizationType, error) {
	var types []*orgTypeDatamodel.OrganizationType
	query := r.db.Order("display_order ASC").Order("id ASC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	err := query.Find(&types).Error
	return types, err
}

func (r *OrganizationTypeRepository) GetByID(id int64) (*orgTypeDatamodel.OrganizationType, error) {
	return r.first("id = ?", id)
}

func (r *OrganizationTypeRepository) GetBySlug(slug string) (*orgTypeDatamodel.OrganizationType, error) {
	return r.first("slug = ?", slug)
}

func (r *OrganizationTypeRepository) GetByName(name string) (*orgTypeDatamodel.OrganizationType, error) {
	return r.first("name = ?", name)
}

func (r *OrganizationTypeRepository) first(query string, args ...interface{}) (*orgTypeDatamodel.OrganizationType, error) {
	var t orgTypeDatamodel.OrganizationType
	err := r.db.Where(query, args...).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *OrganizationTypeRepository) Create(t *orgTypeDatamodel.OrganizationType) error {
	return translate(r.db.Create(t).Error)
}

func (r *OrganizationTypeRepository) Update(t *orgTypeDatamodel.OrganizationType, previousName string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		if previousName == "" || previousName == t.Name {
			return nil
		}
		return tx.Model(&orgDetailDatamodel.OrganizationDetail{}).
			Where("organization_type = ?", previousName).
			Update("organization_type", t.Name).Error
	})
	return translate(err)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return organizationtype.ErrDuplicateOrganizationType
	}
	return err
}

func (r *OrganizationTypeRepository) SetActive(id int64, active bool) error {
	return r.db.Model(&orgTypeDatamodel.OrganizationType{}).Where("id = ?", id).Update("active", active).Error
}
