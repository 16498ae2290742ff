package postgres

import (
	"errors"
	"strings"

	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	assignmentDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/assignment"
	orgDetailDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/organizationdetail"
	"github.com/frahmantamala/role-assignment/internal/organizationdetail"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"id":                     "id",
	"organization":           "organization",
	"legacyOrganizationName": "legacy_organization_name",
	"organizationType":       "organization_type",
	"referenceId":            "reference_id",
}

type OrganizationDetailRepository struct {
	db *gorm.DB
}

func NewOrganizationDetailRepository(db *gorm.DB) organizationdetail.RepositoryAPI {
	return &OrganizationDetailRepository{db: db}
}

func (r *OrganizationDetailRepository) List(req pagination.Request, filter organizationdetail.ListFilter) ([]*orgDetailDatamodel.OrganizationDetail, int64, error) {
	query := r.db.Model(&orgDetailDatamodel.OrganizationDetail{})

	if t := strings.TrimSpace(filter.OrganizationType); t != "" && !strings.EqualFold(t, "all") {
		query = query.Where("LOWER(organization_type) = ?", strings.ToLower(t))
	}
	if req.Search != "" {
		like := req.LikePattern()
		query = query.Where(
			"LOWER(legacy_organization_name) LIKE ? OR LOWER(organization) LIKE ? OR LOWER(organization_type) LIKE ? OR LOWER(reference_id) LIKE ?",
			like, like, like, like,
		)
	}

	query = query.Session(&gorm.Session{})
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var details []*orgDetailDatamodel.OrganizationDetail
	err := query.Order(req.OrderClause(sortColumns, "id")).
		Limit(req.Size).
		Offset(req.Offset()).
		Find(&details).Error
	return details, total, err
}

func (r *OrganizationDetailRepository) DistinctTypes() ([]string, error) {
	var types []string
	err := r.db.Model(&orgDetailDatamodel.OrganizationDetail{}).
		Where("organization_type IS NOT NULL AND organization_type <> ''").
		Distinct("organization_type").
		Order("organization_type ASC").
		Pluck("organization_type", &types).Error
	return types, err
}

func (r *OrganizationDetailRepository) GetByID(id int64) (*orgDetailDatamodel.OrganizationDetail, error) {
	var detail orgDetailDatamodel.OrganizationDetail
	err := r.db.Where("id = ?", id).First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
}

func (r *OrganizationDetailRepository) Create(detail *orgDetailDatamodel.OrganizationDetail) error {
	return r.db.Create(detail).Error
}

func (r *OrganizationDetailRepository) Update(detail *orgDetailDatamodel.OrganizationDetail) error {
	return r.db.Save(detail).Error
}

func (r *OrganizationDetailRepository) Delete(id int64) error {
	return r.db.Delete(&orgDetailDatamodel.OrganizationDetail{}, id).Error
}

func (r *OrganizationDetailRepository) CountAssignments(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&assignmentDatamodel.Assignment{}).Where("organization_detail_id = ?", id).Count(&count).Error
	return count, err
}
