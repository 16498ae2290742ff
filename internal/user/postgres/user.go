package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/role-assignment/internal/core/common/pagination"
	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/role-assignment/internal/core/user"
	"github.com/frahmantamala/role-assignment/internal/user"
)

var sortColumns = map[string]string{
	"id":        "id",
	"email":     "email",
	"firstName": "first_name",
	"lastName":  "last_name",
	"company":   "company",
	"role":      "role",
	"createdAt": "created_at",
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) List(req pagination.Request, accessTypeID *int64) ([]*userDatamodel.User, int64, error) {
	query := r.db.Model(&userDatamodel.User{})
	if req.Search != "" {
		like := req.LikePattern()
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(company) LIKE ?",
			like, like, like, like)
	}
	if accessTypeID != nil {
		query = query.Where(
			"EXISTS (SELECT 1 FROM user_organization_access uoa WHERE uoa.user_id = users.id AND uoa.organization_type_id = ? AND uoa.has_access = ?)",
			*accessTypeID, true)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*userDatamodel.User
	err := query.
		Order(req.OrderClause(sortColumns, "id")).
		Limit(req.Size).
		Offset(req.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) AccessMaps(userIDs []int64) (map[int64]map[int64]bool, error) {
	out := make(map[int64]map[int64]bool, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []userDatamodel.OrganizationAccess
	if err := r.db.Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if out[row.UserID] == nil {
			out[row.UserID] = map[int64]bool{}
		}
		out[row.UserID][row.OrganizationTypeID] = row.HasAccess
	}
	return out, nil
}

func (r *UserRepository) Create(u *userDatamodel.User, access map[int64]bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return insertAccess(tx, u.ID, access)
	})
}

func (r *UserRepository) Update(u *userDatamodel.User, access map[int64]bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(u).Error; err != nil {
			return err
		}
		if access == nil {
			return nil
		}
		if err := tx.Where("user_id = ?", u.ID).Delete(&userDatamodel.OrganizationAccess{}).Error; err != nil {
			return err
		}
		return insertAccess(tx, u.ID, access)
	})
}

func (r *UserRepository) SetPassword(id int64, hash *string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userDatamodel.OrganizationAccess{}).Error; err != nil {
			return err
		}
		// authored assignments keep their rows; only the author link is dropped
		if err := tx.Table("assignments").Where("created_by_id = ?", id).Update("created_by_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&userDatamodel.User{}, id).Error
	})
}

func (r *UserRepository) Counts() (user.Counts, error) {
	var counts user.Counts
	if err := r.db.Model(&userDatamodel.User{}).Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := r.db.Model(&userDatamodel.User{}).Where("role = ?", coreUser.RoleAdmin).Count(&counts.Admins).Error; err != nil {
		return counts, err
	}
	if err := r.db.Model(&userDatamodel.User{}).Where("password IS NULL OR password = ''").Count(&counts.MustChangePassword).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

func (r *UserRepository) CountAccess() (map[int64]int64, error) {
	var rows []struct {
		OrganizationTypeID int64
		Total              int64
	}
	err := r.db.Model(&userDatamodel.OrganizationAccess{}).
		Select("organization_type_id, COUNT(*) AS total").
		Where("has_access = ?", true).
		Group("organization_type_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(rows))
	for _, row := range rows {
		out[row.OrganizationTypeID] = row.Total
	}
	return out, nil
}

func insertAccess(tx *gorm.DB, userID int64, access map[int64]bool) error {
	if len(access) == 0 {
		return nil
	}
	rows := make([]userDatamodel.OrganizationAccess, 0, len(access))
	for typeID, granted := range access {
		rows = append(rows, userDatamodel.OrganizationAccess{UserID: userID, OrganizationTypeID: typeID, HasAccess: granted})
	}
	return tx.Create(&rows).Error
}
