package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/role-assignment/internal/auth"
	userDatamodel "github.com/frahmantamala/role-assignment/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetByEmail(email string) (*userDatamodel.User, error) {
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

func (r *Repository) GetByID(id int64) (*userDatamodel.User, error) {
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

func (r *Repository) AccessMap(userID int64) (map[int64]bool, error) {
	var rows []userDatamodel.OrganizationAccess
	if err := r.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	access := make(map[int64]bool, len(rows))
	for _, row := range rows {
		access[row.OrganizationTypeID] = row.HasAccess
	}
	return access, nil
}

// UpdatePassword stores hash, or NULL when hash is nil.
func (r *Repository) UpdatePassword(userID int64, hash *string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		Update("password", hash).Error
}
