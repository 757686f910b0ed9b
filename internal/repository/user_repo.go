package repository

import (
	"context"
	"errors"

	"stationops/internal/model"

	"gorm.io/gorm"
)

// ErrVersionConflict is returned when a conditional permissions update finds
// the row's version no longer matches — another writer got there first.
var ErrVersionConflict = errors.New("permissions were modified by another session")

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error

	// Validation queries. excludeID skips the row being updated ("" for none).
	CountActiveByRole(ctx context.Context, role, excludeID string) (int64, error)
	CountActiveByRoleAndStation(ctx context.Context, role, station, excludeID string) (int64, error)

	// UpdatePermissions writes the permission blob with a compare-and-swap on
	// the version column. Returns ErrVersionConflict when zero rows match.
	UpdatePermissions(ctx context.Context, id string, raw string, expectedVersion int) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("username ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.User{}).Error
}

func (r *userRepository) CountActiveByRole(ctx context.Context, role, excludeID string) (int64, error) {
	var count int64
	q := GetDB(ctx, r.db).Model(&model.User{}).
		Where("role = ? AND is_active = ?", role, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *userRepository) CountActiveByRoleAndStation(ctx context.Context, role, station, excludeID string) (int64, error) {
	var count int64
	q := GetDB(ctx, r.db).Model(&model.User{}).
		Where("role = ? AND station = ? AND is_active = ?", role, station, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *userRepository) UpdatePermissions(ctx context.Context, id string, raw string, expectedVersion int) error {
	res := GetDB(ctx, r.db).Model(&model.User{}).
		Where("id = ? AND permissions_version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"detailed_permissions": raw,
			"permissions_version":  expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}
