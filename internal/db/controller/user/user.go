// Package user provides persistence helpers for user accounts and their permission overlays.
package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

var (
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a user by ID.
func Get(ctx context.Context, db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User

	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &u, nil
}

// GetByUsername retrieves a user by username.
func GetByUsername(ctx context.Context, db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var u models.User

	if err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &u, nil
}

// Create inserts a new user.
func Create(ctx context.Context, db *gorm.DB, u *models.User) error {
	if db == nil {
		return ErrDBNil
	}

	if err := u.Permissions.Validate(); err != nil {
		return err
	}

	if u.Status == "" {
		u.Status = models.UserStatusActive
	}

	return db.WithContext(ctx).Create(u).Error
}

// UpdatePermissions replaces the permission overlay of a user.
// Keys outside the permission catalog are rejected before anything is written.
func UpdatePermissions(ctx context.Context, db *gorm.DB, id uint64, overlay permission.Overlay) (*models.User, error) {
	if err := overlay.Validate(); err != nil {
		return nil, err
	}

	u, err := Get(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if overlay == nil {
		overlay = permission.Overlay{}
	}

	u.Permissions = overlay

	if err = db.WithContext(ctx).Model(u).Select("permissions", "updated_at").Updates(u).Error; err != nil {
		return nil, err
	}

	return u, nil
}

// ChangePassword stores a new password hash and clears the mandatory change flag.
func ChangePassword(ctx context.Context, db *gorm.DB, id uint64, hash string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"password":             hash,
		"must_change_password": false,
	})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Count returns the number of users.
func Count(ctx context.Context, db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error

	return count, err
}
