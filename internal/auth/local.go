package auth

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/user"
	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user against the local database.
// Unknown users and wrong passwords both yield ErrInvalidPassword.
func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := user.GetByUsername(ctx, p.db, username)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrInvalidPassword
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !u.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if !u.IsActive() {
		return nil, ErrAccountDeactivated
	}

	return u, nil
}

// ChangePassword verifies the old password and stores the new one.
// It also clears the mandatory password change flag.
func (p *LocalProvider) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	u, err := user.Get(ctx, p.db, userID)
	if err != nil {
		return err
	}

	if !u.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	return user.ChangePassword(ctx, p.db, userID, models.HashPassword(newPassword))
}
