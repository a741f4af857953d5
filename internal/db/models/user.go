package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"

	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

// UserStatus is the activation status of a user account.
type UserStatus string

const (
	// UserStatusActive marks an account that may sign in and pass permission checks.
	UserStatusActive UserStatus = "active"
	// UserStatusInactive marks a deactivated account. It is denied every permission check.
	UserStatusInactive UserStatus = "inactive"
)

// User represents a user account in the system.
// Every user has exactly one role and an optional permission overlay.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Username is the unique username for login.
	Username string `gorm:"unique;size:100;not null" json:"username"`
	// Name is the display name of the user.
	Name string `gorm:"size:200" json:"name"`
	// Email is the user's email address.
	Email string `gorm:"size:255;not null" json:"email"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255" json:"-"`
	// Role names the role template the user inherits permissions from.
	Role string `gorm:"size:50;not null;index" json:"role"`
	// Permissions overrides the role template per key; absent keys defer to the role.
	Permissions permission.Overlay `gorm:"serializer:json;type:text" json:"permissions"`
	// Status is either active or inactive.
	Status UserStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	// MustChangePassword forces the user onto the password page until a new password is set.
	MustChangePassword bool `gorm:"not null;default:false" json:"mustChangePassword"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the database table name for the User model.
func (User) TableName() string {
	return "users"
}

// IsActive reports whether the account is active.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
func (u *User) VerifyPassword(password string) bool {
	if u.Password == "" {
		return false
	}

	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
