// Package roletemplate provides persistence for role permission templates.
package roletemplate

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

const (
	roleQueryPattern = "role = ?"

	// MaxRoleLength is the maximum length of a role name.
	MaxRoleLength = 50
)

var (
	// ErrTemplateNotFound is returned when no template exists for a role.
	ErrTemplateNotFound = errors.New("role template not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// NormalizeRole trims a role name and checks its length.
func NormalizeRole(role string) (string, error) {
	role = strings.TrimSpace(role)

	switch {
	case role == "":
		return "", &permission.ValidationError{Field: "role", Reason: "role cannot be empty"}
	case len(role) > MaxRoleLength:
		return "", &permission.ValidationError{Field: "role", Reason: "role name is too long"}
	}

	return role, nil
}

// Get retrieves the template of a role.
func Get(ctx context.Context, db *gorm.DB, role string) (*models.RoleTemplate, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	role, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}

	var tmpl models.RoleTemplate

	result := db.WithContext(ctx).Where(roleQueryPattern, role).First(&tmpl)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}

		return nil, result.Error
	}

	if tmpl.Permissions == nil {
		tmpl.Permissions = permission.Grants{}
	}

	return &tmpl, nil
}

// GetOrEmpty retrieves the template of a role. A role without a template
// resolves to an empty template that grants nothing.
func GetOrEmpty(ctx context.Context, db *gorm.DB, role string) (*models.RoleTemplate, bool, error) {
	tmpl, err := Get(ctx, db, role)
	if errors.Is(err, ErrTemplateNotFound) {
		return &models.RoleTemplate{Role: strings.TrimSpace(role), Permissions: permission.Grants{}}, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return tmpl, true, nil
}

// List retrieves all templates ordered by role.
func List(ctx context.Context, db *gorm.DB) ([]models.RoleTemplate, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var templates []models.RoleTemplate

	if err := db.WithContext(ctx).Order("role ASC").Find(&templates).Error; err != nil {
		return nil, err
	}

	return templates, nil
}

// Upsert replaces the template of a role, creating it when missing.
// Keys outside the permission catalog are rejected before anything is written.
func Upsert(
	ctx context.Context,
	db *gorm.DB,
	role string,
	grants permission.Grants,
	description string,
) (*models.RoleTemplate, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	role, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}

	if err = grants.Validate(); err != nil {
		return nil, err
	}

	if grants == nil {
		grants = permission.Grants{}
	}

	tmpl := models.RoleTemplate{
		Role:        role,
		Permissions: grants,
		Description: strings.TrimSpace(description),
	}

	err = db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"permissions", "description", "updated_at"}),
	}).Create(&tmpl).Error
	if err != nil {
		return nil, err
	}

	return Get(ctx, db, role)
}

// Delete removes the template of a role. Afterwards the role grants nothing.
func Delete(ctx context.Context, db *gorm.DB, role string) error {
	if db == nil {
		return ErrDBNil
	}

	role, err := NormalizeRole(role)
	if err != nil {
		return err
	}

	result := db.WithContext(ctx).Where(roleQueryPattern, role).Delete(&models.RoleTemplate{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// Count returns the number of stored templates.
func Count(ctx context.Context, db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var count int64
	err := db.WithContext(ctx).Model(&models.RoleTemplate{}).Count(&count).Error

	return count, err
}
