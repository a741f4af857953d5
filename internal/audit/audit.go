// Package audit records administrative changes in the audit_logs table.
package audit

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
)

// Actions written by the application.
const (
	ActionUpsertRoleTemplate    = "upsert_role_permissions"
	ActionDeleteRoleTemplate    = "delete_role_permissions"
	ActionUpdateUserPermissions = "update_user_permissions"
	ActionChangePassword        = "change_password"

	EntityRoleTemplate = "role_permissions"
	EntityUser         = "user"

	// DefaultPageSize is used when List is called with a non-positive limit.
	DefaultPageSize = 25
	// MaxPageSize clamps the page size upper bound.
	MaxPageSize = 100
	// MaxPage clamps the page number so the offset cannot overflow.
	MaxPage = 1_000_000
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Entry describes a change to record.
type Entry struct {
	UserID   uint64
	Action   string
	Entity   string
	EntityID string
	Details  any
}

// Create writes an audit log entry.
func Create(ctx context.Context, db *gorm.DB, e Entry) (*models.AuditLog, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	details := ""

	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, err
		}

		details = string(raw)
	}

	row := &models.AuditLog{
		UserID:   e.UserID,
		Action:   e.Action,
		Entity:   e.Entity,
		EntityID: e.EntityID,
		Details:  details,
	}

	if err := db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}

	return row, nil
}

// Record writes an entry and only logs a failure. It is used after a
// mutation already succeeded, where the caller cannot roll back.
func Record(ctx context.Context, db *gorm.DB, e Entry) {
	if _, err := Create(ctx, db, e); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("action", e.Action).
			Str("entity", e.Entity).
			Str("entity_id", e.EntityID).
			Uint64("user_id", e.UserID).
			Msg("failed to write audit log")
	}
}

// Page is one page of audit entries with the paging actually applied.
type Page struct {
	Entries []models.AuditLog
	Page    int
	Limit   int
	Total   int64
}

// List returns one page of audit entries, newest first. Page is clamped to
// [1, MaxPage] and limit to [1, MaxPageSize]; a non-positive limit means
// DefaultPageSize.
func List(ctx context.Context, db *gorm.DB, page, limit int) (*Page, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if limit < 1 {
		limit = DefaultPageSize
	}

	out := &Page{
		Entries: []models.AuditLog{},
		Page:    min(max(page, 1), MaxPage),
		Limit:   min(limit, MaxPageSize),
	}

	if err := db.WithContext(ctx).Model(&models.AuditLog{}).Count(&out.Total).Error; err != nil {
		return nil, err
	}

	offset := (out.Page - 1) * out.Limit

	err := db.WithContext(ctx).Order("created_at DESC").Offset(offset).Limit(out.Limit).Find(&out.Entries).Error
	if err != nil {
		return nil, err
	}

	return out, nil
}
