package auth

import (
	"maps"

	"github.com/govfinance-admin/govfinance-admin/internal/db/models"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

// Subject is a snapshot of a user and its role template taken for one
// request. The resolver functions only read it.
type Subject struct {
	UserID             uint64
	Username           string
	Name               string
	Email              string
	Role               string
	Status             models.UserStatus
	MustChangePassword bool

	// Overlay holds the user's explicit grants and revocations.
	Overlay permission.Overlay
	// RoleGrants is the resolved role template; empty when the role has none.
	RoleGrants permission.Grants
}

// NewSubject builds a Subject from a user and the template of its role.
// A nil template grants nothing.
func NewSubject(u *models.User, tmpl *models.RoleTemplate) *Subject {
	if u == nil {
		return nil
	}

	s := &Subject{
		UserID:             u.ID,
		Username:           u.Username,
		Name:               u.Name,
		Email:              u.Email,
		Role:               u.Role,
		Status:             u.Status,
		MustChangePassword: u.MustChangePassword,
		Overlay:            maps.Clone(u.Permissions),
		RoleGrants:         permission.Grants{},
	}

	if tmpl != nil && tmpl.Permissions != nil {
		s.RoleGrants = maps.Clone(tmpl.Permissions)
	}

	return s
}

// Active reports whether the subject's account is active.
func (s *Subject) Active() bool {
	return s != nil && s.Status == models.UserStatusActive
}

// Identity returns the fields request logs are tagged with.
func (s *Subject) Identity() logger.Identity {
	return logger.Identity{UserID: s.UserID, Username: s.Username, Role: s.Role}
}
