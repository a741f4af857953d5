package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/roletemplate"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/user"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/session"
)

// DefaultIdentityHeader is the request header carrying the caller's user ID.
const DefaultIdentityHeader = "X-User-Id"

// Request is the part of an incoming request the service needs to identify the caller.
type Request interface {
	Header(name string) string
	Cookie(name string) string
}

// Service resolves the caller of a request and enforces permission requirements.
type Service struct {
	db             *gorm.DB
	identityHeader string
}

// Option configures a Service.
type Option func(*Service)

// WithIdentityHeader sets the header the user ID is read from.
// An empty name disables header identification; only the session is used.
func WithIdentityHeader(name string) Option {
	return func(s *Service) {
		s.identityHeader = name
	}
}

// NewService creates a new auth service.
func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, identityHeader: DefaultIdentityHeader}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Identify returns the user ID carried by the request, first from the
// identity header and then from the session cookie.
func (s *Service) Identify(req Request) (uint64, bool) {
	if s.identityHeader != "" {
		if raw := strings.TrimSpace(req.Header(s.identityHeader)); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || id == 0 {
				return 0, false
			}

			return id, true
		}
	}

	sessionID := req.Cookie(session.CookieName)
	if sessionID == "" {
		return 0, false
	}

	data := new(session.Data)
	if err := data.Read(sessionID); err != nil {
		return 0, false
	}

	if data.UserID == 0 {
		return 0, false
	}

	return data.UserID, true
}

// Load reads the user and its role template and returns a fresh Subject.
// A role without a template resolves to an empty template.
func (s *Service) Load(ctx context.Context, userID uint64) (*Subject, error) {
	u, err := user.Get(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	tmpl, _, err := roletemplate.GetOrEmpty(ctx, s.db, u.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to load role template %q: %w", u.Role, err)
	}

	return NewSubject(u, tmpl), nil
}

// SessionSubject loads the user signed in under sessionID. An unknown session
// or a deleted user yields ErrUnauthenticated. The subject may be inactive.
func (s *Service) SessionSubject(ctx context.Context, sessionID string) (*Subject, error) {
	data := new(session.Data)
	if err := data.Read(sessionID); err != nil || data.UserID == 0 {
		return nil, ErrUnauthenticated
	}

	subject, err := s.Load(ctx, data.UserID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrUnauthenticated
	}

	return subject, err
}

// RequireAuth identifies the caller and checks that it holds at least one of
// the required permissions. An empty list only requires an active account.
//
// It returns ErrUnauthenticated, ErrAccountDeactivated or a *ForbiddenError
// on denial. Any other error is a lookup failure.
func (s *Service) RequireAuth(ctx context.Context, req Request, required ...permission.Key) (*Subject, error) {
	id, ok := s.Identify(req)
	if !ok {
		observe(outcomeUnauthenticated)
		return nil, ErrUnauthenticated
	}

	subject, err := s.Load(ctx, id)
	if errors.Is(err, user.ErrUserNotFound) {
		observe(outcomeUnauthenticated)
		return nil, ErrUnauthenticated
	}

	if err != nil {
		observe(outcomeError)
		return nil, err
	}

	ctx = logger.WithIdentity(ctx, subject.Identity())

	if !subject.Active() {
		logger.Denied(ctx, outcomeDeactivated).Msg("deactivated account denied")
		observe(outcomeDeactivated)

		return nil, ErrAccountDeactivated
	}

	if !HasAnyPermission(subject, required...) {
		logger.Denied(ctx, outcomeForbidden).Strs("permissions", permission.Strings(required)).
			Msg("user lacks required permissions")
		observe(outcomeForbidden)

		return nil, &ForbiddenError{Required: required}
	}

	logger.Allowed(ctx).Strs("permissions", permission.Strings(required)).Msg("request authorized")
	observe(outcomeAllowed)

	return subject, nil
}
