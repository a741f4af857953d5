// Package guard protects server-rendered pages.
//
// Each request mounts a fresh page guard. The session is read first; that is
// the hydration point. The guard's decision is then applied as navigation:
// a redirect, the no-access page, or the page itself.
package guard

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/guard"
	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/handler"
	"github.com/govfinance-admin/govfinance-admin/internal/web/session"
)

// New returns middleware that lets the page render only for signed-in users
// holding at least one of the required permissions.
func New(authService *auth.Service, routes guard.Routes, required ...permission.Key) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g := guard.New(routes)

		subject, stale := hydrate(c, authService)

		res := g.Use(guard.Input{
			Path:     c.Path(),
			Hydrated: true,
			Subject:  subject,
			Required: required,
		})

		ctx := c.UserContext()
		if subject != nil {
			ctx = logger.WithIdentity(ctx, subject.Identity())
		}

		if res.State == guard.DeniedForbidden || (res.State == guard.DeniedUnauthenticated && stale) {
			logger.Denied(ctx, res.State.String()).Str("path", c.Path()).Msg("page denied")
		}

		if res.State == guard.DeniedUnauthenticated && stale {
			if err := session.Clear(c); err != nil {
				logger.FromContext(ctx).Error().Err(err).Msg("failed to delete stale session")
			}
		}

		switch {
		case res.State == guard.Allowed:
			auth.Authorize(c, subject)
			logger.Allowed(ctx).Str("path", c.Path()).Msg("page authorized")

			return c.Next()
		case res.Redirect != "":
			return c.Redirect(res.Redirect)
		case res.NoAccess:
			return c.Status(fiber.StatusForbidden).Render(handler.NoAccessTemplate, fiber.Map{
				"Subject":  subject,
				"Required": labels(required),
			}, handler.BaseLayout)
		default:
			return c.Redirect(routes.Login)
		}
	}
}

// hydrate loads the subject of the session cookie. Any failure yields nil,
// which the guard treats as signed out. stale reports a session that can
// never pass again: unknown, of a deleted user or of an inactive user.
func hydrate(c *fiber.Ctx, authService *auth.Service) (*auth.Subject, bool) {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" {
		return nil, false
	}

	subject, err := authService.SessionSubject(c.UserContext(), sessionID)

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return nil, true
	case err != nil:
		log.Error().Err(err).Msg("failed to load session user")
		return nil, false
	}

	return subject, !subject.Active()
}

func labels(keys []permission.Key) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, permission.Label(k))
	}

	return out
}
