package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/govfinance-admin/govfinance-admin/internal/logger"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/response"
)

// LocalsSubject is the fiber.Locals key the authorized Subject is stored under.
const LocalsSubject = "subject"

// fiberRequest adapts a Fiber context to Request.
type fiberRequest struct {
	c *fiber.Ctx
}

func (r fiberRequest) Header(name string) string { return r.c.Get(name) }

func (r fiberRequest) Cookie(name string) string { return r.c.Cookies(name) }

// FiberRequest wraps a Fiber context as a Request.
func FiberRequest(c *fiber.Ctx) Request {
	return fiberRequest{c: c}
}

// RequireAuth creates Fiber middleware that admits callers holding at least
// one of the given permissions. With no permissions it only requires an
// authenticated, active user.
func RequireAuth(svc *Service, required ...permission.Key) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject, err := svc.RequireAuth(c.UserContext(), FiberRequest(c), required...)
		if err != nil {
			return RespondError(c, err)
		}

		Authorize(c, subject)

		return c.Next()
	}
}

// Authorize stores subject for the handlers and tags the request logger with it.
func Authorize(c *fiber.Ctx, subject *Subject) {
	c.Locals(LocalsSubject, subject)
	c.SetUserContext(logger.WithIdentity(c.UserContext(), subject.Identity()))
}

// CurrentSubject returns the Subject stored by RequireAuth, or nil.
func CurrentSubject(c *fiber.Ctx) *Subject {
	s, _ := c.Locals(LocalsSubject).(*Subject)
	return s
}

// RespondError writes the API error envelope for err. Errors not produced by
// this package become a 500.
func RespondError(c *fiber.Ctx, err error) error {
	var forbidden *ForbiddenError

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return response.Fail(c, fiber.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
	case errors.Is(err, ErrAccountDeactivated):
		return response.Fail(c, fiber.StatusForbidden, response.CodeAccountDeactivated, "Account is deactivated")
	case errors.As(err, &forbidden):
		return response.Forbidden(c, forbidden.Error(), permission.Strings(forbidden.Required))
	default:
		logger.FromContext(c.UserContext()).Error().Err(err).Str("path", c.Path()).Msg("authorization lookup failed")
		return response.Fail(c, fiber.StatusInternalServerError, response.CodeInternal, "Internal Server Error")
	}
}
