// Package api holds helpers shared by the JSON API handlers.
package api

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/govfinance-admin/govfinance-admin/internal/auth"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/roletemplate"
	"github.com/govfinance-admin/govfinance-admin/internal/db/controller/user"
	"github.com/govfinance-admin/govfinance-admin/internal/permission"
	"github.com/govfinance-admin/govfinance-admin/internal/web/response"
)

// ErrInvalidID is returned when a path parameter is not a positive integer.
var ErrInvalidID = errors.New("invalid id")

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals

// RespondError writes the API error envelope for err.
func RespondError(c *fiber.Ctx, err error) error {
	var (
		vErr   *permission.ValidationError
		fields validator.ValidationErrors
	)

	switch {
	case errors.As(err, &vErr):
		return response.Invalid(c, vErr.Error(), permission.Strings(vErr.Unknown))
	case errors.As(err, &fields):
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, f.Field())
		}

		return response.Invalid(c, "invalid request body", names)
	case errors.Is(err, ErrInvalidID):
		return response.Fail(c, fiber.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, roletemplate.ErrTemplateNotFound), errors.Is(err, user.ErrUserNotFound):
		return response.Fail(c, fiber.StatusNotFound, response.CodeNotFound, err.Error())
	default:
		return auth.RespondError(c, err)
	}
}

// ParseID reads a positive integer path parameter.
func ParseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

// Bind parses the request body into v and validates its struct tags.
// A malformed body is reported as a *permission.ValidationError when the
// permission decoders reject it, and as a bad request otherwise.
func Bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		var vErr *permission.ValidationError
		if errors.As(err, &vErr) {
			return vErr
		}

		return &permission.ValidationError{Field: "body", Reason: "malformed JSON"}
	}

	return validate.Struct(v)
}

// Actor returns the ID of the authorized caller, or zero.
func Actor(c *fiber.Ctx) uint64 {
	if s := auth.CurrentSubject(c); s != nil {
		return s.UserID
	}

	return 0
}
