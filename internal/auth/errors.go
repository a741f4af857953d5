package auth

import (
	"errors"
	"strings"

	"github.com/govfinance-admin/govfinance-admin/internal/permission"
)

var (
	// ErrUnauthenticated is returned when no user identity can be resolved from a request.
	ErrUnauthenticated = errors.New("unauthorized")

	// ErrAccountDeactivated is returned when the resolved user is inactive.
	ErrAccountDeactivated = errors.New("account deactivated")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")
)

// ForbiddenError is returned when an authenticated, active user holds none of
// the required permissions.
type ForbiddenError struct {
	Required []permission.Key
}

func (e *ForbiddenError) Error() string {
	labels := make([]string, 0, len(e.Required))
	for _, k := range e.Required {
		labels = append(labels, permission.Label(k))
	}

	return "missing permission: " + strings.Join(labels, " or ")
}
