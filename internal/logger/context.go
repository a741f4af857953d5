package logger

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Identity names the user a request acts as.
type Identity struct {
	UserID   uint64
	Username string
	Role     string
}

type (
	identityKey struct{}
	loggerKey   struct{}
)

// WithIdentity returns a context carrying id and a logger that adds the
// user_id, username and role fields to every line.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	l := log.Logger.With().
		Uint64("user_id", id.UserID).
		Str("username", id.Username).
		Str("role", id.Role).
		Logger()

	ctx = context.WithValue(ctx, identityKey{}, id)

	return context.WithValue(ctx, loggerKey{}, &l)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}

	id, ok := ctx.Value(identityKey{}).(Identity)

	return id, ok
}

// FromContext returns the request logger, or the global logger when the
// context carries none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok {
			return l
		}
	}

	return &log.Logger
}
