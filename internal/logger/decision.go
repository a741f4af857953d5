package logger

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var allowSampler atomic.Pointer[zerolog.BasicSampler] //nolint:gochecknoglobals

// SetAllowSampleRate logs every nth allowed decision; zero disables them.
func SetAllowSampleRate(n uint32) {
	if n == 0 {
		allowSampler.Store(nil)
		return
	}

	allowSampler.Store(&zerolog.BasicSampler{N: n})
}

// Allowed returns an info event for a granted authorization, or nil when the
// decision is not sampled. A nil event discards everything chained on it.
func Allowed(ctx context.Context) *zerolog.Event {
	s := allowSampler.Load()
	if s == nil {
		return nil
	}

	l := FromContext(ctx).Sample(s)

	return l.Info().Str("decision", "allowed")
}

// Denied returns a warn event for a refused authorization. Denials are never sampled.
func Denied(ctx context.Context, outcome string) *zerolog.Event {
	return FromContext(ctx).Warn().Str("decision", outcome)
}
