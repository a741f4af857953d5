package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded by the decision counter.
const (
	outcomeAllowed         = "allowed"
	outcomeUnauthenticated = "unauthenticated"
	outcomeDeactivated     = "deactivated"
	outcomeForbidden       = "forbidden"
	outcomeError           = "error"
)

var decisions = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "authorization_decisions_total",
		Help: "Number of server-side authorization decisions, differentiated by outcome.",
	},
	[]string{"outcome"},
)

func observe(outcome string) {
	decisions.WithLabelValues(outcome).Inc()
}
