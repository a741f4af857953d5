package logger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// PrometheusHook counts log statements per level.
type PrometheusHook struct {
	counter *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level != zerolog.NoLevel && h.counter != nil {
		h.counter.WithLabelValues(level.String()).Inc()
	}
}

// NewPrometheusHook registers log_statements_total for service on the default
// registry. Calling it again for the same service reuses the registered counter.
func NewPrometheusHook(service string) (PrometheusHook, error) {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "log_statements_total",
			Help:        "Number of log statements, differentiated by log level.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"level"},
	)

	if err := prometheus.Register(counter); err != nil {
		var registered prometheus.AlreadyRegisteredError
		if !errors.As(err, &registered) {
			return PrometheusHook{}, err
		}

		existing, ok := registered.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return PrometheusHook{}, err
		}

		counter = existing
	}

	return PrometheusHook{counter: counter}, nil
}
