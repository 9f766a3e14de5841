// Package prometheus exports interception activity as Prometheus metrics.
//
// Metrics is both an event sink (one counter sample per advice execution)
// and a source of lifecycle hooks (call duration and in-flight calls).
package prometheus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

const namespace = "weft"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	adviceEvents *prometheus.CounterVec
	invocations  *prometheus.HistogramVec
	inFlight     *prometheus.GaugeVec
}

// NewMetrics registers the collectors on registerer (the default registerer when nil).
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &Metrics{
		adviceEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "advice_events_total",
				Help:      "Advice executions by target, phase and outcome",
			},
			[]string{"target", "phase", "outcome"},
		),
		invocations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Duration of intercepted calls, advice included",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"target", "outcome"},
		),
		inFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "invocations_in_flight",
				Help:      "Intercepted calls currently running",
			},
			[]string{"target"},
		),
	}
}

// Emit implements ports.EventSink.
func (m *Metrics) Emit(_ context.Context, event domain.Event) error {
	m.adviceEvents.WithLabelValues(event.Target, string(event.Phase), outcome(event.Failed())).Inc()
	return nil
}

// Hooks returns lifecycle hooks feeding the duration histogram and in-flight gauge.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvokeStart: func(_ context.Context, inv *domain.Invocation) {
			m.inFlight.WithLabelValues(inv.Target.Name).Inc()
		},
		OnInvokeEnd: func(_ context.Context, inv *domain.Invocation) {
			m.inFlight.WithLabelValues(inv.Target.Name).Dec()
			m.invocations.WithLabelValues(inv.Target.Name, outcome(inv.Failed())).
				Observe(inv.Elapsed().Seconds())
		},
	}
}

func outcome(failed bool) string {
	if failed {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

var _ ports.EventSink = (*Metrics)(nil)
