package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/tale/pkg/domain"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	tellings  *prometheus.CounterVec
	live      prometheus.Gauge
	setups    *prometheus.CounterVec
	teardowns *prometheus.CounterVec
	faults    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		tellings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tale_tellings_total",
				Help: "Tellings started and stopped",
			},
			[]string{"event"},
		),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tale_live_instances",
			Help: "Instances currently set up",
		}),
		setups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tale_instance_setups_total",
				Help: "Instances set up, by node type",
			},
			[]string{"node_type"},
		),
		teardowns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tale_instance_teardowns_total",
				Help: "Instances torn down, by node type",
			},
			[]string{"node_type"},
		),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tale_instance_faults_total",
				Help: "Lifecycle faults, by node type and phase",
			},
			[]string{"node_type", "phase"},
		),
	}
	for _, c := range []prometheus.Collector{m.tellings, m.live, m.setups, m.teardowns, m.faults} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTell: func(_ context.Context, _ *domain.TellingEvent) {
			m.tellings.WithLabelValues(string(domain.EventTell)).Inc()
		},
		OnStop: func(_ context.Context, _ *domain.TellingEvent) {
			m.tellings.WithLabelValues(string(domain.EventStop)).Inc()
		},
		OnSetup: func(_ context.Context, e *domain.InstanceEvent) {
			m.live.Inc()
			m.setups.WithLabelValues(e.NodeType).Inc()
		},
		OnTeardown: func(_ context.Context, e *domain.InstanceEvent) {
			m.live.Dec()
			m.teardowns.WithLabelValues(e.NodeType).Inc()
		},
		OnFault: func(_ context.Context, e *domain.InstanceEvent) {
			m.faults.WithLabelValues(e.NodeType, string(e.Phase)).Inc()
		},
	}
}
