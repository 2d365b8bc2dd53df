package enrich

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks lookups in flight and their outcomes. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	inFlight prometheus.Gauge
	lookups  *prometheus.CounterVec
}

// NewMetrics registers the enrichment metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "grant_harvester_enrich_in_flight",
			Help: "Fields lookups currently in flight.",
		}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grant_harvester_enrich_lookups_total",
			Help: "Finished fields lookups by outcome (ok, failed).",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) start() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) finish(err error) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.lookups.WithLabelValues(outcome).Inc()
}
