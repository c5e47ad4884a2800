package eop

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ChristopherRabotin/frames/internal/observability"
)

type metrics struct {
	degraded *prometheus.CounterVec
	records  *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eop_degraded_queries_total",
		Help: "EOP queries answered with defaults or clamped edge values, or refused.",
	}, []string{"reason"})
	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "eop_records",
		Help: "Number of EOP records loaded per source.",
	}, []string{"source"})
	m := &metrics{degraded: degraded, records: records}
	if existing, err := observability.Register(reg, degraded, "eop_degraded_queries_total"); err == nil {
		m.degraded = existing
	}
	if existing, err := observability.Register(reg, records, "eop_records"); err == nil {
		m.records = existing
	}
	return m
}
