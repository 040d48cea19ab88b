// Package metrics holds the Prometheus collectors for provider calls,
// dashboard builds and report compilation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	ProviderCalls    *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	DashboardBuilds  *prometheus.CounterVec
	ReportSections   *prometheus.CounterVec
	ProbeLastSuccess *prometheus.GaugeVec
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ProviderCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trip_planner_provider_calls_total",
			Help: "Outbound provider calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		ProviderLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trip_planner_provider_call_duration_seconds",
			Help:    "Latency of outbound provider calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		DashboardBuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trip_planner_dashboard_builds_total",
			Help: "Dashboard builds by result (complete, partial, failed)",
		}, []string{"result"}),
		ReportSections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trip_planner_report_sections_total",
			Help: "Report sections emitted by section name",
		}, []string{"section"}),
		ProbeLastSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trip_planner_probe_last_success_timestamp_seconds",
			Help: "Unix time of the last successful provider probe",
		}, []string{"provider"}),
	}
}

// ObserveProviderCall implements client.Observer.
func (m *Metrics) ObserveProviderCall(provider, outcome string, elapsed time.Duration) {
	m.ProviderCalls.WithLabelValues(provider, outcome).Inc()
	m.ProviderLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// IncDashboardBuild records one dashboard build.
func (m *Metrics) IncDashboardBuild(result string) {
	m.DashboardBuilds.WithLabelValues(result).Inc()
}

// IncReportSection records one emitted report section.
func (m *Metrics) IncReportSection(section string) {
	m.ReportSections.WithLabelValues(section).Inc()
}

// SetProbeSuccess records a successful probe of provider at t.
func (m *Metrics) SetProbeSuccess(provider string, t time.Time) {
	m.ProbeLastSuccess.WithLabelValues(provider).Set(float64(t.Unix()))
}
