package consensus

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "orchestrator"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Current cycle number.
	Cycle metrics.Gauge
	// Current phase as its numeric value.
	Phase metrics.Gauge
	// Size of the last observed quorum.
	QuorumSize metrics.Gauge
	// Number of cycles finished without consensus.
	DegradedCycles metrics.Counter
	// Number of ticks observed outside the configured schedule.
	ClockSkewEvents metrics.Counter
	// Number of failed phase handlers.
	PhaseFailures metrics.Counter
	// Number of confirmed metagraph submissions.
	Submissions metrics.Counter
	// Number of unilateral local applies after a failed submission.
	SubmissionFallbacks metrics.Counter
}

// PrometheusMetrics returns Metrics built using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue").
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	return &Metrics{
		Cycle: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "cycle",
			Help:      "Current cycle number.",
		}, labels).With(labelsAndValues...),
		Phase: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "phase",
			Help:      "Current phase as its numeric value.",
		}, labels).With(labelsAndValues...),
		QuorumSize: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "quorum_size",
			Help:      "Size of the last observed quorum.",
		}, labels).With(labelsAndValues...),
		DegradedCycles: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "degraded_cycles",
			Help:      "Number of cycles finished without consensus.",
		}, labels).With(labelsAndValues...),
		ClockSkewEvents: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "clock_skew_events",
			Help:      "Number of ticks observed outside the configured schedule.",
		}, labels).With(labelsAndValues...),
		PhaseFailures: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "phase_failures",
			Help:      "Number of failed phase handlers.",
		}, labels).With(labelsAndValues...),
		Submissions: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "submissions",
			Help:      "Number of confirmed metagraph submissions.",
		}, labels).With(labelsAndValues...),
		SubmissionFallbacks: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "submission_fallbacks",
			Help:      "Number of unilateral local applies after a failed submission.",
		}, labels).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		Cycle:               discard.NewGauge(),
		Phase:               discard.NewGauge(),
		QuorumSize:          discard.NewGauge(),
		DegradedCycles:      discard.NewCounter(),
		ClockSkewEvents:     discard.NewCounter(),
		PhaseFailures:       discard.NewCounter(),
		Submissions:         discard.NewCounter(),
		SubmissionFallbacks: discard.NewCounter(),
	}
}
