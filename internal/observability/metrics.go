package observability

import (
	"errors"
	"fmt"

	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels one gate decision.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeVeto    Outcome = "veto"
	OutcomeInvalid Outcome = "invalid"
)

// Classify maps the error returned by record construction or Gate.Evaluate
// to a decision outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomePass
	case errors.Is(err, coherence.ErrVeto):
		return OutcomeVeto
	default:
		return OutcomeInvalid
	}
}

// Metrics holds gate decision collectors on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	decisions *prometheus.CounterVec
	coherence *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gatectl",
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Gate decisions by outcome in the current gatectl run.",
		},
		[]string{"outcome"},
	)
	m.coherence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gatectl",
			Subsystem: "gate",
			Name:      "coherence_power",
			Help:      "Coherence power of evaluated records.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"outcome"},
	)
	m.registry.MustRegister(m.decisions, m.coherence)
	return m
}

// RecordDecision counts one decision. The coherence histogram is only fed
// when a record was built.
func (m *Metrics) RecordDecision(outcome Outcome, rec *coherence.Record) {
	label := string(outcome)
	m.decisions.WithLabelValues(label).Inc()
	if rec != nil {
		m.coherence.WithLabelValues(label).Observe(rec.CoherencePower())
	}
}

// WriteTextfile writes the registry in text exposition format for the
// node_exporter textfile collector. The file is replaced on every write, so
// it holds the decisions of the writing process only; gatectl evaluates one
// payload per run.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile (%s): %w", path, err)
	}
	return nil
}
