package observability

import (
	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/rs/zerolog"
)

// Decision describes one gate evaluation for logging.
type Decision struct {
	EvalID    string
	Source    string
	Threshold float64
	Record    *coherence.Record
	Manifest  *coherence.Manifest
	Err       error
}

// LogDecision emits one structured line per decision. Vetoes log at warn,
// malformed input at error.
func LogDecision(logger zerolog.Logger, d Decision) {
	outcome := Classify(d.Err)

	event := logger.Info()
	switch outcome {
	case OutcomeVeto:
		event = logger.Warn()
	case OutcomeInvalid:
		event = logger.Error()
	}

	event = event.
		Str("eval_id", d.EvalID).
		Str("source", d.Source).
		Str("outcome", string(outcome)).
		Float64("threshold", d.Threshold)
	if d.Record != nil {
		event = event.
			Str("session_id", d.Record.SessionID()).
			Float64("coherence_power", d.Record.CoherencePower())
	}
	if d.Manifest != nil {
		event = event.
			Str("fingerprint", d.Manifest.Fingerprint()).
			Int("phase", int(d.Manifest.Phase()))
	}
	if d.Err != nil {
		event = event.Err(d.Err)
	}
	event.Msg("gate_decision")
}
