package coherence

import (
	"encoding/json"
	"time"
)

// Manifest is the gate's output for a coherent record.
type Manifest struct {
	fingerprint string
	phase       Phase
	createdAt   time.Time
	coherence   float64
}

func (m Manifest) Fingerprint() string     { return m.fingerprint }
func (m Manifest) Phase() Phase            { return m.phase }
func (m Manifest) CreatedAt() time.Time    { return m.createdAt }
func (m Manifest) CoherenceValue() float64 { return m.coherence }

type manifestWire struct {
	Fingerprint    string    `json:"fingerprint" yaml:"fingerprint"`
	Phase          int       `json:"phase" yaml:"phase"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	CoherenceValue float64   `json:"coherence_value" yaml:"coherence_value"`
}

func (m Manifest) wire() manifestWire {
	return manifestWire{
		Fingerprint:    m.fingerprint,
		Phase:          int(m.phase),
		CreatedAt:      m.createdAt,
		CoherenceValue: m.coherence,
	}
}

func (m Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.wire())
}

func (m Manifest) MarshalYAML() (any, error) {
	return m.wire(), nil
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithClock replaces the wall clock used to stamp manifests.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// Gate decides whether its bound record may be manifested.
type Gate struct {
	record Record
	now    func() time.Time
}

// NewGate binds record to a gate. A record carrying no threshold, such as
// the zero Record, is judged against DefaultThreshold.
func NewGate(record Record, opts ...GateOption) *Gate {
	if record.threshold == 0 {
		record = newRecord(record.sessionID, record.referenceHash, record.power, DefaultThreshold)
	}
	g := &Gate{record: record, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate returns a *VetoError when the record is not coherent. Otherwise it
// builds a Manifest; that construction cannot fail.
func (g *Gate) Evaluate() (Manifest, error) {
	if !g.record.IsCoherent() {
		return Manifest{}, &VetoError{
			Coherence: g.record.CoherencePower(),
			Threshold: g.record.Threshold(),
		}
	}
	return Manifest{
		fingerprint: Fingerprint(g.record),
		phase:       ManifestPhase,
		createdAt:   g.now().UTC(),
		coherence:   g.record.CoherencePower(),
	}, nil
}
