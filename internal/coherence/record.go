package coherence

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Payload keys read by FromPayload.
const (
	KeySessionID     = "session_id"
	KeyReferenceHash = "blockhash"
	KeyCoherence     = "theta_power"
)

// Record is a validated snapshot of one session's coherence measurement.
// Fields are fixed at construction; IsCoherent is derived once against the
// threshold the record was built with.
type Record struct {
	sessionID     string
	referenceHash string
	power         float64
	coherent      bool
	threshold     float64
}

// NewRecord builds a Record from typed values against DefaultThreshold.
func NewRecord(sessionID, referenceHash string, power float64) Record {
	return newRecord(sessionID, referenceHash, power, DefaultThreshold)
}

func newRecord(sessionID, referenceHash string, power, threshold float64) Record {
	return Record{
		sessionID:     sessionID,
		referenceHash: referenceHash,
		power:         power,
		coherent:      power >= threshold,
		threshold:     threshold,
	}
}

func (r Record) SessionID() string       { return r.sessionID }
func (r Record) ReferenceHash() string   { return r.referenceHash }
func (r Record) CoherencePower() float64 { return r.power }
func (r Record) IsCoherent() bool        { return r.coherent }

// Threshold is the gating threshold IsCoherent was derived against.
func (r Record) Threshold() float64 { return r.threshold }

// Builder converts untyped payloads into Records using one bound threshold.
type Builder struct {
	threshold float64
}

// NewBuilder binds threshold; zero selects DefaultThreshold.
func NewBuilder(threshold float64) Builder {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return Builder{threshold: threshold}
}

// DefaultBuilder returns a Builder bound to DefaultThreshold.
func DefaultBuilder() Builder {
	return NewBuilder(DefaultThreshold)
}

func (b Builder) Threshold() float64 { return b.threshold }

// FromPayload converts payload using DefaultThreshold.
func FromPayload(payload map[string]any) (Record, error) {
	return DefaultBuilder().FromPayload(payload)
}

// FromPayload coerces payload into a Record. Identifiers are stringified and
// the coherence value is converted to float64. The coherence range is not
// checked.
func (b Builder) FromPayload(payload map[string]any) (Record, error) {
	rawPower, err := lookup(payload, KeyCoherence)
	if err != nil {
		return Record{}, err
	}
	power, err := toFloat(KeyCoherence, rawPower)
	if err != nil {
		return Record{}, err
	}
	rawSession, err := lookup(payload, KeySessionID)
	if err != nil {
		return Record{}, err
	}
	rawHash, err := lookup(payload, KeyReferenceHash)
	if err != nil {
		return Record{}, err
	}
	return newRecord(toString(rawSession), toString(rawHash), power, b.threshold), nil
}

func lookup(payload map[string]any, key string) (any, error) {
	v, ok := payload[key]
	if !ok {
		return nil, &MissingFieldError{Field: key}
	}
	return v, nil
}

// Textual values are parsed as decimal with surrounding whitespace ignored.
// Empty text, hex literals, nil and booleans do not count as numbers.
func toFloat(field string, v any) (float64, error) {
	switch x := v.(type) {
	case nil, bool:
		return 0, &TypeConversionError{Field: field, Value: v}
	case string:
		return parseFloat(field, v, x)
	case json.Number:
		return parseFloat(field, v, x.String())
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, &TypeConversionError{Field: field, Value: v, Err: err}
	}
	return f, nil
}

func parseFloat(field string, v any, s string) (float64, error) {
	s = strings.TrimSpace(s)
	digits := strings.ToLower(strings.TrimLeft(s, "+-"))
	if s == "" || strings.HasPrefix(digits, "0x") {
		return 0, &TypeConversionError{Field: field, Value: v}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &TypeConversionError{Field: field, Value: v, Err: err}
	}
	return f, nil
}

// A nil identifier stringifies to "".
func toString(v any) string {
	if v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
