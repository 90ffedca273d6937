package coherence

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField        = errors.New("coherence: missing required field")
	ErrTypeConversion      = errors.New("coherence: type conversion failed")
	ErrVeto                = errors.New("coherence: veto")
	ErrFingerprintMismatch = errors.New("coherence: fingerprint mismatch")
)

// MissingFieldError indicates a required payload key was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("coherence: missing required field %q", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// TypeConversionError indicates a payload value could not be coerced to the
// type its field requires.
type TypeConversionError struct {
	Field string
	Value any
	Err   error
}

func (e *TypeConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("coherence: field %q: cannot convert %T to number", e.Field, e.Value)
	}
	return fmt.Sprintf("coherence: field %q: cannot convert %T to number: %v", e.Field, e.Value, e.Err)
}

func (e *TypeConversionError) Is(target error) bool {
	return target == ErrTypeConversion
}

func (e *TypeConversionError) Unwrap() error {
	return e.Err
}

// VetoError is the expected failure outcome of Gate.Evaluate when the bound
// record's coherence power sits below its threshold.
type VetoError struct {
	Coherence float64
	Threshold float64
}

func (e *VetoError) Error() string {
	return fmt.Sprintf(
		"coherence veto: coherence power (%.3f) < threshold (%s)",
		e.Coherence,
		formatThreshold(e.Threshold),
	)
}

func (e *VetoError) Is(target error) bool {
	return target == ErrVeto
}

// IsVeto reports whether err carries a *VetoError.
func IsVeto(err error) bool {
	var ve *VetoError
	return errors.As(err, &ve)
}
