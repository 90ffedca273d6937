// Package coherence owns the manifestation gate.
//
// Ownership boundary:
// - payload -> Record conversion
// - record fingerprints
// - gate decision (Manifest or veto)
//
// Lifecycle order:
// - payload -> Record -> Gate -> Manifest | VetoError
//
// Every value in this package is immutable once constructed and safe for
// concurrent reads. The package performs no I/O and no logging; callers own
// transport, retries, and observability.
package coherence
