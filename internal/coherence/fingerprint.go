package coherence

import (
	"crypto/subtle"
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns the hex BLAKE2b-256 digest of the record's session id,
// reference hash, and coherence power at six decimal places. Powers that
// agree to six decimals share a fingerprint.
func Fingerprint(r Record) string {
	sum := blake2b.Sum256(fingerprintInput(r))
	return hex.EncodeToString(sum[:])
}

// VerifyFingerprint recomputes r's fingerprint and compares it with fp.
func VerifyFingerprint(r Record, fp string) error {
	want := Fingerprint(r)
	if subtle.ConstantTimeCompare([]byte(want), []byte(fp)) != 1 {
		return ErrFingerprintMismatch
	}
	return nil
}

func fingerprintInput(r Record) []byte {
	buf := make([]byte, 0, len(r.sessionID)+len(r.referenceHash)+16)
	buf = append(buf, r.sessionID...)
	buf = append(buf, r.referenceHash...)
	return strconv.AppendFloat(buf, r.power, 'f', 6, 64)
}
