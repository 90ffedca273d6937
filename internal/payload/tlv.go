package payload

import (
	"fmt"

	"github.com/danmuck/coherencegate/internal/coherence"
	"github.com/danmuck/coherencegate/internal/protocol/tlv"
)

// TLV field IDs for binary IPC payloads.
const (
	FieldSessionID     uint16 = 1
	FieldReferenceHash uint16 = 2
	FieldCoherence     uint16 = 3
)

var tlvKeys = []struct {
	id  uint16
	key string
}{
	{FieldCoherence, coherence.KeyCoherence},
	{FieldSessionID, coherence.KeySessionID},
	{FieldReferenceHash, coherence.KeyReferenceHash},
}

// EncodeTLV renders a typed payload as TLV fields.
func EncodeTLV(sessionID, referenceHash string, power float64) []byte {
	return tlv.EncodeFields([]tlv.Field{
		tlv.StringField(FieldSessionID, sessionID),
		tlv.StringField(FieldReferenceHash, referenceHash),
		tlv.F64Field(FieldCoherence, power),
	})
}

// Unknown field IDs are skipped; a repeated ID keeps its first occurrence.
func decodeTLV(data []byte) (map[string]any, error) {
	fields, err := tlv.DecodeFields(data)
	if err != nil {
		return nil, fmt.Errorf("payload tlv: %w", err)
	}
	m := make(map[string]any, len(tlvKeys))
	for _, k := range tlvKeys {
		f, ok := tlv.GetField(fields, k.id)
		if !ok {
			continue
		}
		v, err := tlv.Value(f)
		if err != nil {
			return nil, fmt.Errorf("payload tlv: %w", err)
		}
		m[k.key] = v
	}
	return m, nil
}
