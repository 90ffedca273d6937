package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const HeaderLen = 7

var (
	ErrShortFieldHeader = errors.New("tlv: short field header")
	ErrShortFieldValue  = errors.New("tlv: short field value")
	ErrUnknownType      = errors.New("tlv: unknown field type")
)

// Type IDs from tlv contract.
const (
	TypeU8     uint8 = 1
	TypeU16    uint8 = 2
	TypeU32    uint8 = 3
	TypeU64    uint8 = 4
	TypeBool   uint8 = 5
	TypeString uint8 = 6
	TypeBytes  uint8 = 7
	TypeF64    uint8 = 8
)

// Field is one decoded TLV field.
type Field struct {
	ID    uint16
	Type  uint8
	Value []byte
}

func StringField(id uint16, s string) Field {
	return Field{ID: id, Type: TypeString, Value: []byte(s)}
}

// F64Field stores v as big-endian IEEE 754 bits.
func F64Field(id uint16, v float64) Field {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return Field{ID: id, Type: TypeF64, Value: b}
}

func EncodeField(f Field) []byte {
	buf := make([]byte, HeaderLen+len(f.Value))
	binary.BigEndian.PutUint16(buf[0:2], f.ID)
	buf[2] = f.Type
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(f.Value)))
	copy(buf[7:], f.Value)
	return buf
}

func DecodeFields(payload []byte) ([]Field, error) {
	fields := make([]Field, 0)
	i := 0
	for i < len(payload) {
		if len(payload)-i < HeaderLen {
			return nil, ErrShortFieldHeader
		}
		id := binary.BigEndian.Uint16(payload[i : i+2])
		typeID := payload[i+2]
		l := binary.BigEndian.Uint32(payload[i+3 : i+7])
		i += HeaderLen
		if uint32(len(payload)-i) < l {
			return nil, ErrShortFieldValue
		}
		val := make([]byte, l)
		copy(val, payload[i:i+int(l)])
		i += int(l)
		fields = append(fields, Field{ID: id, Type: typeID, Value: val})
	}
	return fields, nil
}

func EncodeFields(fields []Field) []byte {
	out := make([]byte, 0)
	for _, f := range fields {
		out = append(out, EncodeField(f)...)
	}
	return out
}

func GetField(fields []Field, id uint16) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Value converts a field into its natural Go value: string, []byte, bool,
// uint64 for the unsigned types, float64 for TypeF64.
func Value(f Field) (any, error) {
	switch f.Type {
	case TypeString:
		return string(f.Value), nil
	case TypeBytes:
		return f.Value, nil
	case TypeBool:
		if len(f.Value) != 1 {
			return nil, fmt.Errorf("tlv: field %d invalid bool length: %d", f.ID, len(f.Value))
		}
		return f.Value[0] != 0, nil
	case TypeU8, TypeU16, TypeU32, TypeU64:
		return unsignedValue(f)
	case TypeF64:
		if len(f.Value) != 8 {
			return nil, fmt.Errorf("tlv: field %d invalid f64 length: %d", f.ID, len(f.Value))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(f.Value)), nil
	default:
		return nil, fmt.Errorf("%w: field %d type %d", ErrUnknownType, f.ID, f.Type)
	}
}

func unsignedValue(f Field) (uint64, error) {
	want := map[uint8]int{TypeU8: 1, TypeU16: 2, TypeU32: 4, TypeU64: 8}[f.Type]
	if len(f.Value) != want {
		return 0, fmt.Errorf("tlv: field %d invalid length for type %d: %d", f.ID, f.Type, len(f.Value))
	}
	switch want {
	case 1:
		return uint64(f.Value[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(f.Value)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(f.Value)), nil
	default:
		return binary.BigEndian.Uint64(f.Value), nil
	}
}
