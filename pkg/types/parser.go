package types

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseField decodes one field of the given type from r. The reader must be
// positioned at the start of the field's fixed-width encoding; exactly
// fieldType.Size() bytes are consumed.
func ParseField(r io.Reader, fieldType Type) (Field, error) {
	switch fieldType {
	case IntType:
		return parseIntField(r)
	case StringType:
		return parseStringField(r)
	case DecimalType:
		return parseDecimalField(r)
	default:
		return nil, errors.Errorf("unknown field type %d", fieldType)
	}
}

func parseIntField(r io.Reader) (*IntField, error) {
	buf := make([]byte, IntType.Size())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "failed to read int field")
	}
	return NewIntField(int32(binary.BigEndian.Uint32(buf))), nil // #nosec G115
}

func parseStringField(r io.Reader) (*StringField, error) {
	buf := make([]byte, StringType.Size())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "failed to read string field")
	}

	length := binary.BigEndian.Uint32(buf[0:4])
	if length > StringSize {
		return nil, errors.Errorf("string field length %d exceeds maximum %d", length, StringSize)
	}
	return NewStringField(string(buf[4 : 4+length])), nil
}

func parseDecimalField(r io.Reader) (*DecimalField, error) {
	buf := make([]byte, DecimalType.Size())
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "failed to read decimal field")
	}

	coefficient := int64(binary.BigEndian.Uint64(buf[0:8])) // #nosec G115
	exponent := int32(binary.BigEndian.Uint32(buf[8:12]))   // #nosec G115
	return NewDecimalField(decimal.New(coefficient, exponent))
}
