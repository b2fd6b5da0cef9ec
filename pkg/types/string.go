package types

import (
	"encoding/binary"
	"io"
	"strings"

	"heapstore/pkg/primitives"
)

// StringField represents a fixed-width string field.
// On disk it is a 4-byte big-endian length followed by StringSize bytes of
// UTF-8 data, zero-padded. Values longer than StringSize are truncated.
type StringField struct {
	Value string
}

func NewStringField(value string) *StringField {
	if len(value) > StringSize {
		value = value[:StringSize]
	}
	return &StringField{Value: value}
}

func (f *StringField) Serialize(w io.Writer) error {
	buf := make([]byte, StringType.Size())
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(f.Value))) // #nosec G115
	copy(buf[4:], f.Value)
	_, err := w.Write(buf)
	return err
}

func (f *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	otherStr, ok := other.(*StringField)
	if !ok {
		return false, nil
	}

	cmp := strings.Compare(f.Value, otherStr.Value)
	switch op {
	case primitives.Equals:
		return cmp == 0, nil
	case primitives.NotEqual:
		return cmp != 0, nil
	case primitives.LessThan:
		return cmp < 0, nil
	case primitives.LessThanOrEqual:
		return cmp <= 0, nil
	case primitives.GreaterThan:
		return cmp > 0, nil
	case primitives.GreaterThanOrEqual:
		return cmp >= 0, nil
	default:
		return false, nil
	}
}

func (f *StringField) Type() Type {
	return StringType
}

func (f *StringField) String() string {
	return f.Value
}

func (f *StringField) Equals(other Field) bool {
	otherStr, ok := other.(*StringField)
	if !ok {
		return false
	}
	return f.Value == otherStr.Value
}

func (f *StringField) Length() uint32 {
	return StringType.Size()
}
