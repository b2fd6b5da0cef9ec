package types

import (
	"encoding/binary"
	"io"
	"strconv"

	"heapstore/pkg/primitives"
)

// IntField represents a 32-bit signed integer field.
// On disk it is 4 bytes, big-endian, two's-complement.
type IntField struct {
	Value int32
}

func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(f.Value)) // #nosec G115
	_, err := w.Write(buf)
	return err
}

func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	otherInt, ok := other.(*IntField)
	if !ok {
		return false, nil
	}
	return compareInt32(f.Value, otherInt.Value, op), nil
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(int64(f.Value), 10)
}

func (f *IntField) Equals(other Field) bool {
	otherInt, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherInt.Value
}

func (f *IntField) Length() uint32 {
	return IntType.Size()
}

func compareInt32(a, b int32, op primitives.Predicate) bool {
	switch op {
	case primitives.Equals:
		return a == b
	case primitives.NotEqual:
		return a != b
	case primitives.LessThan:
		return a < b
	case primitives.LessThanOrEqual:
		return a <= b
	case primitives.GreaterThan:
		return a > b
	case primitives.GreaterThanOrEqual:
		return a >= b
	default:
		return false
	}
}
