package types

import (
	"encoding/binary"
	"io"

	"heapstore/pkg/primitives"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DecimalField represents an exact decimal field backed by
// shopspring/decimal. On disk it is 16 bytes: an 8-byte big-endian
// coefficient (int64), a 4-byte big-endian exponent (int32), and 4 bytes of
// padding, keeping the width fixed like every other field type.
//
// Values whose coefficient does not fit in an int64 are rejected at
// construction rather than silently rounded.
type DecimalField struct {
	Value decimal.Decimal
}

func NewDecimalField(value decimal.Decimal) (*DecimalField, error) {
	if !value.Coefficient().IsInt64() {
		return nil, errors.Errorf("decimal coefficient %s exceeds 64 bits", value.Coefficient())
	}
	return &DecimalField{Value: value}, nil
}

// NewDecimalFieldFromString parses a decimal literal such as "12.50".
func NewDecimalFieldFromString(s string) (*DecimalField, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid decimal literal %q", s)
	}
	return NewDecimalField(d)
}

func (f *DecimalField) Serialize(w io.Writer) error {
	buf := make([]byte, DecimalType.Size())
	binary.BigEndian.PutUint64(buf[0:8], uint64(f.Value.CoefficientInt64())) // #nosec G115
	binary.BigEndian.PutUint32(buf[8:12], uint32(f.Value.Exponent()))       // #nosec G115
	_, err := w.Write(buf)
	return err
}

func (f *DecimalField) Compare(op primitives.Predicate, other Field) (bool, error) {
	otherDec, ok := other.(*DecimalField)
	if !ok {
		return false, nil
	}

	cmp := f.Value.Cmp(otherDec.Value)
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

func (f *DecimalField) Type() Type {
	return DecimalType
}

func (f *DecimalField) String() string {
	return f.Value.String()
}

func (f *DecimalField) Equals(other Field) bool {
	otherDec, ok := other.(*DecimalField)
	if !ok {
		return false
	}
	return f.Value.Equal(otherDec.Value)
}

func (f *DecimalField) Length() uint32 {
	return DecimalType.Size()
}
