package tuple

import (
	"io"
	"strings"

	"heapstore/pkg/types"

	"github.com/pkg/errors"
)

// Tuple represents a row of data. A tuple's fields match its schema in
// number and type; its RecordID is set only while the tuple is stored on a
// page.
type Tuple struct {
	TupleDesc *TupleDescription
	fields    []types.Field
	RecordID  *RecordID
}

// NewTuple creates an empty tuple with the given schema. Fields must be set
// before the tuple is serialized.
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// SetField assigns the ith field. The field's type must match the schema.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return errors.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}

	expectedType, _ := t.TupleDesc.TypeAtIndex(i)
	if field.Type() != expectedType {
		return errors.Errorf("field type mismatch at index %d: expected %v, got %v",
			i, expectedType, field.Type())
	}

	t.fields[i] = field
	return nil
}

// GetField returns the value of the ith field.
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, errors.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// Serialize writes the tuple's fields in order to w. Every field must be
// set; the output width is exactly TupleDesc.GetSize() bytes.
func (t *Tuple) Serialize(w io.Writer) error {
	for i, field := range t.fields {
		if field == nil {
			return errors.Errorf("cannot serialize tuple with unset field %d", i)
		}
		if err := field.Serialize(w); err != nil {
			return errors.Wrapf(err, "failed to serialize field %d", i)
		}
	}
	return nil
}

// ReadFrom decodes one tuple of the given schema from r, consuming exactly
// td.GetSize() bytes.
func ReadFrom(r io.Reader, td *TupleDescription) (*Tuple, error) {
	t := NewTuple(td)
	for i := 0; i < td.NumFields(); i++ {
		fieldType, err := td.TypeAtIndex(i)
		if err != nil {
			return nil, err
		}

		field, err := types.ParseField(r, fieldType)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse field %d", i)
		}

		if err := t.SetField(i, field); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Clone creates a deep copy of the tuple's fields. The clone has no
// RecordID: it is not stored anywhere yet.
func (t *Tuple) Clone() (*Tuple, error) {
	clone := NewTuple(t.TupleDesc)
	for i := 0; i < t.TupleDesc.NumFields(); i++ {
		field, err := t.GetField(i)
		if err != nil {
			return nil, err
		}
		if field != nil {
			if err := clone.SetField(i, field); err != nil {
				return nil, err
			}
		}
	}
	return clone, nil
}

// Equals reports whether both tuples have the same schema and field values.
// RecordIDs are not compared.
func (t *Tuple) Equals(other *Tuple) bool {
	if other == nil || !t.TupleDesc.Equals(other.TupleDesc) {
		return false
	}
	for i, field := range t.fields {
		otherField := other.fields[i]
		if field == nil || otherField == nil {
			if field != otherField {
				return false
			}
			continue
		}
		if !field.Equals(otherField) {
			return false
		}
	}
	return true
}

// CombineTuples concatenates two tuples into one with a combined schema.
// Used by join glue.
func CombineTuples(t1, t2 *Tuple) (*Tuple, error) {
	if t1 == nil || t2 == nil {
		return nil, errors.New("cannot combine nil tuples")
	}

	combined := NewTuple(Combine(t1.TupleDesc, t2.TupleDesc))
	if err := t1.copyFieldsTo(combined, 0); err != nil {
		return nil, err
	}
	if err := t2.copyFieldsTo(combined, t1.TupleDesc.NumFields()); err != nil {
		return nil, err
	}
	return combined, nil
}

func (t *Tuple) copyFieldsTo(target *Tuple, startIndex int) error {
	for i := 0; i < t.TupleDesc.NumFields(); i++ {
		field, err := t.GetField(i)
		if err != nil {
			return err
		}
		if field != nil {
			if err := target.SetField(startIndex+i, field); err != nil {
				return err
			}
		}
	}
	return nil
}

// String returns the tuple's fields joined by tabs.
func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, field := range t.fields {
		if field != nil {
			parts[i] = field.String()
		} else {
			parts[i] = "null"
		}
	}
	return strings.Join(parts, "\t")
}
