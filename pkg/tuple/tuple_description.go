package tuple

import (
	"strings"

	"heapstore/pkg/primitives"
	"heapstore/pkg/types"

	"github.com/pkg/errors"
)

// TupleDescription describes the schema of a tuple: the type and name of
// each field in order. Because every field type has a fixed width, a
// TupleDescription fixes the serialized size of all its tuples.
type TupleDescription struct {
	// Types contains the data type of each field in order.
	Types []types.Type
	// FieldNames contains the name of each field (optional, may be nil).
	FieldNames []string
}

// NewTupleDesc creates a TupleDescription from field types and optional
// field names. If fieldNames is nil, fields are unnamed.
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, errors.New("must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	copy(typesCopy, fieldTypes)

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, errors.Errorf("field names length (%d) must match field types length (%d)",
				len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{
		Types:      typesCopy,
		FieldNames: namesCopy,
	}, nil
}

// NumFields returns the number of fields in the schema.
func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// TypeAtIndex returns the type of the ith field.
func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, errors.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// GetFieldName returns the name of the ith field, or the empty string if the
// schema is unnamed.
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", errors.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	if td.FieldNames == nil {
		return "", nil
	}
	return td.FieldNames[i], nil
}

// NameToIndex returns the index of the field with the given name.
func (td *TupleDescription) NameToIndex(name string) (primitives.ColumnID, error) {
	for i, fieldName := range td.FieldNames {
		if fieldName == name {
			return primitives.ColumnID(i), nil // #nosec G115
		}
	}
	return 0, errors.Errorf("no field named %q", name)
}

// GetSize returns the serialized size in bytes of tuples with this schema.
func (td *TupleDescription) GetSize() uint32 {
	var size uint32
	for _, fieldType := range td.Types {
		size += fieldType.Size()
	}
	return size
}

// Equals checks if two descriptions have the same field types in the same
// order. Field names are not compared.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil || len(td.Types) != len(other.Types) {
		return false
	}
	for i, fieldType := range td.Types {
		if fieldType != other.Types[i] {
			return false
		}
	}
	return true
}

// Combine merges two descriptions into one with td1's fields followed by
// td2's. Used to build joined-row schemas.
func Combine(td1, td2 *TupleDescription) *TupleDescription {
	combinedTypes := make([]types.Type, 0, len(td1.Types)+len(td2.Types))
	combinedTypes = append(combinedTypes, td1.Types...)
	combinedTypes = append(combinedTypes, td2.Types...)

	var combinedNames []string
	if td1.FieldNames != nil && td2.FieldNames != nil {
		combinedNames = make([]string, 0, len(combinedTypes))
		combinedNames = append(combinedNames, td1.FieldNames...)
		combinedNames = append(combinedNames, td2.FieldNames...)
	}

	return &TupleDescription{
		Types:      combinedTypes,
		FieldNames: combinedNames,
	}
}

// String returns a schema representation like "id:INT, name:STRING".
func (td *TupleDescription) String() string {
	parts := make([]string, len(td.Types))
	for i, fieldType := range td.Types {
		name, _ := td.GetFieldName(i)
		if name == "" {
			parts[i] = fieldType.String()
		} else {
			parts[i] = name + ":" + fieldType.String()
		}
	}
	return strings.Join(parts, ", ")
}
