package types

import (
	"io"

	"heapstore/pkg/primitives"
)

// Field is one typed value inside a tuple. Implementations serialize to a
// fixed number of bytes determined by their Type.
type Field interface {
	// Serialize writes the field's fixed-width encoding to w.
	Serialize(w io.Writer) error

	// Compare evaluates this field against another under the given predicate.
	// Comparing fields of different concrete types yields false.
	Compare(op primitives.Predicate, other Field) (bool, error)

	// Type returns the field's type tag.
	Type() Type

	// Equals reports whether the other field has the same type and value.
	Equals(other Field) bool

	// Length returns the serialized width in bytes.
	Length() uint32

	String() string
}
