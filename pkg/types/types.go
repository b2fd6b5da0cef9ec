package types

// StringSize is the fixed payload width of a string field on disk.
// Strings longer than this are truncated at insert time.
const StringSize = 256

// Type enumerates the field types a column may have. Every type has a fixed
// serialized width, so tuples of one schema always occupy the same number of
// bytes on a page.
type Type int

const (
	IntType Type = iota
	StringType
	DecimalType
)

// Size returns the serialized width of the type in bytes.
func (t Type) Size() uint32 {
	switch t {
	case IntType:
		// 4-byte big-endian int32
		return 4
	case StringType:
		// 4-byte big-endian length followed by StringSize padded bytes
		return StringSize + 4
	case DecimalType:
		// 8-byte coefficient, 4-byte exponent, 4 bytes of padding
		return 16
	default:
		return 0
	}
}

// String returns a string representation of the type.
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT"
	case StringType:
		return "STRING"
	case DecimalType:
		return "DECIMAL"
	default:
		return "UNKNOWN"
	}
}

// ParseType resolves a type name as written in schema files.
func ParseType(name string) (Type, bool) {
	switch name {
	case "Int", "INT", "int":
		return IntType, true
	case "String", "STRING", "string":
		return StringType, true
	case "Decimal", "DECIMAL", "decimal":
		return DecimalType, true
	default:
		return 0, false
	}
}
