package primitives

// FileID is the base type representing a unique file identifier derived from
// hashing a file path. It represents the physical file's identity and is the
// foundation for TableID.
//
// FileID is generated with xxhash64 of the file path and provides:
//   - Deterministic identification: the same path always produces the same ID
//   - Fast lookups in hash-based data structures
//   - Collision resistance for different paths
type FileID uint64

// TableID identifies a table. Tables map 1:1 to heap files, so a TableID is
// the FileID of the table's backing file.
type TableID uint64

// SlotID represents a slot number within a heap page.
type SlotID uint16

// PageNumber represents a page number within a table file.
type PageNumber uint64

// ColumnID identifies a column within a table schema.
type ColumnID uint32

// HashCode represents a hash value computed for fast comparisons or lookups.
type HashCode uint64

// Sentinel values for invalid/unset identifiers.
const (
	// InvalidFileID represents an invalid or unset file ID.
	InvalidFileID FileID = 0

	// InvalidTableID represents an invalid or unset table ID.
	InvalidTableID TableID = 0
)
