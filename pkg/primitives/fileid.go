package primitives

import "fmt"

// IsValid checks if the FileID is a valid non-zero identifier.
// A FileID of 0 is considered invalid or uninitialized.
func (f FileID) IsValid() bool {
	return f != InvalidFileID
}

// AsUint64 returns the FileID as a uint64 for serialization or storage.
func (f FileID) AsUint64() uint64 {
	return uint64(f)
}

// String returns a string representation of the FileID.
func (f FileID) String() string {
	return fmt.Sprintf("FileID(%d)", f)
}

// ToTableID converts the FileID into a TableID. Tables and their backing
// files share an identifier.
func (f FileID) ToTableID() TableID {
	return TableID(f)
}

// IsValid checks if the TableID is a valid non-zero identifier.
func (t TableID) IsValid() bool {
	return t != InvalidTableID
}

// AsUint64 returns the TableID as a uint64 for serialization or storage.
func (t TableID) AsUint64() uint64 {
	return uint64(t)
}

// String returns a string representation of the TableID.
func (t TableID) String() string {
	return fmt.Sprintf("TableID(%d)", t)
}
