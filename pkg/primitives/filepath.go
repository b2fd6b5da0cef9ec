package primitives

import (
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// Filepath is a type-safe wrapper around file paths used throughout the
// storage layer. It provides path manipulation helpers and derives the
// stable file identifier a path maps to.
type Filepath string

// Hash generates a FileID from the file path using xxhash64.
// The hash is used as the physical file identifier throughout the system:
// the same path always yields the same ID.
func (f Filepath) Hash() FileID {
	return FileID(xxhash.Sum64String(string(f)))
}

// HashAsTableID generates a TableID by hashing the file path.
// Convenience for paths known to be table files.
func (f Filepath) HashAsTableID() TableID {
	return f.Hash().ToTableID()
}

// String converts the Filepath to a standard string.
func (f Filepath) String() string {
	return string(f)
}

// Dir returns the directory portion of the file path.
func (f Filepath) Dir() string {
	return filepath.Dir(string(f))
}

// Base returns the last element of the path (the filename).
func (f Filepath) Base() string {
	return filepath.Base(string(f))
}

// Join concatenates path elements to this path and returns a new Filepath.
func (f Filepath) Join(elem ...string) Filepath {
	parts := append([]string{string(f)}, elem...)
	return Filepath(filepath.Join(parts...))
}

// Exists checks whether the file exists on the filesystem.
func (f Filepath) Exists() bool {
	_, err := os.Stat(string(f))
	return err == nil
}

// Remove deletes the file. The operation is idempotent: it succeeds if the
// file does not exist.
func (f Filepath) Remove() error {
	if !f.Exists() {
		return nil
	}
	return os.Remove(string(f))
}

// IsEmpty checks whether the filepath is an empty string.
func (f Filepath) IsEmpty() bool {
	return string(f) == ""
}

// MkdirAll creates the directory named by the path, along with any
// necessary parents. Succeeds if the directory already exists.
func (f Filepath) MkdirAll(perm os.FileMode) error {
	return os.MkdirAll(string(f), perm)
}
