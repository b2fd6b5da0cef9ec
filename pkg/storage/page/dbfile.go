package page

import (
	"heapstore/pkg/primitives"
	"heapstore/pkg/tuple"
)

// DbFile is the on-disk representation of one table: a file addressed in
// page-size units. The buffer pool performs all its physical I/O through
// this interface.
type DbFile interface {
	// GetID returns the stable identifier of the backing file. Tables map
	// 1:1 to files, so this is also the table's identity.
	GetID() primitives.FileID

	// ReadPage reads the identified page from disk.
	ReadPage(pid primitives.PageID) (Page, error)

	// WritePage writes the page's current contents to its slot in the file.
	// The bytes are persisted when the call returns.
	WritePage(p Page) error

	// NumPages returns the number of pages currently in the file.
	NumPages() (primitives.PageNumber, error)

	// DeserializePage materializes a page of this file's format from raw
	// bytes, without touching disk. The buffer pool uses this to restore
	// saved page images during transaction rollback.
	DeserializePage(pid primitives.PageID, data []byte) (Page, error)

	// GetTupleDesc returns the schema of tuples stored in this file.
	GetTupleDesc() *tuple.TupleDescription

	// Close releases the underlying file handle.
	Close() error
}
