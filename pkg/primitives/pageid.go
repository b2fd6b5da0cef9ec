package primitives

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// PageID uniquely identifies one page of one table file. It is an immutable
// value and is comparable, so it can be used directly as a map key in the
// buffer pool cache and the lock table.
type PageID struct {
	tableID TableID
	pageNum PageNumber
}

// NewPageID creates a page identifier for the given table and page number.
func NewPageID(tableID TableID, pageNum PageNumber) PageID {
	return PageID{
		tableID: tableID,
		pageNum: pageNum,
	}
}

// TableID returns the table this page belongs to.
func (pid PageID) TableID() TableID {
	return pid.tableID
}

// PageNo returns the page number within the table file.
func (pid PageID) PageNo() PageNumber {
	return pid.pageNum
}

// Serialize returns the page ID as 16 bytes: table ID then page number,
// both little-endian.
func (pid PageID) Serialize() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(pid.tableID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(pid.pageNum))
	return buf
}

// Equals checks if two page IDs identify the same page.
func (pid PageID) Equals(other PageID) bool {
	return pid == other
}

// String returns a string representation of this page ID.
func (pid PageID) String() string {
	return fmt.Sprintf("PageID(table=%d, page=%d)", pid.tableID, pid.pageNum)
}

// HashCode returns a hash code for this page ID.
func (pid PageID) HashCode() HashCode {
	return HashCode(xxhash.Sum64(pid.Serialize()))
}
