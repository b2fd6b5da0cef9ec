package tuple

import (
	"fmt"

	"heapstore/pkg/primitives"
)

// RecordID locates a tuple on disk: the page it lives on and the slot it
// occupies within that page. A comparable value, set when the tuple is
// written to a page and cleared when the tuple is deleted.
type RecordID struct {
	PageID primitives.PageID
	Slot   primitives.SlotID
}

// NewRecordID creates a record identifier for the given page and slot.
func NewRecordID(pid primitives.PageID, slot primitives.SlotID) *RecordID {
	return &RecordID{
		PageID: pid,
		Slot:   slot,
	}
}

// Equals checks if two record IDs reference the same tuple location.
func (rid *RecordID) Equals(other *RecordID) bool {
	if rid == nil || other == nil {
		return rid == other
	}
	return rid.PageID == other.PageID && rid.Slot == other.Slot
}

func (rid *RecordID) String() string {
	return fmt.Sprintf("RecordID(%v, slot=%d)", rid.PageID, rid.Slot)
}
