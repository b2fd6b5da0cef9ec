package heap

import (
	"bytes"
	"sync"

	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"

	"github.com/pkg/errors"
)

// HeapPage is a single page of a heap file and implements the page.Page
// interface. The layout is a slot-occupancy bitmask followed by a fixed-size
// tuple array:
//
//	[header: ceil(numSlots/8) bytes][slot 0][slot 1]...[slot N-1][padding]
//
// Bit j of byte j/8 (low-to-high within each byte) records whether slot j
// holds a tuple. A set bit always corresponds to a fully-written tuple; a
// clear bit means the slot's bytes are undefined and are never decoded.
//
// The slot count is chosen so header and tuples together fit in PageSize:
//
//	numSlots = floor(PageSize * 8 / (tupleSize * 8 + 1))
type HeapPage struct {
	pageID    primitives.PageID
	tupleDesc *tuple.TupleDescription
	header    []byte
	tuples    []*tuple.Tuple
	numSlots  primitives.SlotID
	dirtier   primitives.TransactionID
	dirty     bool
	mutex     sync.RWMutex
}

// SlotsPerPage returns how many tuples of the given schema fit on one page,
// accounting for the one occupancy bit each slot adds to the header.
func SlotsPerPage(td *tuple.TupleDescription) primitives.SlotID {
	tupleBits := td.GetSize()*8 + 1
	return primitives.SlotID(page.PageSize * 8 / tupleBits) // #nosec G115
}

// headerSize returns the number of header bytes for the given slot count.
func headerSize(numSlots primitives.SlotID) int {
	return (int(numSlots) + 7) / 8
}

// NewEmptyHeapPage creates an all-empty page for the given identity and
// schema, used when a file grows by one page.
func NewEmptyHeapPage(pid primitives.PageID, td *tuple.TupleDescription) (*HeapPage, error) {
	return NewHeapPage(pid, make([]byte, page.PageSize), td)
}

// NewHeapPage deserializes a page from its raw bytes. Fails with
// ErrCorruptPage if the data length is wrong or an occupied slot does not
// decode as a tuple of the schema.
func NewHeapPage(pid primitives.PageID, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) != page.PageSize {
		return nil, errors.Wrapf(ErrCorruptPage, "invalid page data size: expected %d, got %d",
			page.PageSize, len(data))
	}

	numSlots := SlotsPerPage(td)
	hp := &HeapPage{
		pageID:    pid,
		tupleDesc: td,
		numSlots:  numSlots,
		header:    make([]byte, headerSize(numSlots)),
		tuples:    make([]*tuple.Tuple, numSlots),
	}
	copy(hp.header, data[:len(hp.header)])

	tupleSize := int(td.GetSize())
	for i := primitives.SlotID(0); i < numSlots; i++ {
		if !slotBit(hp.header, i) {
			continue
		}

		start := len(hp.header) + int(i)*tupleSize
		t, err := tuple.ReadFrom(bytes.NewReader(data[start:start+tupleSize]), td)
		if err != nil {
			return nil, errors.Wrapf(ErrCorruptPage, "slot %d does not decode: %v", i, err)
		}
		t.RecordID = tuple.NewRecordID(pid, i)
		hp.tuples[i] = t
	}

	return hp, nil
}

// GetID returns the identity of this page.
func (hp *HeapPage) GetID() primitives.PageID {
	return hp.pageID
}

// IsDirty returns the transaction that dirtied this page, or false if the
// page is clean.
func (hp *HeapPage) IsDirty() (primitives.TransactionID, bool) {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.dirtier, hp.dirty
}

// MarkDirty sets or clears the page's dirty mark. Called by the buffer pool
// when a page is modified or flushed.
func (hp *HeapPage) MarkDirty(dirty bool, tid primitives.TransactionID) {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	hp.dirty = dirty
	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = primitives.TransactionID{}
	}
}

// GetPageData serializes the page: header, then each slot's fixed-width
// record (zero bytes for empty slots), zero-padded to PageSize.
func (hp *HeapPage) GetPageData() []byte {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	data := make([]byte, page.PageSize)
	copy(data, hp.header)

	tupleSize := int(hp.tupleDesc.GetSize())
	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if !slotBit(hp.header, i) || hp.tuples[i] == nil {
			continue
		}

		start := len(hp.header) + int(i)*tupleSize
		buf := bytes.NewBuffer(data[start:start])
		// serialization of a fully-set tuple cannot fail into a fixed buffer
		_ = hp.tuples[i].Serialize(buf)
	}

	return data
}

// GetTuple returns a copy of the tuple at the given slot. The copy does not
// alias page storage; its RecordID still names this page and slot. Fails
// with ErrInvalidSlot if the slot is out of range or empty.
func (hp *HeapPage) GetTuple(slot primitives.SlotID) (*tuple.Tuple, error) {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	if slot >= hp.numSlots {
		return nil, errors.Wrapf(ErrInvalidSlot, "slot %d out of bounds [0, %d)", slot, hp.numSlots)
	}
	if !slotBit(hp.header, slot) || hp.tuples[slot] == nil {
		return nil, errors.Wrapf(ErrInvalidSlot, "slot %d is empty", slot)
	}

	t, err := hp.tuples[slot].Clone()
	if err != nil {
		return nil, err
	}
	t.RecordID = tuple.NewRecordID(hp.pageID, slot)
	return t, nil
}

// InsertTuple places the tuple in the first empty slot (ascending scan),
// sets the slot's occupancy bit, and stamps the tuple's RecordID. Fails with
// ErrPageFull when every slot is occupied.
func (hp *HeapPage) InsertTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if !t.TupleDesc.Equals(hp.tupleDesc) {
		return errors.New("tuple schema does not match page schema")
	}

	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if slotBit(hp.header, i) {
			continue
		}
		hp.tuples[i] = t
		setSlotBit(hp.header, i, true)
		t.RecordID = tuple.NewRecordID(hp.pageID, i)
		return nil
	}

	return errors.Wrapf(ErrPageFull, "page %v", hp.pageID)
}

// DeleteTupleAt clears the slot's occupancy bit. The slot's bytes are left
// as-is; they are garbage until the slot is reused.
func (hp *HeapPage) DeleteTupleAt(slot primitives.SlotID) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	return hp.deleteSlot(slot)
}

// DeleteTuple removes the given tuple from this page using its RecordID,
// then clears the RecordID.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if t.RecordID == nil {
		return errors.New("tuple has no record ID")
	}
	if t.RecordID.PageID != hp.pageID {
		return errors.New("tuple is not on this page")
	}
	if err := hp.deleteSlot(t.RecordID.Slot); err != nil {
		return err
	}
	t.RecordID = nil
	return nil
}

func (hp *HeapPage) deleteSlot(slot primitives.SlotID) error {
	if slot >= hp.numSlots {
		return errors.Wrapf(ErrInvalidSlot, "slot %d out of bounds [0, %d)", slot, hp.numSlots)
	}
	if !slotBit(hp.header, slot) {
		return errors.Wrapf(ErrInvalidSlot, "slot %d is already empty", slot)
	}

	setSlotBit(hp.header, slot, false)
	hp.tuples[slot] = nil
	return nil
}

// NumSlots returns the page's total slot capacity.
func (hp *HeapPage) NumSlots() primitives.SlotID {
	return hp.numSlots
}

// GetNumEmptySlots counts unoccupied slots; non-zero means the page can
// accept an insert.
func (hp *HeapPage) GetNumEmptySlots() primitives.SlotID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	empty := primitives.SlotID(0)
	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if !slotBit(hp.header, i) {
			empty++
		}
	}
	return empty
}

// GetTuples returns copies of every occupied slot's tuple in slot order,
// used by iterators to snapshot a page.
func (hp *HeapPage) GetTuples() ([]*tuple.Tuple, error) {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	var out []*tuple.Tuple
	for i := primitives.SlotID(0); i < hp.numSlots; i++ {
		if !slotBit(hp.header, i) || hp.tuples[i] == nil {
			continue
		}
		t, err := hp.tuples[i].Clone()
		if err != nil {
			return nil, err
		}
		t.RecordID = tuple.NewRecordID(hp.pageID, i)
		out = append(out, t)
	}
	return out, nil
}

// IsSlotUsed reports whether the slot's occupancy bit is set.
func (hp *HeapPage) IsSlotUsed(slot primitives.SlotID) bool {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return slot < hp.numSlots && slotBit(hp.header, slot)
}

// GetTupleDesc returns the schema of tuples on this page.
func (hp *HeapPage) GetTupleDesc() *tuple.TupleDescription {
	return hp.tupleDesc
}

// slotBit reads occupancy bit i: bit i%8 (low-to-high) of header byte i/8.
func slotBit(header []byte, i primitives.SlotID) bool {
	idx := int(i) / 8
	if idx >= len(header) {
		return false
	}
	return header[idx]&(1<<(i%8)) != 0
}

func setSlotBit(header []byte, i primitives.SlotID, value bool) {
	idx := int(i) / 8
	mask := byte(1 << (i % 8))
	if value {
		header[idx] |= mask
	} else {
		header[idx] &^= mask
	}
}
