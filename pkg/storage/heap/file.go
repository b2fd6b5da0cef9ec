package heap

import (
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"

	"github.com/pkg/errors"
)

// PagePool is the buffer-pool surface heap files use to fetch pages with
// the right lock permissions during tuple mutation. Satisfied by
// memory.PageStore.
type PagePool interface {
	// GetPage returns the page, acquiring a lock for tid matching perm.
	GetPage(tid primitives.TransactionID, pid primitives.PageID, perm page.Permissions) (page.Page, error)

	// MarkDirty records tid as the dirtier of the page and captures its
	// before-image if this is tid's first write to it.
	MarkDirty(tid primitives.TransactionID, pid primitives.PageID) error
}

// HeapFile stores tuples of a single schema as an unordered collection of
// HeapPages. It implements page.DbFile; all page I/O goes through the
// embedded BaseFile.
type HeapFile struct {
	*page.BaseFile
	tupleDesc *tuple.TupleDescription
}

// NewHeapFile opens (creating if necessary) the heap file at filePath for
// tuples of the given schema.
func NewHeapFile(filePath primitives.Filepath, td *tuple.TupleDescription) (*HeapFile, error) {
	if td == nil {
		return nil, errors.New("tuple description cannot be nil")
	}

	base, err := page.NewBaseFile(filePath)
	if err != nil {
		return nil, err
	}

	return &HeapFile{
		BaseFile:  base,
		tupleDesc: td,
	}, nil
}

// GetTupleDesc returns the schema of every tuple in this file.
func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// ReadPage returns the page with the given ID. Reading the page one past
// the current end of file grows the file by one zero page and returns it
// empty; reading beyond that fails with ErrPageOutOfRange.
func (hf *HeapFile) ReadPage(pid primitives.PageID) (page.Page, error) {
	if pid.TableID() != hf.GetID().ToTableID() {
		return nil, errors.Errorf("page %v does not belong to file %v", pid, hf.GetID())
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	pageNo := pid.PageNo()
	switch {
	case pageNo < numPages:
		data, err := hf.ReadPageData(pageNo)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read page %d", pageNo)
		}
		return NewHeapPage(pid, data, hf.tupleDesc)

	case pageNo == numPages:
		if _, err := hf.AllocatePage(); err != nil {
			return nil, errors.Wrapf(err, "failed to extend file to page %d", pageNo)
		}
		return NewEmptyHeapPage(pid, hf.tupleDesc)

	default:
		return nil, errors.Wrapf(ErrPageOutOfRange, "page %d, file has %d pages", pageNo, numPages)
	}
}

// DeserializePage rebuilds a HeapPage of this file's schema from raw bytes.
func (hf *HeapFile) DeserializePage(pid primitives.PageID, data []byte) (page.Page, error) {
	return NewHeapPage(pid, data, hf.tupleDesc)
}

// WritePage serializes the page and writes it at its page number, extending
// the file if the page is the next one past the current end.
func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return errors.New("cannot write nil page")
	}

	pid := p.GetID()
	numPages, err := hf.NumPages()
	if err != nil {
		return err
	}
	if pid.PageNo() > numPages {
		return errors.Wrapf(ErrPageOutOfRange, "page %d, file has %d pages", pid.PageNo(), numPages)
	}

	return hf.WritePageData(pid.PageNo(), p.GetPageData())
}

// InsertTuple adds the tuple to the first page with a free slot, extending
// the file with a fresh page when every existing page is full. Pages are
// probed under a shared lock and mutated under an exclusive one, both
// acquired through the pool on behalf of tid. Returns the record ID the
// tuple was assigned.
func (hf *HeapFile) InsertTuple(tid primitives.TransactionID, t *tuple.Tuple, pool PagePool) (*tuple.RecordID, error) {
	if !t.TupleDesc.Equals(hf.tupleDesc) {
		return nil, errors.New("tuple schema does not match file schema")
	}

	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	tableID := hf.GetID().ToTableID()
	for pageNo := primitives.PageNumber(0); pageNo <= numPages; pageNo++ {
		pid := primitives.NewPageID(tableID, pageNo)

		// Probe read-only first so full pages are not write-locked for
		// nothing. WAIT-DIE upgrades the lock on the second fetch.
		probe, err := pool.GetPage(tid, pid, page.ReadOnly)
		if err != nil {
			return nil, err
		}
		hp, ok := probe.(*HeapPage)
		if !ok {
			return nil, errors.Errorf("page %v is not a heap page", pid)
		}
		if hp.GetNumEmptySlots() == 0 {
			continue
		}

		writable, err := pool.GetPage(tid, pid, page.ReadWrite)
		if err != nil {
			return nil, err
		}
		hp = writable.(*HeapPage)

		if err := hp.InsertTuple(t); err != nil {
			if errors.Is(err, ErrPageFull) {
				// Another transaction took the last slot between the probe
				// and the upgrade. Move on.
				continue
			}
			return nil, err
		}

		if err := pool.MarkDirty(tid, pid); err != nil {
			return nil, err
		}
		return t.RecordID, nil
	}

	return nil, errors.Errorf("failed to insert tuple into file %v", hf.GetID())
}

// DeleteTuple removes the tuple named by its RecordID, fetching the owning
// page read-write through the pool on behalf of tid.
func (hf *HeapFile) DeleteTuple(tid primitives.TransactionID, t *tuple.Tuple, pool PagePool) error {
	if t.RecordID == nil {
		return errors.New("tuple has no record ID")
	}

	pid := t.RecordID.PageID
	if pid.TableID() != hf.GetID().ToTableID() {
		return errors.Errorf("tuple belongs to table %v, not file %v", pid.TableID(), hf.GetID())
	}

	p, err := pool.GetPage(tid, pid, page.ReadWrite)
	if err != nil {
		return err
	}
	hp, ok := p.(*HeapPage)
	if !ok {
		return errors.Errorf("page %v is not a heap page", pid)
	}

	if err := hp.DeleteTuple(t); err != nil {
		return err
	}
	return pool.MarkDirty(tid, pid)
}
