// Package table offers a tuple-level view over one table: inserts, deletes,
// and filtered scans, all executed through the buffer pool under the
// caller's transaction.
package table

import (
	"heapstore/pkg/catalog"
	"heapstore/pkg/memory"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/heap"
	"heapstore/pkg/tuple"

	"github.com/pkg/errors"
)

// Table binds a registered table to the buffer pool.
type Table struct {
	info  *catalog.TableInfo
	store *memory.PageStore
}

// NewTable creates a tuple-level view of the given table.
func NewTable(info *catalog.TableInfo, store *memory.PageStore) (*Table, error) {
	if info == nil {
		return nil, errors.New("table info cannot be nil")
	}
	if store == nil {
		return nil, errors.New("page store cannot be nil")
	}
	if _, ok := info.File.(*heap.HeapFile); !ok {
		return nil, errors.Errorf("table %q is not heap-backed", info.Name)
	}
	return &Table{info: info, store: store}, nil
}

// Name returns the table's registered name.
func (t *Table) Name() string {
	return t.info.Name
}

// ID returns the table's identity.
func (t *Table) ID() primitives.TableID {
	return t.info.ID()
}

// TupleDesc returns the table's schema.
func (t *Table) TupleDesc() *tuple.TupleDescription {
	return t.info.TupleDesc
}

// InsertTuple adds one tuple on behalf of tid and returns its record ID.
func (t *Table) InsertTuple(tid primitives.TransactionID, tup *tuple.Tuple) (*tuple.RecordID, error) {
	return t.store.InsertTuple(tid, t.ID(), tup)
}

// InsertMany adds the tuples in order, stopping at the first failure.
// Already-inserted tuples are not rolled back here; aborting tid undoes
// them.
func (t *Table) InsertMany(tid primitives.TransactionID, tups []*tuple.Tuple) error {
	for i, tup := range tups {
		if _, err := t.InsertTuple(tid, tup); err != nil {
			return errors.Wrapf(err, "insert %d of %d failed", i+1, len(tups))
		}
	}
	return nil
}

// DeleteTuple removes a previously fetched tuple on behalf of tid.
func (t *Table) DeleteTuple(tid primitives.TransactionID, tup *tuple.Tuple) error {
	return t.store.DeleteTuple(tid, tup)
}

// Scan returns an iterator over the table's tuples for tid. Filters and a
// projection may be attached before Open.
func (t *Table) Scan(tid primitives.TransactionID) *Iterator {
	hf := t.info.File.(*heap.HeapFile)
	return &Iterator{
		inner:   heap.NewHeapFileIterator(hf, tid, t.store),
		srcDesc: t.info.TupleDesc,
	}
}
