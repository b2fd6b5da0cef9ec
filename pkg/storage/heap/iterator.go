package heap

import (
	"heapstore/pkg/tuple"

	"github.com/pkg/errors"
)

// HeapPageIterator walks the occupied slots of a single HeapPage. Open
// snapshots the page's tuples, so later page mutations do not affect an
// in-flight iteration.
type HeapPageIterator struct {
	page         *HeapPage
	tuples       []*tuple.Tuple
	currentIndex int
}

// NewHeapPageIterator creates an iterator over the given page.
func NewHeapPageIterator(hp *HeapPage) *HeapPageIterator {
	return &HeapPageIterator{
		page:         hp,
		currentIndex: -1,
	}
}

// Open snapshots the page and positions the iterator before the first tuple.
func (it *HeapPageIterator) Open() error {
	tuples, err := it.page.GetTuples()
	if err != nil {
		return err
	}
	it.tuples = tuples
	it.currentIndex = -1
	return nil
}

// HasNext reports whether another tuple remains.
func (it *HeapPageIterator) HasNext() (bool, error) {
	return it.currentIndex+1 < len(it.tuples), nil
}

// Next returns the next tuple in slot order.
func (it *HeapPageIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, errors.New("no more tuples")
	}

	it.currentIndex++
	return it.tuples[it.currentIndex], nil
}

// Rewind resets the iterator to the start of the page.
func (it *HeapPageIterator) Rewind() error {
	return it.Open()
}

// Close releases the snapshot.
func (it *HeapPageIterator) Close() error {
	it.tuples = nil
	it.currentIndex = -1
	return nil
}
