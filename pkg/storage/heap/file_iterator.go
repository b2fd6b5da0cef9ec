package heap

import (
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"

	"github.com/pkg/errors"
)

// HeapFileIterator walks every tuple in a HeapFile in page-then-slot order.
// Pages are fetched through the pool under shared locks on behalf of tid,
// so a scan observes only pages the transaction is allowed to read.
type HeapFileIterator struct {
	file        *HeapFile
	tid         primitives.TransactionID
	pool        PagePool
	currentPage int64
	pageIter    *HeapPageIterator
	isOpen      bool
}

// NewHeapFileIterator creates an iterator over all tuples of the file.
func NewHeapFileIterator(file *HeapFile, tid primitives.TransactionID, pool PagePool) *HeapFileIterator {
	return &HeapFileIterator{
		file:        file,
		tid:         tid,
		pool:        pool,
		currentPage: -1,
	}
}

// Open positions the iterator before the first tuple.
func (it *HeapFileIterator) Open() error {
	it.currentPage = -1
	it.pageIter = nil
	it.isOpen = true
	return it.moveToNextPage()
}

// HasNext reports whether another tuple remains in the file.
func (it *HeapFileIterator) HasNext() (bool, error) {
	if !it.isOpen {
		return false, errors.New("iterator not opened")
	}

	if it.pageIter != nil {
		hasNext, err := it.pageIter.HasNext()
		if err != nil {
			return false, err
		}
		if hasNext {
			return true, nil
		}
	}

	numPages, err := it.file.NumPages()
	if err != nil {
		return false, err
	}
	return it.currentPage+1 < int64(numPages), nil // #nosec G115
}

// Next returns the next tuple, advancing across page boundaries as needed.
func (it *HeapFileIterator) Next() (*tuple.Tuple, error) {
	if !it.isOpen {
		return nil, errors.New("iterator not opened")
	}

	if it.pageIter != nil {
		hasNext, err := it.pageIter.HasNext()
		if err != nil {
			return nil, err
		}
		if hasNext {
			return it.pageIter.Next()
		}
	}

	if err := it.moveToNextPage(); err != nil {
		return nil, err
	}
	if it.pageIter == nil {
		return nil, errors.New("no more tuples")
	}
	return it.pageIter.Next()
}

// Rewind restarts the scan from the first page.
func (it *HeapFileIterator) Rewind() error {
	if !it.isOpen {
		return errors.New("iterator not opened")
	}
	return it.Open()
}

// Close releases iterator resources. Locks taken during the scan are held
// until the transaction completes.
func (it *HeapFileIterator) Close() error {
	if it.pageIter != nil {
		_ = it.pageIter.Close()
		it.pageIter = nil
	}
	it.isOpen = false
	return nil
}

// moveToNextPage advances to the next page that has at least one tuple,
// leaving pageIter nil when the file is exhausted.
func (it *HeapFileIterator) moveToNextPage() error {
	numPages, err := it.file.NumPages()
	if err != nil {
		return err
	}

	tableID := it.file.GetID().ToTableID()
	for {
		it.currentPage++
		if it.currentPage >= int64(numPages) { // #nosec G115
			it.pageIter = nil
			return nil
		}

		pid := primitives.NewPageID(tableID, primitives.PageNumber(it.currentPage)) // #nosec G115
		p, err := it.pool.GetPage(it.tid, pid, page.ReadOnly)
		if err != nil {
			return err
		}
		hp, ok := p.(*HeapPage)
		if !ok {
			return errors.Errorf("page %v is not a heap page", pid)
		}

		pageIter := NewHeapPageIterator(hp)
		if err := pageIter.Open(); err != nil {
			return err
		}

		hasNext, err := pageIter.HasNext()
		if err != nil {
			return err
		}
		if hasNext {
			it.pageIter = pageIter
			return nil
		}
	}
}
