package table

import (
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/heap"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"

	"github.com/pkg/errors"
)

// condition is one attached filter: compare a field against a constant.
type condition struct {
	fieldIndex int
	op         primitives.Predicate
	operand    types.Field
}

// Iterator is a filtered, optionally projected scan over one table.
// Configure it with Filter and Project before Open; results come out in
// page-then-slot order.
type Iterator struct {
	inner      *heap.HeapFileIterator
	srcDesc    *tuple.TupleDescription
	conditions []condition
	projection []int
	limit      int
	emitted    int
	outDesc    *tuple.TupleDescription
	pending    *tuple.Tuple
	isOpen     bool
}

// Filter adds a condition the scanned tuples must satisfy. Multiple
// conditions are conjunctive. Returns the iterator for chaining.
func (it *Iterator) Filter(fieldIndex int, op primitives.Predicate, operand types.Field) *Iterator {
	it.conditions = append(it.conditions, condition{fieldIndex: fieldIndex, op: op, operand: operand})
	return it
}

// FilterByName is Filter with the column addressed by name.
func (it *Iterator) FilterByName(column string, op primitives.Predicate, operand types.Field) (*Iterator, error) {
	idx, err := it.srcDesc.NameToIndex(column)
	if err != nil {
		return nil, err
	}
	return it.Filter(int(idx), op, operand), nil
}

// Limit caps how many tuples the scan produces. Zero means unlimited.
// Returns the iterator for chaining.
func (it *Iterator) Limit(n int) *Iterator {
	it.limit = n
	return it
}

// Project narrows the output to the given columns, in the given order.
// Returns the iterator for chaining.
func (it *Iterator) Project(fieldIndexes ...int) *Iterator {
	it.projection = fieldIndexes
	return it
}

// TupleDesc returns the schema of the tuples this iterator produces. Valid
// after Open.
func (it *Iterator) TupleDesc() *tuple.TupleDescription {
	return it.outDesc
}

// Open validates the configuration and starts the scan.
func (it *Iterator) Open() error {
	for _, c := range it.conditions {
		if c.fieldIndex < 0 || c.fieldIndex >= it.srcDesc.NumFields() {
			return errors.Errorf("filter field index %d out of bounds (%d fields)",
				c.fieldIndex, it.srcDesc.NumFields())
		}
		if c.operand == nil {
			return errors.Errorf("filter on field %d has nil operand", c.fieldIndex)
		}
	}

	outDesc, err := it.buildOutputDesc()
	if err != nil {
		return err
	}
	it.outDesc = outDesc

	if err := it.inner.Open(); err != nil {
		return err
	}
	it.isOpen = true
	it.pending = nil
	it.emitted = 0
	return nil
}

func (it *Iterator) buildOutputDesc() (*tuple.TupleDescription, error) {
	if it.projection == nil {
		return it.srcDesc, nil
	}
	if len(it.projection) == 0 {
		return nil, errors.New("projection must name at least one column")
	}

	fieldTypes := make([]types.Type, len(it.projection))
	fieldNames := make([]string, len(it.projection))
	for i, idx := range it.projection {
		ft, err := it.srcDesc.TypeAtIndex(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "projection column %d", idx)
		}
		name, err := it.srcDesc.GetFieldName(idx)
		if err != nil {
			return nil, errors.Wrapf(err, "projection column %d", idx)
		}
		fieldTypes[i] = ft
		fieldNames[i] = name
	}
	return tuple.NewTupleDesc(fieldTypes, fieldNames)
}

// HasNext reports whether another matching tuple remains.
func (it *Iterator) HasNext() (bool, error) {
	if !it.isOpen {
		return false, errors.New("iterator not opened")
	}
	if it.limit > 0 && it.emitted >= it.limit {
		return false, nil
	}
	if it.pending != nil {
		return true, nil
	}

	next, err := it.fetchMatching()
	if err != nil {
		return false, err
	}
	it.pending = next
	return next != nil, nil
}

// Next returns the next matching tuple.
func (it *Iterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, errors.New("no more tuples")
	}

	out := it.pending
	it.pending = nil
	it.emitted++
	return out, nil
}

// fetchMatching advances the underlying scan to the next tuple passing
// every condition, applying the projection. Nil means exhausted.
func (it *Iterator) fetchMatching() (*tuple.Tuple, error) {
	for {
		hasNext, err := it.inner.HasNext()
		if err != nil {
			return nil, err
		}
		if !hasNext {
			return nil, nil
		}

		t, err := it.inner.Next()
		if err != nil {
			return nil, err
		}

		matches, err := it.evaluate(t)
		if err != nil {
			return nil, err
		}
		if !matches {
			continue
		}
		return it.applyProjection(t)
	}
}

func (it *Iterator) evaluate(t *tuple.Tuple) (bool, error) {
	for _, c := range it.conditions {
		f, err := t.GetField(c.fieldIndex)
		if err != nil {
			return false, err
		}
		ok, err := f.Compare(c.op, c.operand)
		if err != nil {
			return false, errors.Wrapf(err, "filter on field %d", c.fieldIndex)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (it *Iterator) applyProjection(t *tuple.Tuple) (*tuple.Tuple, error) {
	if it.projection == nil {
		return t, nil
	}

	out := tuple.NewTuple(it.outDesc)
	for i, idx := range it.projection {
		f, err := t.GetField(idx)
		if err != nil {
			return nil, err
		}
		if err := out.SetField(i, f); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Rewind restarts the scan.
func (it *Iterator) Rewind() error {
	if !it.isOpen {
		return errors.New("iterator not opened")
	}
	it.pending = nil
	it.emitted = 0
	return it.inner.Rewind()
}

// Close ends the scan.
func (it *Iterator) Close() error {
	it.isOpen = false
	it.pending = nil
	return it.inner.Close()
}
