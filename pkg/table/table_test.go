package table

import (
	"testing"

	"heapstore/pkg/catalog"
	"heapstore/pkg/memory"
	"heapstore/pkg/primitives"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accountSchema(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType, types.IntType},
		[]string{"id", "owner", "balance"})
	require.NoError(t, err)
	return td
}

func accountTuple(t *testing.T, td *tuple.TupleDescription, id int32, owner string, balance int32) *tuple.Tuple {
	t.Helper()
	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(id)))
	require.NoError(t, tup.SetField(1, types.NewStringField(owner)))
	require.NoError(t, tup.SetField(2, types.NewIntField(balance)))
	return tup
}

func newTestTable(t *testing.T) *Table {
	t.Helper()

	cat := catalog.NewCatalog(primitives.Filepath(t.TempDir()))
	t.Cleanup(func() { cat.Close() })

	info, err := cat.CreateTable("accounts", "id", accountSchema(t))
	require.NoError(t, err)

	store := memory.NewPageStore(cat, 8)
	tbl, err := NewTable(info, store)
	require.NoError(t, err)
	return tbl
}

func collect(t *testing.T, it *Iterator) []*tuple.Tuple {
	t.Helper()

	var out []*tuple.Tuple
	for {
		hasNext, err := it.HasNext()
		require.NoError(t, err)
		if !hasNext {
			return out
		}
		tup, err := it.Next()
		require.NoError(t, err)
		out = append(out, tup)
	}
}

func intFieldValue(t *testing.T, tup *tuple.Tuple, i int) int32 {
	t.Helper()
	f, err := tup.GetField(i)
	require.NoError(t, err)
	return f.(*types.IntField).Value
}

func TestTable_InsertAndScan(t *testing.T) {
	tbl := newTestTable(t)
	td := tbl.TupleDesc()
	tid := primitives.NewTransactionID()

	require.NoError(t, tbl.InsertMany(tid, []*tuple.Tuple{
		accountTuple(t, td, 1, "alice", 100),
		accountTuple(t, td, 2, "bob", 250),
		accountTuple(t, td, 3, "carol", 50),
	}))

	it := tbl.Scan(tid)
	require.NoError(t, it.Open())
	defer it.Close()

	rows := collect(t, it)
	require.Len(t, rows, 3)
	assert.Equal(t, int32(1), intFieldValue(t, rows[0], 0))
	assert.True(t, rows[0].TupleDesc.Equals(td))
}

func TestTable_ScanEmpty(t *testing.T) {
	tbl := newTestTable(t)
	it := tbl.Scan(primitives.NewTransactionID())
	require.NoError(t, it.Open())
	defer it.Close()

	assert.Empty(t, collect(t, it))
}

func TestIterator_Filter(t *testing.T) {
	tbl := newTestTable(t)
	td := tbl.TupleDesc()
	tid := primitives.NewTransactionID()

	for i := int32(1); i <= 10; i++ {
		_, err := tbl.InsertTuple(tid, accountTuple(t, td, i, "u", i*10))
		require.NoError(t, err)
	}

	it := tbl.Scan(tid).Filter(2, primitives.GreaterThan, types.NewIntField(70))
	require.NoError(t, it.Open())
	defer it.Close()

	rows := collect(t, it)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Greater(t, intFieldValue(t, row, 2), int32(70))
	}
}

func TestIterator_FilterByName(t *testing.T) {
	tbl := newTestTable(t)
	td := tbl.TupleDesc()
	tid := primitives.NewTransactionID()

	require.NoError(t, tbl.InsertMany(tid, []*tuple.Tuple{
		accountTuple(t, td, 1, "alice", 100),
		accountTuple(t, td, 2, "bob", 250),
	}))

	it, err := tbl.Scan(tid).FilterByName("owner", primitives.Equals, types.NewStringField("bob"))
	require.NoError(t, err)
	require.NoError(t, it.Open())
	defer it.Close()

	rows := collect(t, it)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(2), intFieldValue(t, rows[0], 0))
}

func TestIterator_FilterByName_UnknownColumn(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Scan(primitives.NewTransactionID()).
		FilterByName("ghost", primitives.Equals, types.NewIntField(1))
	assert.Error(t, err)
}

func TestIterator_ConjunctiveFilters(t *testing.T) {
	tbl := newTestTable(t)
	td := tbl.TupleDesc()
	tid := primitives.NewTransactionID()

	for i := int32(1); i <= 10; i++ {
		_, err := tbl.InsertTuple(tid, accountTuple(t, td, i, "u", i*10))
		require.NoError(t, err)
	}

	it := tbl.Scan(tid).
		Filter(2, primitives.GreaterThanOrEqual, types.NewIntField(30)).
		Filter(2, primitives.LessThan, types.NewIntField(60))
	require.NoError(t, it.Open())
	defer it.Close()

	rows := collect(t, it)
	assert.Len(t, rows, 3) // balances 30, 40, 50
}

func TestIterator_Project(t *testing.T) {
	tbl := newTestTable(t)
	td := tbl.TupleDesc()
	tid := primitives.NewTransactionID()

	_, err := tbl.InsertTuple(tid, accountTuple(t, td, 1, "alice", 100))
	require.NoError(t, err)

	it := tbl.Scan(tid).Project(2, 0)
	require.NoError(t, it.Open())
	defer it.Close()

	require.Equal(t, 2, it.TupleDesc().NumFields())
	name, err := it.TupleDesc().GetFieldName(0)
	require.NoError(t, err)
	assert.Equal(t, "balance", name)

	rows := collect(t, it)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(100), intFieldValue(t, rows[0], 0))
	assert.Equal(t, int32(1), intFieldValue(t, rows[0], 1))
}

func TestIterator_ProjectBadIndex(t *testing.T) {
	tbl := newTestTable(t)
	it := tbl.Scan(primitives.NewTransactionID()).Project(99)
	assert.Error(t, it.Open())
}

func TestIterator_FilterBadIndex(t *testing.T) {
	tbl := newTestTable(t)
	it := tbl.Scan(primitives.NewTransactionID()).
		Filter(99, primitives.Equals, types.NewIntField(1))
	assert.Error(t, it.Open())
}

func TestIterator_Rewind(t *testing.T) {
	tbl := newTestTable(t)
	td := tbl.TupleDesc()
	tid := primitives.NewTransactionID()

	require.NoError(t, tbl.InsertMany(tid, []*tuple.Tuple{
		accountTuple(t, td, 1, "a", 10),
		accountTuple(t, td, 2, "b", 20),
	}))

	it := tbl.Scan(tid)
	require.NoError(t, it.Open())
	defer it.Close()

	require.Len(t, collect(t, it), 2)
	require.NoError(t, it.Rewind())
	assert.Len(t, collect(t, it), 2)
}

func TestIterator_Limit(t *testing.T) {
	tbl := newTestTable(t)
	td := tbl.TupleDesc()
	tid := primitives.NewTransactionID()

	for i := int32(1); i <= 10; i++ {
		_, err := tbl.InsertTuple(tid, accountTuple(t, td, i, "u", i))
		require.NoError(t, err)
	}

	it := tbl.Scan(tid).Limit(4)
	require.NoError(t, it.Open())
	defer it.Close()

	require.Len(t, collect(t, it), 4)

	// rewind resets the cap
	require.NoError(t, it.Rewind())
	assert.Len(t, collect(t, it), 4)
}

func TestTable_DeleteThenScan(t *testing.T) {
	tbl := newTestTable(t)
	td := tbl.TupleDesc()
	tid := primitives.NewTransactionID()

	keep := accountTuple(t, td, 1, "a", 10)
	drop := accountTuple(t, td, 2, "b", 20)
	require.NoError(t, tbl.InsertMany(tid, []*tuple.Tuple{keep, drop}))
	require.NoError(t, tbl.DeleteTuple(tid, drop))

	it := tbl.Scan(tid)
	require.NoError(t, it.Open())
	defer it.Close()

	rows := collect(t, it)
	require.Len(t, rows, 1)
	assert.Equal(t, int32(1), intFieldValue(t, rows[0], 0))
}

func TestIterator_UseBeforeOpen(t *testing.T) {
	tbl := newTestTable(t)
	it := tbl.Scan(primitives.NewTransactionID())

	_, err := it.HasNext()
	assert.Error(t, err)
	assert.Error(t, it.Rewind())
}
