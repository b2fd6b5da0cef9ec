package database

import (
	"os"
	"path/filepath"
	"testing"

	"heapstore/pkg/concurrency/lock"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/config"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.PoolPages = 8
	return cfg
}

func openTestDB(t *testing.T, cfg config.Config) *Database {
	t.Helper()
	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func itemSchema(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "name"})
	require.NoError(t, err)
	return td
}

func itemTuple(t *testing.T, td *tuple.TupleDescription, id int32, name string) *tuple.Tuple {
	t.Helper()
	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(id)))
	require.NoError(t, tup.SetField(1, types.NewStringField(name)))
	return tup
}

func countRows(t *testing.T, db *Database, tableName string) int {
	t.Helper()

	txn := db.Begin()
	defer db.Commit(txn)

	tbl, err := db.GetTable(tableName)
	require.NoError(t, err)

	it := tbl.Scan(txn.ID)
	require.NoError(t, it.Open())
	defer it.Close()

	count := 0
	for {
		hasNext, err := it.HasNext()
		require.NoError(t, err)
		if !hasNext {
			return count
		}
		_, err = it.Next()
		require.NoError(t, err)
		count++
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.PoolPages = 0
	_, err := Open(cfg)
	assert.Error(t, err)
}

func TestOpen_WithSchemaFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.SchemaPath = filepath.Join(t.TempDir(), "schema.toml")
	require.NoError(t, os.WriteFile(cfg.SchemaPath, []byte(`
[[tables]]
name = "items"
primary_key = "id"

  [[tables.columns]]
  name = "id"
  type = "int"

  [[tables.columns]]
  name = "name"
  type = "string"
`), 0o600))

	db := openTestDB(t, cfg)
	_, err := db.GetTable("items")
	assert.NoError(t, err)
}

func TestOpen_CreatesMissingDataDir(t *testing.T) {
	cfg := config.Default()
	cfg.PoolPages = 8
	cfg.DataDir = filepath.Join(t.TempDir(), "nested", "data")

	db := openTestDB(t, cfg)
	td := itemSchema(t)

	tbl, err := db.CreateTable("items", "id", td)
	require.NoError(t, err)

	txn := db.Begin()
	_, err = tbl.InsertTuple(txn.ID, itemTuple(t, td, 1, "widget"))
	require.NoError(t, err)
	require.NoError(t, db.Commit(txn))
}

func TestGetTable_Unknown(t *testing.T) {
	db := openTestDB(t, testConfig(t))
	_, err := db.GetTable("missing")
	assert.Error(t, err)
}

func TestCommit_MakesChangesDurable(t *testing.T) {
	cfg := testConfig(t)
	td := itemSchema(t)

	db, err := Open(cfg)
	require.NoError(t, err)

	tbl, err := db.CreateTable("items", "id", td)
	require.NoError(t, err)

	txn := db.Begin()
	_, err = tbl.InsertTuple(txn.ID, itemTuple(t, td, 1, "widget"))
	require.NoError(t, err)
	require.NoError(t, db.Commit(txn))
	require.NoError(t, db.Close())

	// reopen the same data directory and read it back
	db2 := openTestDB(t, cfg)
	_, err = db2.CreateTable("items", "id", td)
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db2, "items"))
}

func TestAbort_DiscardsChanges(t *testing.T) {
	db := openTestDB(t, testConfig(t))
	td := itemSchema(t)

	tbl, err := db.CreateTable("items", "id", td)
	require.NoError(t, err)

	txn := db.Begin()
	_, err = tbl.InsertTuple(txn.ID, itemTuple(t, td, 1, "widget"))
	require.NoError(t, err)
	require.NoError(t, db.Abort(txn))

	assert.Equal(t, 0, countRows(t, db, "items"))
}

func TestCommit_FlushFailureAbortsTransaction(t *testing.T) {
	db := openTestDB(t, testConfig(t))
	td := itemSchema(t)

	tbl, err := db.CreateTable("items", "id", td)
	require.NoError(t, err)

	txn := db.Begin()
	rid, err := tbl.InsertTuple(txn.ID, itemTuple(t, td, 1, "widget"))
	require.NoError(t, err)

	// close the heap file behind the pool so the commit flush fails
	info, err := db.Catalog().GetTable("items")
	require.NoError(t, err)
	require.NoError(t, info.File.Close())

	err = db.Commit(txn)
	require.Error(t, err)

	// the failed commit ends as an abort: terminal state is Aborted, the
	// locks are gone, and the registry no longer tracks the transaction
	assert.Equal(t, transaction.Aborted, txn.Status())
	assert.Empty(t, db.Store().LockManager().PagesLockedBy(txn.ID))
	assert.Equal(t, 0, db.ActiveTransactions())

	// the page it touched was restored in memory and is free to lock
	next := db.Begin()
	_, err = db.Store().GetPage(next.ID, rid.PageID, page.ReadWrite)
	require.NoError(t, err)
	require.NoError(t, db.Abort(next))
}

func TestCommit_TwiceFails(t *testing.T) {
	db := openTestDB(t, testConfig(t))

	txn := db.Begin()
	require.NoError(t, db.Commit(txn))
	assert.Error(t, db.Commit(txn))
	assert.Error(t, db.Abort(txn))
}

func TestBegin_TracksActiveTransactions(t *testing.T) {
	db := openTestDB(t, testConfig(t))

	txn := db.Begin()
	assert.Equal(t, 1, db.ActiveTransactions())
	require.NoError(t, db.Abort(txn))
	assert.Equal(t, 0, db.ActiveTransactions())
}

func TestConflict_YoungerAbortsAndRetries(t *testing.T) {
	db := openTestDB(t, testConfig(t))
	td := itemSchema(t)

	tbl, err := db.CreateTable("items", "id", td)
	require.NoError(t, err)

	// seed one committed row so both transactions touch the same page
	seed := db.Begin()
	rid, err := tbl.InsertTuple(seed.ID, itemTuple(t, td, 1, "seed"))
	require.NoError(t, err)
	require.NoError(t, db.Commit(seed))

	older := db.Begin()
	younger := db.Begin()

	_, err = db.Store().GetPage(older.ID, rid.PageID, page.ReadWrite)
	require.NoError(t, err)

	// the younger conflicting transaction is killed, aborts, and retries
	// with a fresh (older-than-nothing-it-meets) transaction after the
	// holder commits
	_, err = db.Store().GetPage(younger.ID, rid.PageID, page.ReadOnly)
	require.True(t, errors.Is(err, lock.ErrTransactionAborted))
	require.NoError(t, db.Abort(younger))

	require.NoError(t, db.Commit(older))

	retry := db.Begin()
	_, err = db.Store().GetPage(retry.ID, rid.PageID, page.ReadOnly)
	require.NoError(t, err)
	require.NoError(t, db.Commit(retry))
}
