package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/heap"
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userSchema(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "email"})
	require.NoError(t, err)
	return td
}

func tempCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog(primitives.Filepath(t.TempDir()))
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCreateTable(t *testing.T) {
	c := tempCatalog(t)

	info, err := c.CreateTable("users", "id", userSchema(t))
	require.NoError(t, err)
	assert.Equal(t, "users", info.Name)
	assert.Equal(t, "id", info.PrimaryKey)
	assert.True(t, info.ID().IsValid())

	id, err := c.GetTableID("users")
	require.NoError(t, err)
	assert.Equal(t, info.ID(), id)

	name, err := c.GetTableName(id)
	require.NoError(t, err)
	assert.Equal(t, "users", name)

	td, err := c.GetTupleDesc(id)
	require.NoError(t, err)
	assert.True(t, td.Equals(userSchema(t)))

	f, err := c.GetDbFile(id)
	require.NoError(t, err)
	assert.IsType(t, &heap.HeapFile{}, f)
}

func TestCreateTable_EmptyName(t *testing.T) {
	c := tempCatalog(t)
	_, err := c.CreateTable("", "id", userSchema(t))
	assert.Error(t, err)
}

func TestAddTable_NilFile(t *testing.T) {
	c := tempCatalog(t)
	_, err := c.AddTable(nil, "users", "id")
	assert.Error(t, err)
}

func TestLookup_UnknownTable(t *testing.T) {
	c := tempCatalog(t)

	_, err := c.GetTableID("ghost")
	assert.Error(t, err)
	_, err = c.GetTableName(primitives.TableID(12345))
	assert.Error(t, err)
	_, err = c.GetDbFile(primitives.TableID(12345))
	assert.Error(t, err)
}

func TestAddTable_SameNameReplaces(t *testing.T) {
	c := tempCatalog(t)

	first, err := c.CreateTable("users", "id", userSchema(t))
	require.NoError(t, err)

	otherPath := primitives.Filepath(filepath.Join(t.TempDir(), "users_v2.dat"))
	hf, err := heap.NewHeapFile(otherPath, userSchema(t))
	require.NoError(t, err)

	second, err := c.AddTable(hf, "users", "id")
	require.NoError(t, err)
	require.NotEqual(t, first.ID(), second.ID())

	id, err := c.GetTableID("users")
	require.NoError(t, err)
	assert.Equal(t, second.ID(), id)

	// the replaced registration is fully gone
	_, err = c.GetTableName(first.ID())
	assert.Error(t, err)
}

func TestTableNames(t *testing.T) {
	c := tempCatalog(t)
	_, err := c.CreateTable("users", "id", userSchema(t))
	require.NoError(t, err)
	_, err = c.CreateTable("orders", "id", userSchema(t))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"users", "orders"}, c.TableNames())
}

func TestClose_EmptiesCatalog(t *testing.T) {
	c := NewCatalog(primitives.Filepath(t.TempDir()))
	_, err := c.CreateTable("users", "id", userSchema(t))
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Empty(t, c.TableNames())
}

const testSchemaDoc = `
[[tables]]
name = "users"
primary_key = "id"

  [[tables.columns]]
  name = "id"
  type = "int"

  [[tables.columns]]
  name = "email"
  type = "string"

[[tables]]
name = "balances"
primary_key = "user_id"

  [[tables.columns]]
  name = "user_id"
  type = "int"

  [[tables.columns]]
  name = "amount"
  type = "decimal"
`

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.toml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSchemaDoc), 0o600))

	c := NewCatalog(primitives.Filepath(filepath.Join(dir, "data")))
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.LoadSchema(schemaPath))
	assert.ElementsMatch(t, []string{"users", "balances"}, c.TableNames())

	id, err := c.GetTableID("balances")
	require.NoError(t, err)
	td, err := c.GetTupleDesc(id)
	require.NoError(t, err)
	require.Equal(t, 2, td.NumFields())

	ft, err := td.TypeAtIndex(1)
	require.NoError(t, err)
	assert.Equal(t, types.DecimalType, ft)

	// table files were created under the data directory
	assert.FileExists(t, filepath.Join(dir, "data", "users.dat"))
	assert.FileExists(t, filepath.Join(dir, "data", "balances.dat"))
}

func TestLoadSchema_MissingFile(t *testing.T) {
	c := tempCatalog(t)
	assert.Error(t, c.LoadSchema(filepath.Join(t.TempDir(), "absent.toml")))
}

func TestParseSchema_Errors(t *testing.T) {
	_, err := ParseSchema([]byte("tables = 42"))
	assert.Error(t, err)

	_, err = ParseSchema([]byte(""))
	assert.Error(t, err, "no tables")

	doc, err := ParseSchema([]byte("[[tables]]\nname = \"t\"\n"))
	require.NoError(t, err)
	_, err = doc.Tables[0].TupleDesc()
	assert.Error(t, err, "no columns")
}

func TestParseSchema_BadColumnType(t *testing.T) {
	doc, err := ParseSchema([]byte(`
[[tables]]
name = "t"

  [[tables.columns]]
  name = "c"
  type = "blob"
`))
	require.NoError(t, err)
	_, err = doc.Tables[0].TupleDesc()
	assert.Error(t, err)
}
