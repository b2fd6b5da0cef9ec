package catalog

import (
	"heapstore/pkg/tuple"
	"heapstore/pkg/types"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// SchemaDoc is the TOML document describing a database's tables.
//
//	[[tables]]
//	name = "users"
//	primary_key = "id"
//
//	  [[tables.columns]]
//	  name = "id"
//	  type = "int"
//
//	  [[tables.columns]]
//	  name = "email"
//	  type = "string"
type SchemaDoc struct {
	Tables []TableDef `toml:"tables"`
}

// TableDef describes one table in a schema document.
type TableDef struct {
	Name       string      `toml:"name"`
	PrimaryKey string      `toml:"primary_key"`
	Columns    []ColumnDef `toml:"columns"`
}

// ColumnDef describes one column: a name and a type keyword (int, string,
// decimal).
type ColumnDef struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// TupleDesc converts the table definition into a schema.
func (td *TableDef) TupleDesc() (*tuple.TupleDescription, error) {
	if len(td.Columns) == 0 {
		return nil, errors.Errorf("table %q has no columns", td.Name)
	}

	fieldTypes := make([]types.Type, len(td.Columns))
	fieldNames := make([]string, len(td.Columns))
	for i, col := range td.Columns {
		ft, ok := types.ParseType(col.Type)
		if !ok {
			return nil, errors.Errorf("table %q column %q: unknown type %q", td.Name, col.Name, col.Type)
		}
		fieldTypes[i] = ft
		fieldNames[i] = col.Name
	}
	return tuple.NewTupleDesc(fieldTypes, fieldNames)
}

// ParseSchema decodes a TOML schema document.
func ParseSchema(data []byte) (*SchemaDoc, error) {
	var doc SchemaDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse schema")
	}
	if len(doc.Tables) == 0 {
		return nil, errors.New("schema defines no tables")
	}
	return &doc, nil
}

// LoadSchema reads a TOML schema file and creates (or reopens) every table
// it defines under the catalog's data directory.
func (c *Catalog) LoadSchema(path string) error {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read schema file %s", path)
	}

	var doc SchemaDoc
	if err := tree.Unmarshal(&doc); err != nil {
		return errors.Wrapf(err, "failed to parse schema file %s", path)
	}
	if len(doc.Tables) == 0 {
		return errors.Errorf("schema file %s defines no tables", path)
	}

	for _, def := range doc.Tables {
		td, err := def.TupleDesc()
		if err != nil {
			return err
		}
		if _, err := c.CreateTable(def.Name, def.PrimaryKey, td); err != nil {
			return err
		}
	}
	return nil
}
