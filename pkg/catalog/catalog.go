// Package catalog tracks the tables of a database: their names, schemas,
// and backing heap files. It is the buffer pool's source of truth for
// resolving a table ID to a file.
package catalog

import (
	"sync"

	"heapstore/pkg/logging"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/heap"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"

	"github.com/pkg/errors"
)

// TableInfo holds the metadata of one registered table.
type TableInfo struct {
	File       page.DbFile
	Name       string
	PrimaryKey string
	TupleDesc  *tuple.TupleDescription
}

// ID returns the table's identity, derived from its file.
func (ti *TableInfo) ID() primitives.TableID {
	return ti.File.GetID().ToTableID()
}

// Catalog is the in-memory registry of tables, addressable by name and by
// table ID. Adding a table under an existing name or ID replaces the old
// registration.
type Catalog struct {
	dataDir     primitives.Filepath
	nameToTable map[string]*TableInfo
	idToTable   map[primitives.TableID]*TableInfo
	mutex       sync.RWMutex
}

// NewCatalog creates an empty catalog whose table files live under dataDir.
func NewCatalog(dataDir primitives.Filepath) *Catalog {
	return &Catalog{
		dataDir:     dataDir,
		nameToTable: make(map[string]*TableInfo),
		idToTable:   make(map[primitives.TableID]*TableInfo),
	}
}

// AddTable registers an already-open file under the given name.
func (c *Catalog) AddTable(f page.DbFile, name, primaryKey string) (*TableInfo, error) {
	if f == nil {
		return nil, errors.New("file cannot be nil")
	}
	if name == "" {
		return nil, errors.New("table name cannot be empty")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	info := &TableInfo{
		File:       f,
		Name:       name,
		PrimaryKey: primaryKey,
		TupleDesc:  f.GetTupleDesc(),
	}

	if old, ok := c.nameToTable[name]; ok {
		delete(c.idToTable, old.ID())
	}
	if old, ok := c.idToTable[info.ID()]; ok {
		delete(c.nameToTable, old.Name)
	}

	c.nameToTable[name] = info
	c.idToTable[info.ID()] = info
	logging.WithTable(name).Debugf("registered table id=%v", info.ID())
	return info, nil
}

// CreateTable opens (creating if absent) a heap file for the schema under
// the catalog's data directory and registers it.
func (c *Catalog) CreateTable(name, primaryKey string, td *tuple.TupleDescription) (*TableInfo, error) {
	if name == "" {
		return nil, errors.New("table name cannot be empty")
	}
	if err := c.dataDir.MkdirAll(0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	hf, err := heap.NewHeapFile(c.dataDir.Join(name+".dat"), td)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open heap file for table %q", name)
	}
	return c.AddTable(hf, name, primaryKey)
}

// GetTable returns the metadata of the named table.
func (c *Catalog) GetTable(name string) (*TableInfo, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	info, ok := c.nameToTable[name]
	if !ok {
		return nil, errors.Errorf("table %q not found", name)
	}
	return info, nil
}

// GetTableID returns the ID of the named table.
func (c *Catalog) GetTableID(name string) (primitives.TableID, error) {
	info, err := c.GetTable(name)
	if err != nil {
		return primitives.InvalidTableID, err
	}
	return info.ID(), nil
}

// GetTableName returns the name registered for the given table ID.
func (c *Catalog) GetTableName(tableID primitives.TableID) (string, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	info, ok := c.idToTable[tableID]
	if !ok {
		return "", errors.Errorf("table %v not found", tableID)
	}
	return info.Name, nil
}

// GetTupleDesc returns the schema of the given table.
func (c *Catalog) GetTupleDesc(tableID primitives.TableID) (*tuple.TupleDescription, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	info, ok := c.idToTable[tableID]
	if !ok {
		return nil, errors.Errorf("table %v not found", tableID)
	}
	return info.TupleDesc, nil
}

// GetDbFile returns the file backing the given table. This satisfies the
// buffer pool's resolver interface.
func (c *Catalog) GetDbFile(tableID primitives.TableID) (page.DbFile, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	info, ok := c.idToTable[tableID]
	if !ok {
		return nil, errors.Errorf("table %v not found", tableID)
	}
	return info.File, nil
}

// TableNames returns the names of all registered tables.
func (c *Catalog) TableNames() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	names := make([]string, 0, len(c.nameToTable))
	for name := range c.nameToTable {
		names = append(names, name)
	}
	return names
}

// Close closes every registered table file and empties the catalog.
func (c *Catalog) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var firstErr error
	for _, info := range c.idToTable {
		if err := info.File.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.nameToTable = make(map[string]*TableInfo)
	c.idToTable = make(map[primitives.TableID]*TableInfo)
	return firstErr
}
