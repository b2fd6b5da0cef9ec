// Package database wires the engine together: catalog, buffer pool, and
// transaction registry behind one handle.
package database

import (
	"heapstore/pkg/catalog"
	"heapstore/pkg/concurrency/transaction"
	"heapstore/pkg/config"
	"heapstore/pkg/logging"
	"heapstore/pkg/memory"
	"heapstore/pkg/primitives"
	"heapstore/pkg/table"
	"heapstore/pkg/tuple"

	"github.com/pkg/errors"
)

// Database is the top-level engine handle. All data access flows through
// transactions begun here and pages fetched through its buffer pool.
type Database struct {
	cfg      config.Config
	catalog  *catalog.Catalog
	store    *memory.PageStore
	registry *transaction.Registry
}

// Open starts an engine over cfg's data directory, loading the configured
// schema file when one is set.
func Open(cfg config.Config) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir := primitives.Filepath(cfg.DataDir)
	if err := dataDir.MkdirAll(0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	cat := catalog.NewCatalog(dataDir)
	if cfg.SchemaPath != "" {
		if err := cat.LoadSchema(cfg.SchemaPath); err != nil {
			cat.Close()
			return nil, err
		}
	}

	db := &Database{
		cfg:      cfg,
		catalog:  cat,
		store:    memory.NewPageStore(cat, cfg.PoolPages),
		registry: transaction.NewRegistry(),
	}
	logging.Infof("database opened: data_dir=%s pool_pages=%d tables=%d",
		cfg.DataDir, cfg.PoolPages, len(cat.TableNames()))
	return db, nil
}

// Begin starts a new transaction.
func (db *Database) Begin() *transaction.Transaction {
	return db.registry.Begin()
}

// Commit makes txn's changes durable and releases its resources. Fails if
// txn already reached a terminal state. When the flush itself fails the
// transaction is aborted instead: before-images are restored, locks are
// released, and the flush error is returned.
func (db *Database) Commit(txn *transaction.Transaction) error {
	if txn == nil {
		return errors.New("transaction cannot be nil")
	}
	if !txn.IsActive() {
		return errors.Errorf("transaction %s is already %s", txn.ID, txn.Status())
	}
	if err := db.store.CommitTransaction(txn.ID); err != nil {
		if abortErr := db.store.AbortTransaction(txn.ID); abortErr != nil {
			return errors.Wrapf(abortErr, "commit of %s failed (%v) and rollback failed", txn.ID, err)
		}
		if markErr := txn.MarkAborted(); markErr != nil {
			return markErr
		}
		db.registry.Remove(txn.ID)
		return errors.Wrapf(err, "commit of %s failed, transaction aborted", txn.ID)
	}
	if err := txn.MarkCommitted(); err != nil {
		return err
	}
	db.registry.Remove(txn.ID)
	return nil
}

// Abort discards txn's changes and releases its resources. Fails if txn
// already reached a terminal state.
func (db *Database) Abort(txn *transaction.Transaction) error {
	if txn == nil {
		return errors.New("transaction cannot be nil")
	}
	if err := txn.MarkAborted(); err != nil {
		return err
	}
	if err := db.store.AbortTransaction(txn.ID); err != nil {
		return err
	}
	db.registry.Remove(txn.ID)
	return nil
}

// CreateTable creates (or reopens) a table under the data directory and
// returns its tuple-level view.
func (db *Database) CreateTable(name, primaryKey string, td *tuple.TupleDescription) (*table.Table, error) {
	info, err := db.catalog.CreateTable(name, primaryKey, td)
	if err != nil {
		return nil, err
	}
	return table.NewTable(info, db.store)
}

// GetTable returns the tuple-level view of a registered table.
func (db *Database) GetTable(name string) (*table.Table, error) {
	info, err := db.catalog.GetTable(name)
	if err != nil {
		return nil, err
	}
	return table.NewTable(info, db.store)
}

// Catalog exposes the table registry.
func (db *Database) Catalog() *catalog.Catalog {
	return db.catalog
}

// Store exposes the buffer pool.
func (db *Database) Store() *memory.PageStore {
	return db.store
}

// ActiveTransactions returns how many transactions are in flight.
func (db *Database) ActiveTransactions() int {
	return db.registry.ActiveCount()
}

// Close flushes every dirty page and closes all table files. In-flight
// transactions are not waited for; finish them first.
func (db *Database) Close() error {
	if err := db.store.FlushAllPages(); err != nil {
		return errors.Wrap(err, "failed to flush pages on close")
	}
	if err := db.catalog.Close(); err != nil {
		return errors.Wrap(err, "failed to close catalog")
	}
	logging.Infof("database closed: data_dir=%s", db.cfg.DataDir)
	return nil
}
