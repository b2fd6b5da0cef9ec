package memory

import (
	"sync"

	"heapstore/pkg/concurrency/lock"
	"heapstore/pkg/logging"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/heap"
	"heapstore/pkg/storage/page"
	"heapstore/pkg/tuple"

	"github.com/pkg/errors"
)

const (
	// DefaultPoolPages is the buffer pool capacity used when the
	// configuration does not specify one.
	DefaultPoolPages = 50
)

// ErrPoolFull is returned when the pool is at capacity and every resident
// page is dirty or in active use, so nothing can be evicted. Committing or
// aborting a transaction frees pages.
var ErrPoolFull = errors.New("memory: buffer pool full")

// FileResolver maps table IDs to their backing files. Implemented by the
// catalog.
type FileResolver interface {
	GetDbFile(tableID primitives.TableID) (page.DbFile, error)
}

// PageStore is the buffer pool: every page access by every transaction
// goes through it. It couples an LRU page cache with the lock manager and
// per-transaction rollback state, enforcing a NO-STEAL / FORCE discipline:
// pages dirtied by a transaction are never written to disk before that
// transaction commits, and commit flushes all of them before returning.
type PageStore struct {
	mutex       sync.Mutex
	cache       PageCache
	lockManager *lock.Manager
	resolver    FileResolver
	poolSize    int
	txns        map[primitives.TransactionID]*txnState
}

// NewPageStore creates a pool of poolSize pages backed by the resolver's
// files. A non-positive poolSize falls back to DefaultPoolPages.
func NewPageStore(resolver FileResolver, poolSize int) *PageStore {
	if poolSize <= 0 {
		poolSize = DefaultPoolPages
	}
	return &PageStore{
		cache:       NewLRUPageCache(poolSize),
		lockManager: lock.NewManager(),
		resolver:    resolver,
		poolSize:    poolSize,
		txns:        make(map[primitives.TransactionID]*txnState),
	}
}

// LockManager exposes the pool's lock manager for inspection.
func (p *PageStore) LockManager() *lock.Manager {
	return p.lockManager
}

// GetPage returns the identified page after acquiring a lock for tid in
// the mode matching perm. The lock is held until the transaction commits
// or aborts. Fails with lock.ErrTransactionAborted when deadlock
// avoidance kills the request, and with ErrPoolFull when the page is not
// resident and no frame can be freed.
func (p *PageStore) GetPage(tid primitives.TransactionID, pid primitives.PageID, perm page.Permissions) (page.Page, error) {
	lockType := lock.SharedLock
	if perm == page.ReadWrite {
		lockType = lock.ExclusiveLock
	}
	if err := p.lockManager.AcquireLock(tid, pid, lockType); err != nil {
		return nil, err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	pg, ok := p.cache.Get(pid)
	if !ok {
		var err error
		pg, err = p.loadPage(pid)
		if err != nil {
			return nil, err
		}
	}

	if perm == page.ReadWrite {
		if err := p.saveBeforeImage(tid, pid, pg); err != nil {
			return nil, err
		}
	}
	return pg, nil
}

// loadPage brings a page in from disk, evicting a clean frame first when
// the pool is at capacity. Called with p.mutex held.
func (p *PageStore) loadPage(pid primitives.PageID) (page.Page, error) {
	if p.cache.Size() >= p.poolSize {
		if err := p.evictPage(); err != nil {
			return nil, err
		}
	}

	dbFile, err := p.resolver.GetDbFile(pid.TableID())
	if err != nil {
		return nil, errors.Wrapf(err, "no file for table %v", pid.TableID())
	}

	pg, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	if err := p.cache.Put(pid, pg); err != nil {
		return nil, errors.Wrap(err, "failed to cache page")
	}
	return pg, nil
}

// evictPage frees one frame. Dirty pages are never evicted: their owning
// transaction has not committed and the on-disk copy must stay untouched.
// Pages under active locks are also skipped, since a locked page may be
// modified through an outstanding reference. Candidates are tried in
// least-recently-used order.
func (p *PageStore) evictPage() error {
	for _, pid := range p.cache.IDsInEvictionOrder() {
		pg, ok := p.cache.Get(pid)
		if !ok {
			continue
		}
		if _, dirty := pg.IsDirty(); dirty {
			continue
		}
		if p.lockManager.IsPageLocked(pid) {
			continue
		}

		p.cache.Remove(pid)
		logging.WithPage(pid).Debug("evicted clean page")
		return nil
	}

	return errors.Wrapf(ErrPoolFull, "all %d pages are dirty or in use", p.cache.Size())
}

// MarkDirty records tid as having modified the identified page. The page
// must be resident; its pre-modification image was captured when tid first
// fetched it read-write.
func (p *PageStore) MarkDirty(tid primitives.TransactionID, pid primitives.PageID) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	pg, ok := p.cache.Get(pid)
	if !ok {
		return errors.Errorf("cannot mark non-resident page %v dirty", pid)
	}

	pg.MarkDirty(true, tid)
	p.stateFor(tid).dirtyPages[pid] = true
	return nil
}

// InsertTuple adds a tuple to the named table on behalf of tid, returning
// the record ID it was assigned.
func (p *PageStore) InsertTuple(tid primitives.TransactionID, tableID primitives.TableID, t *tuple.Tuple) (*tuple.RecordID, error) {
	hf, err := p.heapFileFor(tableID)
	if err != nil {
		return nil, err
	}
	return hf.InsertTuple(tid, t, p)
}

// DeleteTuple removes a previously fetched tuple on behalf of tid, using
// the tuple's record ID to find it.
func (p *PageStore) DeleteTuple(tid primitives.TransactionID, t *tuple.Tuple) error {
	if t.RecordID == nil {
		return errors.New("tuple has no record ID")
	}
	hf, err := p.heapFileFor(t.RecordID.PageID.TableID())
	if err != nil {
		return err
	}
	return hf.DeleteTuple(tid, t, p)
}

func (p *PageStore) heapFileFor(tableID primitives.TableID) (*heap.HeapFile, error) {
	dbFile, err := p.resolver.GetDbFile(tableID)
	if err != nil {
		return nil, err
	}
	hf, ok := dbFile.(*heap.HeapFile)
	if !ok {
		return nil, errors.Errorf("table %v is not heap-backed", tableID)
	}
	return hf, nil
}

// FlushAllPages writes every dirty resident page to disk and marks it
// clean. This bypasses transaction boundaries and is meant for orderly
// shutdown only.
func (p *PageStore) FlushAllPages() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, pid := range p.cache.IDsInEvictionOrder() {
		if err := p.flushPage(pid); err != nil {
			return err
		}
	}
	return nil
}

// flushPage writes one page to disk if dirty and clears its dirty mark.
// Called with p.mutex held.
func (p *PageStore) flushPage(pid primitives.PageID) error {
	pg, ok := p.cache.Get(pid)
	if !ok {
		return nil
	}
	tid, dirty := pg.IsDirty()
	if !dirty {
		return nil
	}

	dbFile, err := p.resolver.GetDbFile(pid.TableID())
	if err != nil {
		return errors.Wrapf(err, "no file for table %v", pid.TableID())
	}
	if err := dbFile.WritePage(pg); err != nil {
		return errors.Wrapf(err, "failed to flush page %v", pid)
	}

	pg.MarkDirty(false, tid)
	return nil
}

// CachedPages returns how many pages are currently resident.
func (p *PageStore) CachedPages() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.cache.Size()
}
