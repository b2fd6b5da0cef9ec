package memory

import (
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"heapstore/pkg/logging"
	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"
)

// txnState is the pool's per-transaction bookkeeping: which pages the
// transaction dirtied, and a compressed copy of each write-locked page as
// it looked before the transaction touched it.
type txnState struct {
	dirtyPages   map[primitives.PageID]bool
	beforeImages map[primitives.PageID][]byte // snappy-compressed page data
}

// stateFor returns tid's bookkeeping, creating it on first use. Called
// with p.mutex held.
func (p *PageStore) stateFor(tid primitives.TransactionID) *txnState {
	state, ok := p.txns[tid]
	if !ok {
		state = &txnState{
			dirtyPages:   make(map[primitives.PageID]bool),
			beforeImages: make(map[primitives.PageID][]byte),
		}
		p.txns[tid] = state
	}
	return state
}

// saveBeforeImage captures the page's current bytes the first time tid
// fetches it read-write. At that moment the exclusive lock is already
// held and the page carries no uncommitted changes from anyone else, so
// the snapshot is the state rollback must return to. Called with p.mutex
// held.
func (p *PageStore) saveBeforeImage(tid primitives.TransactionID, pid primitives.PageID, pg page.Page) error {
	state := p.stateFor(tid)
	if _, ok := state.beforeImages[pid]; ok {
		return nil
	}
	state.beforeImages[pid] = snappy.Encode(nil, pg.GetPageData())
	return nil
}

// CommitTransaction makes tid's changes durable and visible: every page
// it dirtied is flushed to disk, its rollback state is discarded, and all
// its locks are released. Safe to call for a transaction that dirtied
// nothing.
func (p *PageStore) CommitTransaction(tid primitives.TransactionID) error {
	p.mutex.Lock()

	if state, ok := p.txns[tid]; ok {
		for pid := range state.dirtyPages {
			if err := p.flushPage(pid); err != nil {
				p.mutex.Unlock()
				return errors.Wrapf(err, "commit of %s failed", tid)
			}
		}
		delete(p.txns, tid)
	}
	p.mutex.Unlock()

	p.lockManager.ReleaseAllLocks(tid)
	logging.WithTx(tid).Debug("transaction committed")
	return nil
}

// AbortTransaction erases every trace of tid from the pool: each dirtied
// page is restored in memory from its before-image (or dropped when none
// was captured), rollback state is discarded, and all locks are released.
// Nothing was flushed before commit, so the on-disk state needs no undo.
// Aborting a transaction with no recorded work only releases locks.
func (p *PageStore) AbortTransaction(tid primitives.TransactionID) error {
	p.mutex.Lock()

	if state, ok := p.txns[tid]; ok {
		for pid := range state.dirtyPages {
			if err := p.restorePage(pid, state.beforeImages[pid]); err != nil {
				p.mutex.Unlock()
				return errors.Wrapf(err, "abort of %s failed", tid)
			}
		}
		delete(p.txns, tid)
	}
	p.mutex.Unlock()

	p.lockManager.ReleaseAllLocks(tid)
	logging.WithTx(tid).Debug("transaction aborted")
	return nil
}

// restorePage replaces a dirtied page in the cache with its decompressed
// before-image. A page with no image is simply dropped; the next fetch
// reloads it from disk, which still holds the pre-transaction bytes.
// Called with p.mutex held.
func (p *PageStore) restorePage(pid primitives.PageID, image []byte) error {
	if image == nil {
		p.cache.Remove(pid)
		return nil
	}

	data, err := snappy.Decode(nil, image)
	if err != nil {
		return errors.Wrapf(err, "corrupt before-image for page %v", pid)
	}

	dbFile, err := p.resolver.GetDbFile(pid.TableID())
	if err != nil {
		return errors.Wrapf(err, "no file for table %v", pid.TableID())
	}
	restored, err := dbFile.DeserializePage(pid, data)
	if err != nil {
		return errors.Wrapf(err, "failed to rebuild page %v from before-image", pid)
	}

	return p.cache.Put(pid, restored)
}
