package lock

import (
	"heapstore/pkg/primitives"
)

// lockTable is the two-way mapping of granted locks: pages to their lock
// lists, and transactions to the pages they hold. It has no locking of its
// own; the Manager serializes access.
type lockTable struct {
	pageLocks map[primitives.PageID][]*Lock
	txnLocks  map[primitives.TransactionID]map[primitives.PageID]LockType
}

func newLockTable() *lockTable {
	return &lockTable{
		pageLocks: make(map[primitives.PageID][]*Lock),
		txnLocks:  make(map[primitives.TransactionID]map[primitives.PageID]LockType),
	}
}

// holdsSufficient reports whether tid already holds a lock on pid covering
// the requested mode. An exclusive lock covers both modes.
func (lt *lockTable) holdsSufficient(tid primitives.TransactionID, pid primitives.PageID, req LockType) bool {
	held, ok := lt.txnLocks[tid][pid]
	if !ok {
		return false
	}
	return held == ExclusiveLock || req == SharedLock
}

// holds returns tid's lock mode on pid, if any.
func (lt *lockTable) holds(tid primitives.TransactionID, pid primitives.PageID) (LockType, bool) {
	held, ok := lt.txnLocks[tid][pid]
	return held, ok
}

// conflicting returns the locks on pid held by other transactions that are
// incompatible with tid acquiring the requested mode. Empty means the
// request can be granted now.
func (lt *lockTable) conflicting(tid primitives.TransactionID, pid primitives.PageID, req LockType) []*Lock {
	var out []*Lock
	for _, l := range lt.pageLocks[pid] {
		if l.TID == tid {
			continue
		}
		if req == ExclusiveLock || l.LockType == ExclusiveLock {
			out = append(out, l)
		}
	}
	return out
}

// add grants tid a lock on pid.
func (lt *lockTable) add(tid primitives.TransactionID, pid primitives.PageID, lockType LockType) {
	lt.pageLocks[pid] = append(lt.pageLocks[pid], NewLock(tid, lockType))

	if lt.txnLocks[tid] == nil {
		lt.txnLocks[tid] = make(map[primitives.PageID]LockType)
	}
	lt.txnLocks[tid][pid] = lockType
}

// upgrade promotes tid's shared lock on pid to exclusive in place.
func (lt *lockTable) upgrade(tid primitives.TransactionID, pid primitives.PageID) {
	for _, l := range lt.pageLocks[pid] {
		if l.TID == tid {
			l.LockType = ExclusiveLock
			break
		}
	}
	lt.txnLocks[tid][pid] = ExclusiveLock
}

// release drops tid's lock on pid.
func (lt *lockTable) release(tid primitives.TransactionID, pid primitives.PageID) {
	lt.removePageLock(tid, pid)

	if pages, ok := lt.txnLocks[tid]; ok {
		delete(pages, pid)
		if len(pages) == 0 {
			delete(lt.txnLocks, tid)
		}
	}
}

// releaseAll drops every lock tid holds, returning the pages affected so
// waiters on them can be woken.
func (lt *lockTable) releaseAll(tid primitives.TransactionID) []primitives.PageID {
	pages, ok := lt.txnLocks[tid]
	if !ok {
		return nil
	}

	affected := make([]primitives.PageID, 0, len(pages))
	for pid := range pages {
		affected = append(affected, pid)
		lt.removePageLock(tid, pid)
	}
	delete(lt.txnLocks, tid)
	return affected
}

func (lt *lockTable) removePageLock(tid primitives.TransactionID, pid primitives.PageID) {
	locks, ok := lt.pageLocks[pid]
	if !ok {
		return
	}

	kept := locks[:0]
	for _, l := range locks {
		if l.TID != tid {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(lt.pageLocks, pid)
	} else {
		lt.pageLocks[pid] = kept
	}
}

// isPageLocked reports whether any transaction holds a lock on pid.
func (lt *lockTable) isPageLocked(pid primitives.PageID) bool {
	return len(lt.pageLocks[pid]) > 0
}

// pagesHeldBy returns every page tid currently holds a lock on.
func (lt *lockTable) pagesHeldBy(tid primitives.TransactionID) []primitives.PageID {
	pages := lt.txnLocks[tid]
	out := make([]primitives.PageID, 0, len(pages))
	for pid := range pages {
		out = append(out, pid)
	}
	return out
}
