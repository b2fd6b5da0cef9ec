package lock

import (
	"sync"

	"heapstore/pkg/primitives"

	"github.com/pkg/errors"
)

// Manager grants and releases page locks for transactions. All state is
// guarded by one mutex; blocked requests wait on a per-page condition
// variable and re-evaluate whenever a lock on that page is released.
//
// Deadlock avoidance is wait-die. On conflict, the requester compares its
// age against every conflicting holder:
//
//   - any holder older than the requester: the request fails with
//     ErrTransactionAborted and the requester must abort ("die");
//   - all holders younger: the requester blocks until they finish ("wait").
//
// Waiting transactions therefore only ever wait on younger ones, so no
// wait cycle can form, and a killed transaction retried with its original
// ID only grows older and eventually wins.
type Manager struct {
	mu      sync.Mutex
	table   *lockTable
	conds   map[primitives.PageID]*sync.Cond
	waiters map[primitives.PageID]int
}

// NewManager creates a lock manager with no locks held.
func NewManager() *Manager {
	return &Manager{
		table:   newLockTable(),
		conds:   make(map[primitives.PageID]*sync.Cond),
		waiters: make(map[primitives.PageID]int),
	}
}

// AcquireLock obtains a lock of the given mode on pid for tid, blocking if
// the request conflicts only with younger holders. A lock already held in
// a covering mode returns immediately; a shared lock held by tid alone is
// upgraded in place when exclusive is requested.
//
// Returns ErrTransactionAborted when wait-die decides tid must die. The
// caller is expected to abort the transaction; locks tid already holds
// stay held until then.
func (m *Manager) AcquireLock(tid primitives.TransactionID, pid primitives.PageID, req LockType) error {
	if !tid.IsValid() {
		return errors.New("invalid transaction ID")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		if m.table.holdsSufficient(tid, pid, req) {
			return nil
		}

		conflicts := m.table.conflicting(tid, pid, req)
		if len(conflicts) == 0 {
			if _, held := m.table.holds(tid, pid); held {
				m.table.upgrade(tid, pid)
			} else {
				m.table.add(tid, pid, req)
			}
			return nil
		}

		// Die if any conflicting holder is strictly older, otherwise
		// wait. IDs come from one counter, so ages never tie.
		for _, l := range conflicts {
			if l.TID.OlderThan(tid) {
				return errors.Wrapf(ErrTransactionAborted,
					"%s requesting %s on %v conflicts with older %s", tid, req, pid, l.TID)
			}
		}

		m.wait(pid)
	}
}

// wait blocks on pid's condition variable until a lock on pid is released.
// Called with m.mu held; the wakeup re-acquires it before returning.
func (m *Manager) wait(pid primitives.PageID) {
	cond, ok := m.conds[pid]
	if !ok {
		cond = sync.NewCond(&m.mu)
		m.conds[pid] = cond
	}

	m.waiters[pid]++
	cond.Wait()
	m.waiters[pid]--
	if m.waiters[pid] == 0 {
		delete(m.waiters, pid)
		delete(m.conds, pid)
	}
}

// ReleaseLock drops tid's lock on pid and wakes that page's waiters.
func (m *Manager) ReleaseLock(tid primitives.TransactionID, pid primitives.PageID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.table.release(tid, pid)
	m.wake(pid)
}

// ReleaseAllLocks drops every lock tid holds in one step and wakes the
// waiters of every affected page. Called at transaction completion.
func (m *Manager) ReleaseAllLocks(tid primitives.TransactionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, pid := range m.table.releaseAll(tid) {
		m.wake(pid)
	}
}

func (m *Manager) wake(pid primitives.PageID) {
	if cond, ok := m.conds[pid]; ok {
		cond.Broadcast()
	}
}

// HoldsLock returns the mode tid holds on pid, if any.
func (m *Manager) HoldsLock(tid primitives.TransactionID, pid primitives.PageID) (LockType, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.holds(tid, pid)
}

// IsPageLocked reports whether any transaction holds a lock on pid. The
// buffer pool uses this to avoid evicting pages under active locks.
func (m *Manager) IsPageLocked(pid primitives.PageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.isPageLocked(pid)
}

// PagesLockedBy returns every page tid currently holds a lock on.
func (m *Manager) PagesLockedBy(tid primitives.TransactionID) []primitives.PageID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.table.pagesHeldBy(tid)
}
