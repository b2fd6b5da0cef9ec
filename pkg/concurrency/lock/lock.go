// Package lock provides page-level two-phase locking with wait-die
// deadlock avoidance.
//
// Transactions acquire shared or exclusive locks on pages through a
// Manager. When a request conflicts, the transaction's age decides the
// outcome: a requester older than every conflicting holder blocks until
// the lock frees up, while a requester younger than any conflicting
// holder is killed immediately with ErrTransactionAborted. Age is the
// transaction ID's allocation order, so the scheme cannot livelock: the
// oldest transaction in the system is never killed.
package lock

import (
	"time"

	"heapstore/pkg/primitives"

	"github.com/pkg/errors"
)

// ErrTransactionAborted is returned when wait-die kills a lock request.
// The transaction must be aborted by its owner; its locks are not
// released until then.
var ErrTransactionAborted = errors.New("lock: transaction aborted to avoid deadlock")

// LockType is the mode of a page lock.
type LockType int

const (
	// SharedLock permits concurrent readers.
	SharedLock LockType = iota
	// ExclusiveLock permits a single writer and excludes all readers.
	ExclusiveLock
)

func (lt LockType) String() string {
	switch lt {
	case SharedLock:
		return "SHARED"
	case ExclusiveLock:
		return "EXCLUSIVE"
	default:
		return "UNKNOWN"
	}
}

// Lock records one granted page lock.
type Lock struct {
	TID       primitives.TransactionID
	LockType  LockType
	GrantTime time.Time
}

// NewLock creates a granted lock stamped with the current time.
func NewLock(tid primitives.TransactionID, lockType LockType) *Lock {
	return &Lock{
		TID:       tid,
		LockType:  lockType,
		GrantTime: time.Now(),
	}
}
