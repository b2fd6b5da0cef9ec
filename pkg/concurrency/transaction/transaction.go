package transaction

import (
	"sync"
	"time"

	"heapstore/pkg/primitives"

	"github.com/pkg/errors"
)

// Status represents the lifecycle state of a transaction.
type Status int

const (
	Active Status = iota
	Committed
	Aborted
)

func (s Status) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Committed:
		return "COMMITTED"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Transaction carries the identity and lifecycle state of one transaction.
// A transaction moves from Active to exactly one terminal state, Committed
// or Aborted, and never transitions again after that.
type Transaction struct {
	ID primitives.TransactionID

	status    Status
	startTime time.Time
	endTime   time.Time
	mutex     sync.RWMutex
}

// NewTransaction creates an active transaction with a fresh ID. The ID's
// allocation order doubles as the transaction's age for deadlock avoidance:
// a smaller ID is an older transaction.
func NewTransaction() *Transaction {
	return &Transaction{
		ID:        primitives.NewTransactionID(),
		status:    Active,
		startTime: time.Now(),
	}
}

// Status returns the transaction's current lifecycle state.
func (t *Transaction) Status() Status {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.status
}

// IsActive reports whether the transaction has not yet reached a terminal
// state.
func (t *Transaction) IsActive() bool {
	return t.Status() == Active
}

// StartTime returns when the transaction began.
func (t *Transaction) StartTime() time.Time {
	return t.startTime
}

// EndTime returns when the transaction reached its terminal state, zero
// while still active.
func (t *Transaction) EndTime() time.Time {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.endTime
}

// MarkCommitted moves the transaction to Committed. Fails if a terminal
// state was already reached.
func (t *Transaction) MarkCommitted() error {
	return t.finish(Committed)
}

// MarkAborted moves the transaction to Aborted. Fails if a terminal state
// was already reached.
func (t *Transaction) MarkAborted() error {
	return t.finish(Aborted)
}

func (t *Transaction) finish(terminal Status) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.status != Active {
		return errors.Errorf("transaction %s is already %s", t.ID, t.status)
	}
	t.status = terminal
	t.endTime = time.Now()
	return nil
}

func (t *Transaction) String() string {
	return t.ID.String()
}
