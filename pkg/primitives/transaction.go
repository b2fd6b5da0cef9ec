package primitives

import (
	"fmt"
	"sync/atomic"
)

var transactionCounter atomic.Uint64

// TransactionID identifies one transaction. The identifier is drawn from a
// process-wide monotonic counter, so it doubles as the transaction's start
// order: a smaller ID means the transaction began earlier ("is older").
// WAIT-DIE deadlock avoidance relies on this ordering.
//
// TransactionID is a comparable value and can be used as a map key.
type TransactionID struct {
	id uint64
}

// NewTransactionID allocates the next transaction identifier.
func NewTransactionID() TransactionID {
	return TransactionID{id: transactionCounter.Add(1)}
}

// ID returns the numeric identifier.
func (tid TransactionID) ID() uint64 {
	return tid.id
}

// StartOrder returns the transaction's position in global begin order.
// It is the same value as ID; the one counter supplies both identity and age.
func (tid TransactionID) StartOrder() uint64 {
	return tid.id
}

// IsValid reports whether the ID was produced by NewTransactionID.
// The zero value is not a valid transaction identifier.
func (tid TransactionID) IsValid() bool {
	return tid.id != 0
}

// OlderThan reports whether this transaction began strictly before the other.
func (tid TransactionID) OlderThan(other TransactionID) bool {
	return tid.id < other.id
}

func (tid TransactionID) String() string {
	return fmt.Sprintf("TID-%d", tid.id)
}
