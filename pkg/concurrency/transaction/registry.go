package transaction

import (
	"sync"

	"heapstore/pkg/primitives"

	"github.com/pkg/errors"
)

// Registry tracks every transaction the engine has begun, keyed by ID. It
// is the single place transaction lifecycle state lives.
type Registry struct {
	transactions map[primitives.TransactionID]*Transaction
	mutex        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		transactions: make(map[primitives.TransactionID]*Transaction),
	}
}

// Begin creates and registers a new active transaction.
func (r *Registry) Begin() *Transaction {
	t := NewTransaction()

	r.mutex.Lock()
	r.transactions[t.ID] = t
	r.mutex.Unlock()

	return t
}

// Get returns the transaction with the given ID.
func (r *Registry) Get(tid primitives.TransactionID) (*Transaction, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	t, ok := r.transactions[tid]
	if !ok {
		return nil, errors.Errorf("transaction %s not found", tid)
	}
	return t, nil
}

// Remove drops a finished transaction from the registry.
func (r *Registry) Remove(tid primitives.TransactionID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.transactions, tid)
}

// ActiveCount returns how many registered transactions are still active.
func (r *Registry) ActiveCount() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	count := 0
	for _, t := range r.transactions {
		if t.IsActive() {
			count++
		}
	}
	return count
}

// Count returns the total number of registered transactions.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.transactions)
}
