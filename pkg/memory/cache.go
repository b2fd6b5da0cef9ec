// Package memory provides the transaction-aware buffer pool that mediates
// all page access between the engine and disk.
package memory

import (
	"sync"

	"heapstore/pkg/primitives"
	"heapstore/pkg/storage/page"

	"github.com/pkg/errors"
)

// PageCache stores pages in memory. It knows nothing about transactions,
// locks, or durability; those live in PageStore.
type PageCache interface {
	// Get retrieves a cached page, marking it recently used.
	Get(pid primitives.PageID) (page.Page, bool)

	// Put stores a page, failing when the cache is at capacity and pid is
	// not already present.
	Put(pid primitives.PageID, p page.Page) error

	// Remove drops a page if present.
	Remove(pid primitives.PageID)

	// Size returns the number of cached pages.
	Size() int

	// IDsInEvictionOrder returns all cached page IDs, least recently used
	// first.
	IDsInEvictionOrder() []primitives.PageID
}

// cacheNode is one entry in the LRU list.
type cacheNode struct {
	pid  primitives.PageID
	page page.Page
	prev *cacheNode
	next *cacheNode
}

// LRUPageCache is a fixed-capacity page cache with least-recently-used
// ordering. A hash map over doubly linked list nodes gives O(1) lookup,
// insertion, and removal. It never evicts on its own: Put fails at
// capacity and the caller decides what to drop.
type LRUPageCache struct {
	maxSize int
	cache   map[primitives.PageID]*cacheNode
	head    *cacheNode // most recently used end
	tail    *cacheNode // least recently used end
	mutex   sync.RWMutex
}

// NewLRUPageCache creates a cache holding at most maxSize pages.
func NewLRUPageCache(maxSize int) *LRUPageCache {
	head := &cacheNode{}
	tail := &cacheNode{}
	head.next = tail
	tail.prev = head

	return &LRUPageCache{
		maxSize: maxSize,
		cache:   make(map[primitives.PageID]*cacheNode),
		head:    head,
		tail:    tail,
	}
}

func (c *LRUPageCache) addToFront(n *cacheNode) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRUPageCache) removeNode(n *cacheNode) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (c *LRUPageCache) moveToFront(n *cacheNode) {
	c.removeNode(n)
	c.addToFront(n)
}

// Get retrieves a cached page and marks it most recently used.
func (c *LRUPageCache) Get(pid primitives.PageID) (page.Page, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, ok := c.cache[pid]; ok {
		c.moveToFront(n)
		return n.page, true
	}
	return nil, false
}

// Put stores a page. An existing entry is replaced in place; a new entry
// fails when the cache is full.
func (c *LRUPageCache) Put(pid primitives.PageID, p page.Page) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, ok := c.cache[pid]; ok {
		n.page = p
		c.moveToFront(n)
		return nil
	}

	if len(c.cache) >= c.maxSize {
		return errors.New("cache full")
	}

	n := &cacheNode{pid: pid, page: p}
	c.cache[pid] = n
	c.addToFront(n)
	return nil
}

// Remove drops a page if present.
func (c *LRUPageCache) Remove(pid primitives.PageID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, ok := c.cache[pid]; ok {
		delete(c.cache, pid)
		c.removeNode(n)
	}
}

// Size returns the number of cached pages.
func (c *LRUPageCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// IDsInEvictionOrder returns all cached page IDs, least recently used
// first.
func (c *LRUPageCache) IDsInEvictionOrder() []primitives.PageID {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	pids := make([]primitives.PageID, 0, len(c.cache))
	for n := c.tail.prev; n != c.head; n = n.prev {
		pids = append(pids, n.pid)
	}
	return pids
}
