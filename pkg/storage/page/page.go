package page

import (
	"heapstore/pkg/primitives"
)

const (
	// PageSize is the size of each page in bytes (4KB). Files are always an
	// exact multiple of this, and every disk transfer moves exactly one page.
	PageSize = 4096
)

// Page is one disk page resident in the buffer pool. A page may be "dirty",
// meaning it carries in-memory modifications not yet written to disk; the
// dirty mark names the transaction responsible.
type Page interface {
	// GetID returns the identity of this page.
	GetID() primitives.PageID

	// GetPageData serializes the page's current contents into a PageSize
	// byte array suitable for writing to disk.
	GetPageData() []byte

	// IsDirty returns the transaction that dirtied this page, or false if
	// the page is clean.
	IsDirty() (primitives.TransactionID, bool)

	// MarkDirty sets or clears the page's dirty mark.
	MarkDirty(dirty bool, tid primitives.TransactionID)
}
