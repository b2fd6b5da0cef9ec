package heap

import "github.com/pkg/errors"

// Sentinel errors for the heap storage layer. Callers match them with
// errors.Is; wrapped instances carry page/slot context.
var (
	// ErrCorruptPage reports malformed bytes read from storage. Not
	// recoverable.
	ErrCorruptPage = errors.New("heap: corrupt page")

	// ErrInvalidSlot reports a read of a slot that is out of range or whose
	// occupancy bit is clear.
	ErrInvalidSlot = errors.New("heap: invalid slot")

	// ErrPageFull reports an insert into a page with no free slot. Expected
	// during insertion scans; HeapFile handles it by moving to the next page
	// or appending a fresh one.
	ErrPageFull = errors.New("heap: page full")

	// ErrPageOutOfRange reports access to a page number beyond the end of
	// the file (more than one page past the last).
	ErrPageOutOfRange = errors.New("heap: page out of range")
)
