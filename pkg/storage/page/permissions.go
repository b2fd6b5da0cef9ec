package page

// Permissions is the access level a transaction requests on a page.
// ReadOnly maps to a shared lock, ReadWrite to an exclusive one.
type Permissions int

const (
	ReadOnly Permissions = iota
	ReadWrite
)

func (p Permissions) String() string {
	switch p {
	case ReadOnly:
		return "READ_ONLY"
	case ReadWrite:
		return "READ_WRITE"
	default:
		return "UNKNOWN"
	}
}
