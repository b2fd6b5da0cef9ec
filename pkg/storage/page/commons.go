package page

import (
	"os"
	"sync"

	"heapstore/pkg/primitives"

	"github.com/pkg/errors"
)

// BaseFile provides the raw page-granularity file operations shared by all
// database file types: reading and writing PageSize-aligned byte ranges,
// page counting, and atomic file extension.
//
// Thread-safety: all methods synchronize on an internal read-write mutex, so
// a BaseFile may be shared across goroutines.
type BaseFile struct {
	file     *os.File
	fileID   primitives.FileID
	filePath primitives.Filepath
	mutex    sync.RWMutex
}

// NewBaseFile opens (creating if necessary) the file at filePath and derives
// its stable FileID from the path hash.
func NewBaseFile(filePath primitives.Filepath) (*BaseFile, error) {
	if filePath.IsEmpty() {
		return nil, errors.New("file path cannot be empty")
	}

	file, err := os.OpenFile(filePath.String(), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file %s", filePath)
	}

	return &BaseFile{
		file:     file,
		fileID:   filePath.Hash(),
		filePath: filePath,
	}, nil
}

// GetID returns the unique identifier for this file.
func (bf *BaseFile) GetID() primitives.FileID {
	return bf.fileID
}

// FilePath returns the path this file was opened from.
func (bf *BaseFile) FilePath() primitives.Filepath {
	return bf.filePath
}

// NumPages returns the number of whole pages in the file. File length is
// kept an exact multiple of PageSize by WritePageData and AllocatePage.
func (bf *BaseFile) NumPages() (primitives.PageNumber, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	if bf.file == nil {
		return 0, errors.New("file is closed")
	}

	info, err := bf.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat file")
	}

	return primitives.PageNumber(info.Size() / int64(PageSize)), nil // #nosec G115
}

// ReadPageData reads the raw PageSize bytes of the given page.
func (bf *BaseFile) ReadPageData(pageNo primitives.PageNumber) ([]byte, error) {
	bf.mutex.RLock()
	defer bf.mutex.RUnlock()

	if bf.file == nil {
		return nil, errors.New("file is closed")
	}

	data := make([]byte, PageSize)
	offset := int64(pageNo) * int64(PageSize) // #nosec G115
	if _, err := bf.file.ReadAt(data, offset); err != nil {
		return nil, err
	}
	return data, nil
}

// WritePageData overwrites the given page's bytes on disk and syncs, so the
// data is persisted when the call returns.
func (bf *BaseFile) WritePageData(pageNo primitives.PageNumber, data []byte) error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return errors.New("file is closed")
	}
	if len(data) != PageSize {
		return errors.Errorf("invalid page data size: expected %d, got %d", PageSize, len(data))
	}

	offset := int64(pageNo) * int64(PageSize) // #nosec G115
	if _, err := bf.file.WriteAt(data, offset); err != nil {
		return errors.Wrap(err, "failed to write page data")
	}
	if err := bf.file.Sync(); err != nil {
		return errors.Wrap(err, "failed to sync file")
	}
	return nil
}

// AllocatePage atomically appends one zero-filled page to the file and
// returns its page number. Concurrent callers receive distinct numbers:
// the size check and the extending write happen under the write lock.
func (bf *BaseFile) AllocatePage() (primitives.PageNumber, error) {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return 0, errors.New("file is closed")
	}

	info, err := bf.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat file")
	}

	allocated := primitives.PageNumber(info.Size() / int64(PageSize)) // #nosec G115
	zeroPage := make([]byte, PageSize)
	offset := int64(allocated) * int64(PageSize) // #nosec G115

	if _, err := bf.file.WriteAt(zeroPage, offset); err != nil {
		return 0, errors.Wrap(err, "failed to reserve page space")
	}
	if err := bf.file.Sync(); err != nil {
		return 0, errors.Wrap(err, "failed to sync file after page allocation")
	}
	return allocated, nil
}

// Close closes the underlying file handle. Subsequent operations fail.
func (bf *BaseFile) Close() error {
	bf.mutex.Lock()
	defer bf.mutex.Unlock()

	if bf.file == nil {
		return nil
	}
	err := bf.file.Close()
	bf.file = nil
	return err
}
