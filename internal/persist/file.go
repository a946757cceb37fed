// Package persist owns the edited file on disk and writes buffer snapshots
// to it from background goroutines.
package persist

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kobzarvs/rut/internal/buffer"
)

type handle interface {
	buffer.Sink
	io.Reader
	Sync() error
	Close() error
}

// File is the single handle to the edited file, guarded by one lock. The
// edit loop and save goroutines share a *File and never use the handle at
// the same time.
type File struct {
	mu        sync.Mutex
	h         handle
	path      string
	committed uint64 // sequence of the last snapshot written
	closed    bool
}

// Open opens path for reading and writing, creating it if absent.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return newFile(f, path), nil
}

func newFile(h handle, path string) *File {
	return &File{h: h, path: path}
}

func (f *File) Path() string { return f.path }

// Load reads the whole file into a new buffer.
func (f *File) Load() (*buffer.Buffer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.h.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("load %s: %w", f.path, err)
	}
	buf, err := buffer.New(f.h)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", f.path, err)
	}
	return buf, nil
}

// Commit replaces the file content with snap unless a snapshot with a
// higher sequence number has already been written. It reports whether snap
// was written.
func (f *File) Commit(seq uint64, snap buffer.Snapshot) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false, fmt.Errorf("save %s: %w", f.path, os.ErrClosed)
	}
	if seq <= f.committed {
		return false, nil
	}
	if err := snap.Serialize(f.h); err != nil {
		return false, fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := f.h.Sync(); err != nil {
		return false, fmt.Errorf("sync %s: %w", f.path, err)
	}
	f.committed = seq
	return true, nil
}

// Committed returns the sequence number of the last written snapshot.
func (f *File) Committed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.committed
}

// Close releases the handle. Later commits fail.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.h.Close()
}
