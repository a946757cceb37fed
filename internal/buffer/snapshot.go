package buffer

import (
	"fmt"
	"io"
)

// Sink is a destination whose previous content can be discarded before a
// write. *os.File satisfies it.
type Sink interface {
	io.Writer
	io.Seeker
	Truncate(size int64) error
}

// Snapshot is an immutable copy of a buffer's content taken at one version.
// It is safe to share between goroutines.
type Snapshot struct {
	text    string
	chars   int
	version uint64
}

func (s Snapshot) String() string { return s.text }

// Len returns the rune count of the snapshot.
func (s Snapshot) Len() int { return s.chars }

// Version is the buffer version the snapshot was taken at.
func (s Snapshot) Version() uint64 { return s.version }

// Serialize truncates dst, rewinds it and writes the snapshot text.
func (s Snapshot) Serialize(dst Sink) error {
	if err := dst.Truncate(0); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	if _, err := dst.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	if _, err := io.WriteString(dst, s.text); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
