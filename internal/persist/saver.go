package persist

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kobzarvs/rut/internal/buffer"
	"github.com/kobzarvs/rut/internal/logger"
)

// Result describes one finished save.
type Result struct {
	Seq     uint64
	Version uint64
	Chars   int
	// Skipped is set when a newer snapshot reached the file first.
	Skipped bool
	Err     error
	Elapsed time.Duration
}

// Saver dispatches snapshot writes to background goroutines. Writes are
// serialized on the File lock; a write older than the last committed one
// is dropped, so the most recently requested snapshot always wins.
type Saver struct {
	file     *File
	seq      atomic.Uint64
	wg       sync.WaitGroup
	onResult func(Result)

	mu  sync.Mutex
	err error // first failure
}

// NewSaver returns a Saver writing to file. onResult, if set, is called
// from the save goroutine when a save finishes.
func NewSaver(file *File, onResult func(Result)) *Saver {
	return &Saver{file: file, onResult: onResult}
}

// SaveAsync starts writing snap and returns its sequence number without
// waiting for the write.
func (s *Saver) SaveAsync(snap buffer.Snapshot) uint64 {
	seq := s.seq.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		start := time.Now()
		written, err := s.file.Commit(seq, snap)
		res := Result{
			Seq:     seq,
			Version: snap.Version(),
			Chars:   snap.Len(),
			Skipped: err == nil && !written,
			Err:     err,
			Elapsed: time.Since(start),
		}
		switch {
		case err != nil:
			s.fail(err)
			logger.Error("save failed", "path", s.file.Path(), "seq", seq, "error", err)
		case res.Skipped:
			logger.Debug("save superseded", "path", s.file.Path(), "seq", seq)
		default:
			logger.Info("saved", "path", s.file.Path(), "seq", seq, "chars", res.Chars, "elapsed", res.Elapsed)
		}
		if s.onResult != nil {
			s.onResult(res)
		}
	}()
	return seq
}

// Err returns the first save failure, if any.
func (s *Saver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Wait blocks until every dispatched save has finished and returns the
// first failure.
func (s *Saver) Wait() error {
	s.wg.Wait()
	return s.Err()
}

func (s *Saver) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}
