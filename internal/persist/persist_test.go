package persist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobzarvs/rut/internal/buffer"
)

// memHandle is an in-memory file. When gate is set, writes block until it
// is closed.
type memHandle struct {
	mu       sync.Mutex
	data     []byte
	pos      int64
	gate     chan struct{}
	truncErr error
	writes   int
	closed   bool
}

func (m *memHandle) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memHandle) Write(p []byte) (int, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.pos + int64(len(p))
	if end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[m.pos:], p)
	m.pos = end
	m.writes++
	return len(p), nil
}

func (m *memHandle) Seek(offset int64, whence int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.data)) + offset
	}
	return m.pos, nil
}

func (m *memHandle) Truncate(size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.truncErr != nil {
		return m.truncErr
	}
	m.data = m.data[:size]
	return nil
}

func (m *memHandle) Sync() error { return nil }

func (m *memHandle) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memHandle) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data)
}

func TestOpenCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")

	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	_, err = os.Stat(path)
	require.NoError(t, err)

	buf, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, buf.Len())
	assert.Equal(t, 1, buf.LineCount())
}

func TestOpenFailsForDirectory(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
}

func TestLoadReadsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("ab\ncd"), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	buf, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, "ab\ncd", buf.String())
	assert.Equal(t, 2, buf.LineCount())
}

func TestCommitTruncatesAndRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("a long original line\nand more"), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	buf, err := f.Load()
	require.NoError(t, err)
	for buf.Len() > 3 {
		buf.Delete(buf.Len() - 1)
	}

	written, err := f.Commit(1, buf.Snapshot())
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a l", string(data))
	assert.Equal(t, uint64(1), f.Committed())
}

func TestCommitDropsOlderSequence(t *testing.T) {
	h := &memHandle{}
	f := newFile(h, "mem")

	written, err := f.Commit(2, buffer.FromString("newer").Snapshot())
	require.NoError(t, err)
	require.True(t, written)

	written, err = f.Commit(1, buffer.FromString("older").Snapshot())
	require.NoError(t, err)
	assert.False(t, written)
	assert.Equal(t, "newer", h.String())
}

func TestCommitAfterCloseFails(t *testing.T) {
	f := newFile(&memHandle{}, "mem")
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err := f.Commit(1, buffer.FromString("x").Snapshot())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrClosed))
}

func TestSaveAsyncDoesNotBlockCaller(t *testing.T) {
	h := &memHandle{gate: make(chan struct{})}
	done := make(chan Result, 1)
	s := NewSaver(newFile(h, "mem"), func(r Result) { done <- r })

	returned := make(chan struct{})
	go func() {
		s.SaveAsync(buffer.FromString("payload").Snapshot())
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("SaveAsync blocked on the write")
	}
	select {
	case <-done:
		t.Fatal("save finished before the write was released")
	default:
	}

	close(h.gate)
	res := <-done
	require.NoError(t, res.Err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 7, res.Chars)
	assert.Equal(t, "payload", h.String())
}

func TestSaveAsyncSnapshotIgnoresLaterEdits(t *testing.T) {
	h := &memHandle{gate: make(chan struct{})}
	s := NewSaver(newFile(h, "mem"), nil)

	buf := buffer.FromString("before")
	s.SaveAsync(buf.Snapshot())
	buf.Insert(0, 'X')
	buf.Delete(buf.Len() - 1)
	close(h.gate)

	require.NoError(t, s.Wait())
	assert.Equal(t, "before", h.String())
}

func TestTwoQuickSavesLeaveOneCompleteSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	f, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	s := NewSaver(f, nil)
	buf := buffer.FromString("first snapshot content that is fairly long")
	first := buf.Snapshot()
	second := buffer.FromString("second").Snapshot()

	s.SaveAsync(first)
	s.SaveAsync(second)
	require.NoError(t, s.Wait())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, second.String(), string(data))
}

func TestManyConcurrentSavesLastRequestWins(t *testing.T) {
	h := &memHandle{}
	var mu sync.Mutex
	var results []Result
	s := NewSaver(newFile(h, "mem"), func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	buf := buffer.FromString("")
	var last buffer.Snapshot
	for i := 0; i < 50; i++ {
		for _, r := range fmt.Sprintf("line %d\n", i) {
			buf.Insert(buf.Len(), r)
		}
		last = buf.Snapshot()
		s.SaveAsync(last)
	}
	require.NoError(t, s.Wait())

	assert.Equal(t, last.String(), h.String())
	require.Len(t, results, 50)
	written := 0
	for _, r := range results {
		if !r.Skipped {
			written++
		}
	}
	assert.GreaterOrEqual(t, written, 1)
}

func TestSaveFailureIsReported(t *testing.T) {
	h := &memHandle{truncErr: errors.New("disk full")}
	done := make(chan Result, 1)
	s := NewSaver(newFile(h, "mem"), func(r Result) { done <- r })

	s.SaveAsync(buffer.FromString("x").Snapshot())
	res := <-done

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "disk full")
	err := s.Wait()
	require.Error(t, err)
	assert.Equal(t, res.Err, s.Err())
}
