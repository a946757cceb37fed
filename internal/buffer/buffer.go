package buffer

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by New for content that is not valid UTF-8.
// Such content is refused rather than rewritten with replacement runes.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Buffer is the in-memory document. It is owned by a single goroutine;
// concurrent readers must work on a Snapshot instead.
type Buffer struct {
	lines   [][]rune
	size    int
	version uint64

	// starts[i] is the offset of the first rune of line i. nil when stale.
	starts []int
}

// New reads r to EOF and builds a buffer from its content.
func New(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read buffer: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("read buffer: %w", ErrInvalidUTF8)
	}
	return FromString(string(data)), nil
}

// FromString builds a buffer holding text. Invalid UTF-8 decodes to U+FFFD.
func FromString(text string) *Buffer {
	lines := splitLines(text)
	size := len(lines) - 1
	for _, line := range lines {
		size += len(line)
	}
	return &Buffer{lines: lines, size: size}
}

// Len returns the total number of runes, line terminators included.
func (b *Buffer) Len() int { return b.size }

// Version increments on every mutation.
func (b *Buffer) Version() uint64 { return b.version }

// LineCount returns the number of lines. A trailing line without terminator
// counts as a line, and a trailing '\n' opens a final empty line.
func (b *Buffer) LineCount() int { return len(b.lines) }

// LineLength returns the rune count of line, excluding its terminator.
// It panics if line is out of range.
func (b *Buffer) LineLength(line int) int {
	b.checkLine(line)
	return len(b.lines[line])
}

// Line returns a copy of the runes of row, without terminator.
func (b *Buffer) Line(row int) []rune {
	b.checkLine(row)
	return append([]rune(nil), b.lines[row]...)
}

// ToOffset converts a (col, row) coordinate to a buffer offset. The row is
// validated before the column because line length is undefined for a row
// that does not exist.
func (b *Buffer) ToOffset(col, row int) (int, bool) {
	if row < 0 || row >= len(b.lines) {
		return 0, false
	}
	if col < 0 || col > len(b.lines[row]) {
		return 0, false
	}
	return b.lineStart(row) + col, true
}

// Position converts an offset back to its (col, row) coordinate.
func (b *Buffer) Position(offset int) (col, row int, ok bool) {
	if offset < 0 || offset > b.size {
		return 0, 0, false
	}
	row, col = b.locate(offset)
	return col, row, true
}

// Insert inserts r before offset. A '\n' splits the line it lands on.
// It panics if offset is outside [0, Len()].
func (b *Buffer) Insert(offset int, r rune) {
	if offset < 0 || offset > b.size {
		panic(fmt.Sprintf("buffer: insert offset %d out of range [0,%d]", offset, b.size))
	}
	row, col := b.locate(offset)
	line := b.lines[row]
	if r == '\n' {
		left := append([]rune(nil), line[:col]...)
		right := append([]rune(nil), line[col:]...)

		lines := make([][]rune, 0, len(b.lines)+1)
		lines = append(lines, b.lines[:row]...)
		lines = append(lines, left, right)
		lines = append(lines, b.lines[row+1:]...)
		b.lines = lines
	} else {
		line = append(line, 0)
		copy(line[col+1:], line[col:])
		line[col] = r
		b.lines[row] = line
	}
	b.touch(1)
}

// Delete removes the rune at offset. Deleting a line terminator joins the
// line with the next one. It panics if offset is outside [0, Len()).
func (b *Buffer) Delete(offset int) {
	if offset < 0 || offset >= b.size {
		panic(fmt.Sprintf("buffer: delete offset %d out of range [0,%d)", offset, b.size))
	}
	row, col := b.locate(offset)
	line := b.lines[row]
	if col == len(line) {
		// offset < size, so a next line exists
		joined := make([]rune, 0, len(line)+len(b.lines[row+1]))
		joined = append(joined, line...)
		joined = append(joined, b.lines[row+1]...)
		b.lines[row] = joined
		b.lines = append(b.lines[:row+1], b.lines[row+2:]...)
	} else {
		b.lines[row] = append(line[:col], line[col+1:]...)
	}
	b.touch(-1)
}

// String returns the full document text.
func (b *Buffer) String() string {
	return joinLines(b.lines)
}

// Snapshot returns an immutable copy of the current content.
func (b *Buffer) Snapshot() Snapshot {
	return Snapshot{text: b.String(), chars: b.size, version: b.version}
}

// Serialize replaces the content of dst with the buffer text.
func (b *Buffer) Serialize(dst Sink) error {
	return b.Snapshot().Serialize(dst)
}

func (b *Buffer) touch(delta int) {
	b.size += delta
	b.version++
	b.starts = nil
}

func (b *Buffer) checkLine(line int) {
	if line < 0 || line >= len(b.lines) {
		panic(fmt.Sprintf("buffer: line %d out of range [0,%d)", line, len(b.lines)))
	}
}

func (b *Buffer) lineStarts() []int {
	if b.starts != nil {
		return b.starts
	}
	starts := make([]int, len(b.lines))
	off := 0
	for i, line := range b.lines {
		starts[i] = off
		off += len(line) + 1
	}
	b.starts = starts
	return starts
}

func (b *Buffer) lineStart(row int) int {
	return b.lineStarts()[row]
}

// locate maps a valid offset to (row, col). An offset sitting on a line
// terminator resolves to the end of that line.
func (b *Buffer) locate(offset int) (row, col int) {
	starts := b.lineStarts()
	row = sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	return row, offset - starts[row]
}

func splitLines(text string) [][]rune {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, len(parts))
	for i, p := range parts {
		lines[i] = []rune(p)
	}
	return lines
}

func joinLines(lines [][]rune) string {
	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}
