package editor

import "github.com/kobzarvs/rut/internal/buffer"

type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "unknown"
	}
}

// Position is a cursor location: Row indexes buffer lines, Col indexes runes
// within the line. It may point past the end of a line or past the last
// line; Resolve reports whether it maps to a buffer offset.
type Position struct {
	Col int
	Row int
}

// Cursor tracks the screen cursor. Movement never wraps between lines.
type Cursor struct {
	pos Position
}

func (c *Cursor) Position() Position { return c.pos }

func (c *Cursor) SetPosition(p Position) { c.pos = p }

// Move shifts the cursor one step and reports whether it moved. Up and Down
// stay within [0, LineCount()-1] and keep the column as is. Left stops at
// column 0, Right at the end of the line.
func (c *Cursor) Move(dir Direction, buf *buffer.Buffer) bool {
	switch dir {
	case DirUp:
		if c.pos.Row > 0 {
			c.pos.Row--
			return true
		}
	case DirDown:
		if c.pos.Row < buf.LineCount()-1 {
			c.pos.Row++
			return true
		}
	case DirLeft:
		if c.pos.Col > 0 {
			c.pos.Col--
			return true
		}
	case DirRight:
		if c.pos.Row < buf.LineCount() && c.pos.Col < buf.LineLength(c.pos.Row) {
			c.pos.Col++
			return true
		}
	}
	return false
}

// LineStart moves the cursor to column 0.
func (c *Cursor) LineStart() { c.pos.Col = 0 }

// Resolve returns the buffer offset under the cursor, or false when the
// cursor is outside the text.
func (c *Cursor) Resolve(buf *buffer.Buffer) (int, bool) {
	return buf.ToOffset(c.pos.Col, c.pos.Row)
}
