package editor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Render draws the visible part of the buffer, one line per screen row,
// with a status line on the last row, and places the terminal cursor.
func (e *Editor) Render(s tcell.Screen) {
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return
	}

	statusY := h - 1
	viewHeight := h - 1
	e.viewHeight = viewHeight
	e.ensureCursorVisible(viewHeight, w)

	s.SetStyle(e.styleMain)
	s.Clear()

	lineCount := e.buf.LineCount()
	for y := 0; y < viewHeight; y++ {
		row := e.scrollY + y
		if row >= lineCount {
			clearLine(s, y, w, e.styleMain)
			continue
		}
		e.drawLine(s, y, w, e.buf.Line(row))
	}
	e.renderStatusline(s, w, statusY)

	pos := e.cursor.Position()
	cx := e.cursorCell() - e.scrollX
	cy := pos.Row - e.scrollY
	if cy < 0 || cy >= viewHeight || cx < 0 || cx >= w {
		s.HideCursor()
		s.Show()
		return
	}
	s.SetCursorStyle(tcell.CursorStyleSteadyBar)
	s.ShowCursor(cx, cy)
	s.Show()
}

// cursorCell returns the display column of the cursor within its line.
// Columns past the line end count one cell each.
func (e *Editor) cursorCell() int {
	pos := e.cursor.Position()
	var line []rune
	if pos.Row >= 0 && pos.Row < e.buf.LineCount() {
		line = e.buf.Line(pos.Row)
	}
	return visualCol(line, pos.Col, e.tabWidth)
}

func (e *Editor) ensureCursorVisible(viewHeight, w int) {
	if viewHeight <= 0 {
		return
	}
	row := e.cursor.Position().Row
	if row < e.scrollY {
		e.scrollY = row
	} else if row >= e.scrollY+viewHeight {
		e.scrollY = row - viewHeight + 1
	}
	if e.scrollY < 0 {
		e.scrollY = 0
	}

	x := e.cursorCell()
	if x < e.scrollX {
		e.scrollX = x
	} else if x >= e.scrollX+w {
		e.scrollX = x - w + 1
	}
}

func (e *Editor) drawLine(s tcell.Screen, y, w int, line []rune) {
	cell := 0
	for _, r := range line {
		width := runeCells(r, cell, e.tabWidth)
		x := cell - e.scrollX
		cell += width
		if x < 0 {
			continue
		}
		if x+width > w {
			break
		}
		switch {
		case r == '\t':
			for i := 0; i < width; i++ {
				s.SetContent(x+i, y, ' ', nil, e.styleMain)
			}
		case isControl(r):
			s.SetContent(x, y, '?', nil, e.stylePlaceholder)
		default:
			s.SetContent(x, y, r, nil, e.styleMain)
		}
	}
	for x := cell - e.scrollX; x < w; x++ {
		if x >= 0 {
			s.SetContent(x, y, ' ', nil, e.styleMain)
		}
	}
}

func (e *Editor) renderStatusline(s tcell.Screen, w, y int) {
	name := e.filename
	if name == "" {
		name = "[No Name]"
	} else {
		name = filepath.Base(name)
	}
	dirty := ""
	if e.Dirty() {
		dirty = " [+]"
	}
	left := fmt.Sprintf(" %s%s ", name, dirty)
	if e.statusMessage != "" {
		left = fmt.Sprintf(" %s%s | %s ", name, dirty, e.statusMessage)
	}
	pos := e.cursor.Position()
	right := fmt.Sprintf("Ln %d, Col %d ", pos.Row+1, pos.Col+1)

	line := composeStatusLine(left, right, w)
	x := 0
	for _, r := range line {
		if x >= w {
			break
		}
		s.SetContent(x, y, r, nil, e.styleStatus)
		x += runewidth.RuneWidth(r)
	}
	for ; x < w; x++ {
		s.SetContent(x, y, ' ', nil, e.styleStatus)
	}
}

func clearLine(s tcell.Screen, y, w int, style tcell.Style) {
	for x := 0; x < w; x++ {
		s.SetContent(x, y, ' ', nil, style)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	spaceCount := width - len(leftRunes) - len(rightRunes)
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for i := 0; i < spaceCount; i++ {
		line = append(line, ' ')
	}
	line = append(line, rightRunes...)
	return line
}

// visualCol converts a rune column to a display column. Tabs advance to the
// next tab stop, wide runes take two cells, columns past the end one each.
func visualCol(line []rune, col, tabWidth int) int {
	if col < 0 {
		col = 0
	}
	cells := 0
	for i := 0; i < col; i++ {
		if i >= len(line) {
			cells += col - i
			break
		}
		cells += runeCells(line[i], cells, tabWidth)
	}
	return cells
}

func runeCells(r rune, at, tabWidth int) int {
	if tabWidth < 1 {
		tabWidth = 1
	}
	if r == '\t' {
		return tabWidth - (at % tabWidth)
	}
	if isControl(r) {
		return 1
	}
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	return 1
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
