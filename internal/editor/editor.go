package editor

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/rut/internal/buffer"
	"github.com/kobzarvs/rut/internal/config"
	"github.com/kobzarvs/rut/internal/logger"
)

type State int

const (
	StateRunning State = iota
	StateExiting
)

func (s State) String() string {
	if s == StateExiting {
		return "exiting"
	}
	return "running"
}

// Result reports what handling one key event did.
type Result struct {
	Changed bool // buffer mutated
	Moved   bool // cursor moved
	Save    bool // caller should persist a snapshot
	Exit    bool // editor entered StateExiting
}

// Editor is the edit state machine. It owns the buffer and the cursor and
// is driven from a single goroutine, one key event at a time.
type Editor struct {
	buf      *buffer.Buffer
	cursor   Cursor
	state    State
	filename string
	keymap   map[string]string
	tabWidth int

	scrollY    int
	scrollX    int
	viewHeight int

	savedVersion   uint64
	lastSavedChars int
	savesPending   int
	statusMessage  string

	styleMain        tcell.Style
	styleStatus      tcell.Style
	stylePlaceholder tcell.Style

	// actionHook observes every executed action. Tests only.
	actionHook func(action string)
}

func New(cfg config.Config, buf *buffer.Buffer, filename string) *Editor {
	keymap := make(map[string]string, len(cfg.Keymap))
	for k, v := range cfg.Keymap {
		keymap[k] = v
	}
	tabWidth := cfg.Editor.TabWidth
	if tabWidth < 1 {
		tabWidth = 1
	}
	mainFg := parseColor(cfg.Theme.Foreground, tcell.ColorWhite)
	mainBg := parseColor(cfg.Theme.Background, tcell.ColorBlack)
	statusFg := parseColor(cfg.Theme.StatuslineForeground, tcell.ColorBlack)
	statusBg := parseColor(cfg.Theme.StatuslineBackground, tcell.ColorGray)
	placeholderFg := parseColor(cfg.Theme.PlaceholderForeground, tcell.ColorGray)
	if buf == nil {
		buf = buffer.FromString("")
	}
	return &Editor{
		buf:              buf,
		filename:         filename,
		keymap:           keymap,
		tabWidth:         tabWidth,
		savedVersion:     buf.Version(),
		styleMain:        tcell.StyleDefault.Foreground(mainFg).Background(mainBg),
		styleStatus:      tcell.StyleDefault.Foreground(statusFg).Background(statusBg),
		stylePlaceholder: tcell.StyleDefault.Foreground(placeholderFg).Background(mainBg),
	}
}

func (e *Editor) Buffer() *buffer.Buffer { return e.buf }

func (e *Editor) Cursor() Position { return e.cursor.Position() }

func (e *Editor) State() State { return e.state }

// Dirty reports whether the buffer changed since the last completed save.
func (e *Editor) Dirty() bool { return e.buf.Version() != e.savedVersion }

// CurrentBufferIndex returns the buffer offset under the cursor, or false
// when the cursor is outside the text.
func (e *Editor) CurrentBufferIndex() (int, bool) {
	return e.cursor.Resolve(e.buf)
}

// HandleKey processes one key event. Once the editor is exiting every
// further event is ignored.
func (e *Editor) HandleKey(ev *tcell.EventKey) Result {
	if e.state == StateExiting {
		return Result{}
	}
	if e.savesPending == 0 {
		e.statusMessage = ""
	}
	if key := keyString(ev); key != "" {
		if action, ok := e.keymap[key]; ok {
			return e.execAction(action)
		}
		return Result{}
	}
	if isTextInput(ev) {
		return e.insertRune(ev.Rune())
	}
	return Result{}
}

func (e *Editor) execAction(action string) Result {
	if e.actionHook != nil {
		e.actionHook(action)
	}
	switch action {
	case actionQuit:
		e.state = StateExiting
		logger.Info("exit requested", "dirty", e.Dirty())
		return Result{Exit: true}
	case actionSave:
		return Result{Save: true}
	case actionMoveUp:
		return Result{Moved: e.cursor.Move(DirUp, e.buf)}
	case actionMoveDown:
		return Result{Moved: e.cursor.Move(DirDown, e.buf)}
	case actionMoveLeft:
		return Result{Moved: e.cursor.Move(DirLeft, e.buf)}
	case actionMoveRight:
		return Result{Moved: e.cursor.Move(DirRight, e.buf)}
	case actionBackspace:
		return e.backspace()
	case actionDeleteChar:
		return e.deleteChar()
	case actionNewline:
		return e.insertNewline()
	default:
		logger.Warn("unknown action", "action", action)
		return Result{}
	}
}

func (e *Editor) insertRune(r rune) Result {
	off, ok := e.cursor.Resolve(e.buf)
	if !ok {
		return Result{}
	}
	e.buf.Insert(off, r)
	return Result{Changed: true, Moved: e.cursor.Move(DirRight, e.buf)}
}

func (e *Editor) insertNewline() Result {
	off, ok := e.cursor.Resolve(e.buf)
	if !ok {
		return Result{}
	}
	e.buf.Insert(off, '\n')
	e.cursor.Move(DirDown, e.buf)
	e.cursor.LineStart()
	return Result{Changed: true, Moved: true}
}

// backspace removes the rune before the cursor. At offset 0 there is
// nothing before it.
func (e *Editor) backspace() Result {
	off, ok := e.cursor.Resolve(e.buf)
	if !ok || off == 0 {
		return Result{}
	}
	e.buf.Delete(off - 1)
	return Result{Changed: true, Moved: e.cursor.Move(DirLeft, e.buf)}
}

func (e *Editor) deleteChar() Result {
	off, ok := e.cursor.Resolve(e.buf)
	if !ok || off == e.buf.Len() {
		return Result{}
	}
	e.buf.Delete(off)
	return Result{Changed: true}
}

// Snapshot captures the buffer for a save and marks the save as pending.
func (e *Editor) Snapshot() buffer.Snapshot {
	e.savesPending++
	e.statusMessage = "saving..."
	return e.buf.Snapshot()
}

// SaveFinished records a completed save of the snapshot taken at version.
// A superseded save only releases its pending slot.
func (e *Editor) SaveFinished(version uint64, chars int, skipped bool) {
	if e.savesPending > 0 {
		e.savesPending--
	}
	if !skipped {
		e.lastSavedChars = chars
		// results may arrive out of order
		if version > e.savedVersion {
			e.savedVersion = version
		}
	}
	if e.savesPending == 0 {
		e.statusMessage = fmt.Sprintf("written %d chars", e.lastSavedChars)
	}
}

func (e *Editor) SetStatusMessage(msg string) {
	e.statusMessage = msg
}
