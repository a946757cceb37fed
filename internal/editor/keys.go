package editor

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

const (
	actionQuit       = "quit"
	actionSave       = "save"
	actionMoveUp     = "move_up"
	actionMoveDown   = "move_down"
	actionMoveLeft   = "move_left"
	actionMoveRight  = "move_right"
	actionBackspace  = "backspace"
	actionDeleteChar = "delete_char"
	actionNewline    = "newline"
)

// keyString names the key of ev the way keymaps spell it ("ctrl+s",
// "left", "del"). Plain and shifted runes are text, not bindings, and
// yield "".
func keyString(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	switch ev.Key() {
	case tcell.KeyRune:
		r := strings.ToLower(string(ev.Rune()))
		if mods&tcell.ModCtrl != 0 {
			return "ctrl+" + r
		}
		if mods&(tcell.ModAlt|tcell.ModMeta) != 0 {
			return "alt+" + r
		}
		return ""
	case tcell.KeyUp:
		return "up"
	case tcell.KeyDown:
		return "down"
	case tcell.KeyLeft:
		return "left"
	case tcell.KeyRight:
		return "right"
	case tcell.KeyHome:
		return "home"
	case tcell.KeyEnd:
		return "end"
	case tcell.KeyPgUp:
		return "pgup"
	case tcell.KeyPgDn:
		return "pgdn"
	// Checked before ctrlKeyName: KeyBackspace == KeyCtrlH, KeyEnter == KeyCtrlM
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyTab:
		return "tab"
	case tcell.KeyDelete:
		return "del"
	case tcell.KeyEscape:
		return "esc"
	}
	return ctrlKeyName(ev.Key())
}

// isTextInput reports whether ev types a character: a rune with no
// modifier other than Shift.
func isTextInput(ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyRune {
		return false
	}
	return ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0
}

func ctrlKeyName(key tcell.Key) string {
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(key-tcell.KeyCtrlA)))
	}
	return ""
}
