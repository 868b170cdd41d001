package hotkey

import xhotkey "golang.design/x/hotkey"

var platformMods = map[string]xhotkey.Modifier{
	"ctrl":  xhotkey.ModCtrl,
	"shift": xhotkey.ModShift,
	"alt":   xhotkey.ModAlt,
	"super": xhotkey.ModWin,
}
