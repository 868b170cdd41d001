//go:build linux && cgo

package hotkey

import xhotkey "golang.design/x/hotkey"

// Mod1 is Alt and Mod4 is Super on the usual X11 keymaps.
var platformMods = map[string]xhotkey.Modifier{
	"ctrl":  xhotkey.ModCtrl,
	"shift": xhotkey.ModShift,
	"alt":   xhotkey.Mod1,
	"super": xhotkey.Mod4,
}
