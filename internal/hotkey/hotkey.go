package hotkey

import (
	"fmt"
	"strings"
)

// Manager defines the interface for global hotkey management
type Manager interface {
	Register(accel string, callback func(pressed bool)) error
	Unregister(accel string) error
	Close() error
}

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// Accel is a parsed accelerator such as "Ctrl+Shift+T".
type Accel struct {
	Mods Modifier
	Key  string // canonical key name: "Space", "A"-"Z", "0"-"9", "F1"-"F12"
}

func (a Accel) String() string {
	var parts []string
	for _, m := range []struct {
		mod  Modifier
		name string
	}{{ModCtrl, "Ctrl"}, {ModAlt, "Alt"}, {ModShift, "Shift"}, {ModSuper, "Super"}} {
		if a.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, a.Key), "+")
}

var modifierNames = map[string]Modifier{
	"shift":   ModShift,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"super":   ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"win":     ModSuper,
}

var namedKeys = map[string]string{
	"space":  "Space",
	"enter":  "Return",
	"return": "Return",
	"tab":    "Tab",
	"esc":    "Escape",
	"escape": "Escape",
}

// Parse reads an accelerator like "Alt+Space". Modifier and key names are
// case insensitive; exactly one non-modifier key is required.
func Parse(accel string) (Accel, error) {
	var a Accel
	for _, part := range strings.Split(accel, "+") {
		p := strings.ToLower(strings.TrimSpace(part))
		if p == "" {
			return Accel{}, fmt.Errorf("invalid hotkey %q", accel)
		}
		if m, ok := modifierNames[p]; ok {
			a.Mods |= m
			continue
		}
		if a.Key != "" {
			return Accel{}, fmt.Errorf("hotkey %q has more than one key", accel)
		}
		key, ok := canonicalKey(p)
		if !ok {
			return Accel{}, fmt.Errorf("unsupported key %q in hotkey %q", part, accel)
		}
		a.Key = key
	}
	if a.Key == "" {
		return Accel{}, fmt.Errorf("hotkey %q has no key", accel)
	}
	return a, nil
}

func canonicalKey(p string) (string, bool) {
	if k, ok := namedKeys[p]; ok {
		return k, true
	}
	if len(p) == 1 && (p[0] >= 'a' && p[0] <= 'z' || p[0] >= '0' && p[0] <= '9') {
		return strings.ToUpper(p), true
	}
	if len(p) >= 2 && p[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(p[1:], "%d", &n); err == nil && n >= 1 && n <= 12 && fmt.Sprint(n) == p[1:] {
			return fmt.Sprintf("F%d", n), true
		}
	}
	return "", false
}

// X11 modifier masks.
const (
	x11ShiftMask = 1 << 0
	x11LockMask  = 1 << 1
	x11CtrlMask  = 1 << 2
	x11Mod1Mask  = 1 << 3 // Alt
	x11Mod2Mask  = 1 << 4 // NumLock
	x11Mod4Mask  = 1 << 6 // Super
)

// x11Mods returns the X11 modifier mask for m.
func x11Mods(m Modifier) int {
	mask := 0
	if m&ModShift != 0 {
		mask |= x11ShiftMask
	}
	if m&ModCtrl != 0 {
		mask |= x11CtrlMask
	}
	if m&ModAlt != 0 {
		mask |= x11Mod1Mask
	}
	if m&ModSuper != 0 {
		mask |= x11Mod4Mask
	}
	return mask
}

// x11GrabMasks lists mask plus its CapsLock/NumLock variants, since X11
// grabs match modifier state exactly.
func x11GrabMasks(mask int) []int {
	return []int{mask, mask | x11LockMask, mask | x11Mod2Mask, mask | x11LockMask | x11Mod2Mask}
}

// x11Keysym returns the keysym name for XStringToKeysym.
func x11Keysym(key string) string {
	if key == "Space" {
		return "space"
	}
	if len(key) == 1 && key[0] >= 'A' && key[0] <= 'Z' {
		return strings.ToLower(key)
	}
	return key
}

// Carbon modifier flags.
const (
	carbonCmd     = 0x0100
	carbonShift   = 0x0200
	carbonOption  = 0x0800
	carbonControl = 0x1000
)

func carbonMods(m Modifier) uint32 {
	var flags uint32
	if m&ModSuper != 0 {
		flags |= carbonCmd
	}
	if m&ModShift != 0 {
		flags |= carbonShift
	}
	if m&ModAlt != 0 {
		flags |= carbonOption
	}
	if m&ModCtrl != 0 {
		flags |= carbonControl
	}
	return flags
}

// carbonKeyCodes maps key names to ANSI virtual key codes.
var carbonKeyCodes = map[string]uint32{
	"A": 0x00, "S": 0x01, "D": 0x02, "F": 0x03, "H": 0x04, "G": 0x05, "Z": 0x06, "X": 0x07,
	"C": 0x08, "V": 0x09, "B": 0x0B, "Q": 0x0C, "W": 0x0D, "E": 0x0E, "R": 0x0F, "Y": 0x10,
	"T": 0x11, "1": 0x12, "2": 0x13, "3": 0x14, "4": 0x15, "6": 0x16, "5": 0x17, "9": 0x19,
	"7": 0x1A, "8": 0x1C, "0": 0x1D, "O": 0x1F, "U": 0x20, "I": 0x22, "P": 0x23, "L": 0x25,
	"J": 0x26, "K": 0x28, "N": 0x2D, "M": 0x2E,
	"Return": 0x24, "Tab": 0x30, "Space": 0x31, "Escape": 0x35,
	"F1": 0x7A, "F2": 0x78, "F3": 0x63, "F4": 0x76, "F5": 0x60, "F6": 0x61,
	"F7": 0x62, "F8": 0x64, "F9": 0x65, "F10": 0x6D, "F11": 0x67, "F12": 0x6F,
}

func carbonKey(key string) (uint32, bool) {
	code, ok := carbonKeyCodes[key]
	return code, ok
}
