package service

import (
	"strings"
	"unicode/utf8"

	"deskcontrol/driver"

	"github.com/pkg/errors"
)

// KeyCombo is a parsed key-press expression: zero or more modifiers in
// the order they were written, plus the main key.
type KeyCombo struct {
	Modifiers []driver.Key
	Key       driver.Key
}

// ParseKeyCombo parses expressions like "c", "ctrl+c" or
// "ctrl+alt+shift+a". Every token except the last must name a modifier;
// the last token may be any named special key, a function key, or a
// single unicode character. Matching is case-insensitive.
func ParseKeyCombo(s string) (KeyCombo, error) {
	parts := strings.Split(s, "+")

	if len(parts) == 1 {
		key, err := parseSingleKey(parts[0])
		if err != nil {
			return KeyCombo{}, err
		}
		return KeyCombo{Key: key}, nil
	}

	modifiers := make([]driver.Key, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		mod, ok := parseModifier(part)
		if !ok {
			return KeyCombo{}, errors.Errorf("unknown modifier: %s", part)
		}
		modifiers = append(modifiers, mod)
	}

	key, err := parseSingleKey(parts[len(parts)-1])
	if err != nil {
		return KeyCombo{}, err
	}

	return KeyCombo{Modifiers: modifiers, Key: key}, nil
}

func parseModifier(s string) (driver.Key, bool) {
	switch strings.ToLower(s) {
	case "ctrl", "control":
		return driver.NamedKey(driver.KeyControl), true
	case "alt":
		return driver.NamedKey(driver.KeyAlt), true
	case "shift":
		return driver.NamedKey(driver.KeyShift), true
	case "super", "win", "windows", "command":
		return driver.NamedKey(driver.KeySuper), true
	}
	return driver.Key{}, false
}

var specialKeys = map[string]driver.KeyCode{
	"esc":         driver.KeyEscape,
	"escape":      driver.KeyEscape,
	"return":      driver.KeyReturn,
	"enter":       driver.KeyReturn,
	"tab":         driver.KeyTab,
	"space":       driver.KeySpace,
	"backspace":   driver.KeyBackspace,
	"up":          driver.KeyUp,
	"down":        driver.KeyDown,
	"left":        driver.KeyLeft,
	"right":       driver.KeyRight,
	"delete":      driver.KeyDelete,
	"insert":      driver.KeyInsert,
	"home":        driver.KeyHome,
	"end":         driver.KeyEnd,
	"pageup":      driver.KeyPageUp,
	"pagedown":    driver.KeyPageDown,
	"printscreen": driver.KeyPrintScreen,
	"pause":       driver.KeyPause,
	"numlock":     driver.KeyNumLock,
	"capslock":    driver.KeyCapsLock,
	"ctrl":        driver.KeyControl,
	"control":     driver.KeyControl,
	"alt":         driver.KeyAlt,
	"shift":       driver.KeyShift,
	"super":       driver.KeySuper,
	"win":         driver.KeySuper,
	"windows":     driver.KeySuper,
	"command":     driver.KeySuper,
	"f1":          driver.KeyF1,
	"f2":          driver.KeyF2,
	"f3":          driver.KeyF3,
	"f4":          driver.KeyF4,
	"f5":          driver.KeyF5,
	"f6":          driver.KeyF6,
	"f7":          driver.KeyF7,
	"f8":          driver.KeyF8,
	"f9":          driver.KeyF9,
	"f10":         driver.KeyF10,
	"f11":         driver.KeyF11,
	"f12":         driver.KeyF12,
}

func parseSingleKey(s string) (driver.Key, error) {
	lower := strings.ToLower(s)

	if code, ok := specialKeys[lower]; ok {
		return driver.NamedKey(code), nil
	}

	// Numpad keys have no dedicated keysym mapping here, so they fall
	// back to their unicode digit.
	if strings.HasPrefix(lower, "kp_") && len(lower) == 4 && lower[3] >= '0' && lower[3] <= '9' {
		return driver.UnicodeKey(rune(lower[3])), nil
	}

	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return driver.UnicodeKey(r), nil
	}

	return driver.Key{}, errors.Errorf("invalid key: %s", s)
}
