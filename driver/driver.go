// Package driver provides access to the machine's input and display
// hardware behind small capability interfaces, so the rest of the system
// can run against either the real X11 backend or an in-memory mock.
package driver

import "image"

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonRight
	ButtonMiddle
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	}
	return "unknown"
}

// KeyCode identifies a named key. KeyUnicode marks a key addressed by its
// character instead of a name.
type KeyCode int

const (
	KeyUnicode KeyCode = iota
	KeyControl
	KeyAlt
	KeyShift
	KeySuper
	KeyEscape
	KeyReturn
	KeyTab
	KeySpace
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyPrintScreen
	KeyPause
	KeyNumLock
	KeyCapsLock
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyNames = map[KeyCode]string{
	KeyControl:     "control",
	KeyAlt:         "alt",
	KeyShift:       "shift",
	KeySuper:       "super",
	KeyEscape:      "escape",
	KeyReturn:      "return",
	KeyTab:         "tab",
	KeySpace:       "space",
	KeyBackspace:   "backspace",
	KeyUp:          "up",
	KeyDown:        "down",
	KeyLeft:        "left",
	KeyRight:       "right",
	KeyDelete:      "delete",
	KeyInsert:      "insert",
	KeyHome:        "home",
	KeyEnd:         "end",
	KeyPageUp:      "pageup",
	KeyPageDown:    "pagedown",
	KeyPrintScreen: "printscreen",
	KeyPause:       "pause",
	KeyNumLock:     "numlock",
	KeyCapsLock:    "capslock",
	KeyF1:          "f1",
	KeyF2:          "f2",
	KeyF3:          "f3",
	KeyF4:          "f4",
	KeyF5:          "f5",
	KeyF6:          "f6",
	KeyF7:          "f7",
	KeyF8:          "f8",
	KeyF9:          "f9",
	KeyF10:         "f10",
	KeyF11:         "f11",
	KeyF12:         "f12",
}

// Key is a single keyboard key, either a named key or a unicode character.
type Key struct {
	Code KeyCode
	Rune rune
}

func NamedKey(code KeyCode) Key {
	return Key{Code: code}
}

func UnicodeKey(r rune) Key {
	return Key{Code: KeyUnicode, Rune: r}
}

func (k Key) String() string {
	if k.Code == KeyUnicode {
		return string(k.Rune)
	}
	if name, ok := keyNames[k.Code]; ok {
		return name
	}
	return "unknown"
}

// InputDevice is the contract for injecting pointer and keyboard input.
// The action queue worker is the only caller; implementations do not need
// to be safe for concurrent use.
type InputDevice interface {
	PressButton(b Button) error
	ReleaseButton(b Button) error
	MoveAbsolute(x, y int) error
	MoveRelative(dx, dy int) error
	PressKey(k Key) error
	ReleaseKey(k Key) error
	TypeText(text string) error
	CursorPosition() (x, y int, err error)
}

// ScreenCapture is the contract for grabbing frames from the primary
// display.
type ScreenCapture interface {
	CaptureFrame() (image.Image, error)
	DisplaySize() (width, height int, err error)
}
