package driver

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

// MockDevice is a deterministic in-memory implementation of InputDevice
// and ScreenCapture for tests. It records every operation in order,
// tracks cursor state, and can be told to fail specific operations.
type MockDevice struct {
	mu      sync.Mutex
	ops     []string
	cursorX int
	cursorY int
	width   int
	height  int
	fail    map[string]error
}

func NewMockDevice() *MockDevice {
	return &MockDevice{
		width:  1920,
		height: 1080,
		fail:   make(map[string]error),
	}
}

// FailOn makes every operation with the given name (e.g. "press_button",
// "move_relative", "type_text") return err.
func (m *MockDevice) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = err
}

// ClearFailures removes all configured failures.
func (m *MockDevice) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = make(map[string]error)
}

// Operations returns a copy of the recorded operation log.
func (m *MockDevice) Operations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ops := make([]string, len(m.ops))
	copy(ops, m.ops)
	return ops
}

// LastOperation returns the most recently recorded operation, or "".
func (m *MockDevice) LastOperation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ops) == 0 {
		return ""
	}
	return m.ops[len(m.ops)-1]
}

// Reset clears the operation log and cursor state.
func (m *MockDevice) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
	m.cursorX, m.cursorY = 0, 0
}

func (m *MockDevice) record(op string, args string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[op]; ok {
		return err
	}
	entry := op
	if args != "" {
		entry = op + " " + args
	}
	m.ops = append(m.ops, entry)
	return nil
}

func (m *MockDevice) PressButton(b Button) error {
	return m.record("press_button", b.String())
}

func (m *MockDevice) ReleaseButton(b Button) error {
	return m.record("release_button", b.String())
}

func (m *MockDevice) MoveAbsolute(x, y int) error {
	if err := m.record("move_absolute", fmt.Sprintf("%d,%d", x, y)); err != nil {
		return err
	}
	m.mu.Lock()
	m.cursorX, m.cursorY = x, y
	m.mu.Unlock()
	return nil
}

func (m *MockDevice) MoveRelative(dx, dy int) error {
	if err := m.record("move_relative", fmt.Sprintf("%d,%d", dx, dy)); err != nil {
		return err
	}
	m.mu.Lock()
	m.cursorX += dx
	m.cursorY += dy
	m.mu.Unlock()
	return nil
}

func (m *MockDevice) PressKey(k Key) error {
	return m.record("press_key", k.String())
}

func (m *MockDevice) ReleaseKey(k Key) error {
	return m.record("release_key", k.String())
}

func (m *MockDevice) TypeText(text string) error {
	return m.record("type_text", text)
}

func (m *MockDevice) CursorPosition() (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail["cursor_position"]; ok {
		return 0, 0, err
	}
	m.ops = append(m.ops, "cursor_position")
	return m.cursorX, m.cursorY, nil
}

func (m *MockDevice) CaptureFrame() (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail["capture_frame"]; ok {
		return nil, err
	}
	m.ops = append(m.ops, "capture_frame")
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.Black)
	return img, nil
}

func (m *MockDevice) DisplaySize() (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height, nil
}
