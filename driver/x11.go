package driver

import (
	"image"
	"unicode"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"
	"github.com/pkg/errors"
)

// X11 keysym values for the named keys the key-combo grammar can produce.
const (
	xkShiftL      = 0xffe1
	xkControlL    = 0xffe3
	xkAltL        = 0xffe9
	xkSuperL      = 0xffeb
	xkEscape      = 0xff1b
	xkReturn      = 0xff0d
	xkTab         = 0xff09
	xkSpace       = 0x0020
	xkBackSpace   = 0xff08
	xkUp          = 0xff52
	xkDown        = 0xff54
	xkLeft        = 0xff51
	xkRight       = 0xff53
	xkDelete      = 0xffff
	xkInsert      = 0xff63
	xkHome        = 0xff50
	xkEnd         = 0xff57
	xkPrior       = 0xff55
	xkNext        = 0xff56
	xkPrint       = 0xff61
	xkPause       = 0xff13
	xkNumLock     = 0xff7f
	xkCapsLock    = 0xffe5
	xkF1          = 0xffbe
	xkUnicodeBase = 0x01000000
)

var namedKeysyms = map[KeyCode]uint32{
	KeyControl:     xkControlL,
	KeyAlt:         xkAltL,
	KeyShift:       xkShiftL,
	KeySuper:       xkSuperL,
	KeyEscape:      xkEscape,
	KeyReturn:      xkReturn,
	KeyTab:         xkTab,
	KeySpace:       xkSpace,
	KeyBackspace:   xkBackSpace,
	KeyUp:          xkUp,
	KeyDown:        xkDown,
	KeyLeft:        xkLeft,
	KeyRight:       xkRight,
	KeyDelete:      xkDelete,
	KeyInsert:      xkInsert,
	KeyHome:        xkHome,
	KeyEnd:         xkEnd,
	KeyPageUp:      xkPrior,
	KeyPageDown:    xkNext,
	KeyPrintScreen: xkPrint,
	KeyPause:       xkPause,
	KeyNumLock:     xkNumLock,
	KeyCapsLock:    xkCapsLock,
	KeyF1:          xkF1,
	KeyF2:          xkF1 + 1,
	KeyF3:          xkF1 + 2,
	KeyF4:          xkF1 + 3,
	KeyF5:          xkF1 + 4,
	KeyF6:          xkF1 + 5,
	KeyF7:          xkF1 + 6,
	KeyF8:          xkF1 + 7,
	KeyF9:          xkF1 + 8,
	KeyF10:         xkF1 + 9,
	KeyF11:         xkF1 + 10,
	KeyF12:         xkF1 + 11,
}

// X11Device drives the pointer and keyboard of an X display through the
// XTEST extension and captures frames from the root window. It implements
// both InputDevice and ScreenCapture.
type X11Device struct {
	conn   *xgb.Conn
	root   xproto.Window
	screen *xproto.ScreenInfo

	// Keyboard mapping snapshot, taken at connect time.
	firstKeycode  xproto.Keycode
	symsPerCode   int
	keysyms       []xproto.Keysym
	shiftKeycode  xproto.Keycode
	haveShiftCode bool
}

// NewX11Device connects to the display named by the DISPLAY-style string
// (empty means the DISPLAY environment variable) and initializes XTEST.
func NewX11Device(display string) (*X11Device, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X display")
	}

	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "XTEST extension unavailable")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)

	d := &X11Device{
		conn:   conn,
		root:   screen.Root,
		screen: screen,
	}

	if err := d.loadKeyboardMapping(setup); err != nil {
		conn.Close()
		return nil, err
	}

	if kc, _, ok := d.findKeycode(xkShiftL); ok {
		d.shiftKeycode = kc
		d.haveShiftCode = true
	}

	return d, nil
}

func (d *X11Device) Close() {
	d.conn.Close()
}

func (d *X11Device) loadKeyboardMapping(setup *xproto.SetupInfo) error {
	first := setup.MinKeycode
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)

	reply, err := xproto.GetKeyboardMapping(d.conn, first, count).Reply()
	if err != nil {
		return errors.Wrap(err, "failed to fetch keyboard mapping")
	}

	d.firstKeycode = first
	d.symsPerCode = int(reply.KeysymsPerKeycode)
	d.keysyms = reply.Keysyms
	return nil
}

// findKeycode locates the keycode producing the given keysym. Only the
// unshifted and shifted columns are consulted; shifted matches report
// that a Shift press is needed around the key.
func (d *X11Device) findKeycode(sym uint32) (kc xproto.Keycode, shifted bool, ok bool) {
	if d.symsPerCode == 0 {
		return 0, false, false
	}
	cols := d.symsPerCode
	if cols > 2 {
		cols = 2
	}
	for col := 0; col < cols; col++ {
		for i := 0; i*d.symsPerCode+col < len(d.keysyms); i++ {
			if uint32(d.keysyms[i*d.symsPerCode+col]) == sym {
				return d.firstKeycode + xproto.Keycode(i), col == 1, true
			}
		}
	}
	return 0, false, false
}

func (d *X11Device) fakeInput(eventType byte, detail byte, rootX, rootY int16) error {
	return xtest.FakeInputChecked(d.conn, eventType, detail, 0, d.root, rootX, rootY, 0).Check()
}

func buttonDetail(b Button) byte {
	switch b {
	case ButtonLeft:
		return 1
	case ButtonMiddle:
		return 2
	case ButtonRight:
		return 3
	}
	return 0
}

func (d *X11Device) PressButton(b Button) error {
	detail := buttonDetail(b)
	if detail == 0 {
		return errors.Errorf("unknown button %d", b)
	}
	return errors.Wrapf(d.fakeInput(xproto.ButtonPress, detail, 0, 0), "button %s press", b)
}

func (d *X11Device) ReleaseButton(b Button) error {
	detail := buttonDetail(b)
	if detail == 0 {
		return errors.Errorf("unknown button %d", b)
	}
	return errors.Wrapf(d.fakeInput(xproto.ButtonRelease, detail, 0, 0), "button %s release", b)
}

func (d *X11Device) MoveAbsolute(x, y int) error {
	// Detail 0 marks the motion event as absolute.
	return errors.Wrapf(d.fakeInput(xproto.MotionNotify, 0, int16(x), int16(y)),
		"absolute move to (%d,%d)", x, y)
}

func (d *X11Device) MoveRelative(dx, dy int) error {
	// Detail 1 marks the motion event as relative.
	return errors.Wrapf(d.fakeInput(xproto.MotionNotify, 1, int16(dx), int16(dy)),
		"relative move by (%d,%d)", dx, dy)
}

func keysymForKey(k Key) (uint32, error) {
	if k.Code != KeyUnicode {
		sym, ok := namedKeysyms[k.Code]
		if !ok {
			return 0, errors.Errorf("no keysym for key %q", k)
		}
		return sym, nil
	}
	return keysymForRune(k.Rune), nil
}

func keysymForRune(r rune) uint32 {
	// Latin-1 characters map directly onto their keysym value; everything
	// else uses the X11 unicode keysym range.
	if r >= 0x20 && r <= 0xff {
		return uint32(r)
	}
	return xkUnicodeBase | uint32(r)
}

func (d *X11Device) keycodeFor(k Key) (xproto.Keycode, bool, error) {
	sym, err := keysymForKey(k)
	if err != nil {
		return 0, false, err
	}
	kc, shifted, ok := d.findKeycode(sym)
	if !ok {
		return 0, false, errors.Errorf("key %q is not mapped on this keyboard", k)
	}
	return kc, shifted, nil
}

func (d *X11Device) PressKey(k Key) error {
	kc, shifted, err := d.keycodeFor(k)
	if err != nil {
		return err
	}
	if shifted && d.haveShiftCode {
		if err := d.fakeInput(xproto.KeyPress, byte(d.shiftKeycode), 0, 0); err != nil {
			return errors.Wrapf(err, "shift press for key %q", k)
		}
	}
	return errors.Wrapf(d.fakeInput(xproto.KeyPress, byte(kc), 0, 0), "key %q press", k)
}

func (d *X11Device) ReleaseKey(k Key) error {
	kc, shifted, err := d.keycodeFor(k)
	if err != nil {
		return err
	}
	if err := d.fakeInput(xproto.KeyRelease, byte(kc), 0, 0); err != nil {
		return errors.Wrapf(err, "key %q release", k)
	}
	if shifted && d.haveShiftCode {
		if err := d.fakeInput(xproto.KeyRelease, byte(d.shiftKeycode), 0, 0); err != nil {
			return errors.Wrapf(err, "shift release for key %q", k)
		}
	}
	return nil
}

func (d *X11Device) TypeText(text string) error {
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return errors.Errorf("cannot type control character %U", r)
		}
		key := UnicodeKey(r)
		if r == '\n' {
			key = NamedKey(KeyReturn)
		}
		if err := d.PressKey(key); err != nil {
			return errors.Wrapf(err, "typing %q", r)
		}
		if err := d.ReleaseKey(key); err != nil {
			return errors.Wrapf(err, "typing %q", r)
		}
	}
	return nil
}

func (d *X11Device) CursorPosition() (int, int, error) {
	reply, err := xproto.QueryPointer(d.conn, d.root).Reply()
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to query pointer")
	}
	return int(reply.RootX), int(reply.RootY), nil
}

func (d *X11Device) DisplaySize() (int, int, error) {
	return int(d.screen.WidthInPixels), int(d.screen.HeightInPixels), nil
}

func (d *X11Device) CaptureFrame() (image.Image, error) {
	w := d.screen.WidthInPixels
	h := d.screen.HeightInPixels

	reply, err := xproto.GetImage(d.conn, xproto.ImageFormatZPixmap,
		xproto.Drawable(d.root), 0, 0, w, h, 0xffffffff).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to capture root window")
	}

	// The root window is BGRx in ZPixmap format at depth 24.
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	data := reply.Data
	for i := 0; i+3 < len(data) && i < len(img.Pix); i += 4 {
		img.Pix[i] = data[i+2]
		img.Pix[i+1] = data[i+1]
		img.Pix[i+2] = data[i]
		img.Pix[i+3] = 0xff
	}
	return img, nil
}
