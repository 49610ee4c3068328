package core

import "io"

// Abstract event surface between the decoder and the published virtual
// devices. The core deals in tablet controls; mapping them to host
// input codes is the publisher's business (see the uinput package),
// the same way the usb package keeps transport details out of here.

// Axis identifies an absolute axis on the pen device.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisPressure
)

// Key identifies a digital control on one of the three subsystems.
type Key int

const (
	// pen
	KeyTouch Key = iota
	KeyStylus
	KeyStylus2

	// numbered buttons; the thirteenth doubles as the wheel center
	// on models that have a wheel
	KeyButton1
	KeyButton2
	KeyButton3
	KeyButton4
	KeyButton5
	KeyButton6
	KeyButton7
	KeyButton8
	KeyButton9
	KeyButton10
	KeyButton11
	KeyButton12
	KeyButton13

	// wheel rotation
	KeyWheelLeft
	KeyWheelRight

	// gesture pad
	KeySwipeUp
	KeySwipeDown
	KeySwipeLeft
	KeySwipeRight
	KeyDoubleTap
)

// buttonKeys maps bit positions of the buttons domain to keys.
var buttonKeys = [13]Key{
	KeyButton1, KeyButton2, KeyButton3, KeyButton4, KeyButton5,
	KeyButton6, KeyButton7, KeyButton8, KeyButton9, KeyButton10,
	KeyButton11, KeyButton12, KeyButton13,
}

// padKeys maps bit positions of the pad domain to keys.
var padKeys = [5]Key{
	KeySwipeUp, KeySwipeDown, KeySwipeLeft, KeySwipeRight, KeyDoubleTap,
}

// EventSink is one published virtual input device. Events accumulate
// until Sync, which flushes them to the host as a coherent report; the
// decoder calls Sync exactly once per accepted frame.
type EventSink interface {
	Abs(axis Axis, value int32) error
	Key(key Key, pressed bool) error
	Sync() error
	Close() error
}

// Publisher creates the virtual input devices for one tablet. Pen is
// always created; Buttons and Pad only for models that have them.
type Publisher interface {
	Pen(model *Model) (EventSink, error)
	Buttons(model *Model) (EventSink, error)
	Pad(model *Model) (EventSink, error)
}

// HIDBus and HIDDevice are implemented by the usb package. Core does
// not import it; transports come in through these interfaces so the
// decode logic can be driven by fakes in tests and by the UDP
// emulator in development.

type HIDBus interface {
	Enumerate() ([]HIDInfo, error)
	Connect(path string) (HIDDevice, error)
	// Has reports whether the path is currently present on the bus.
	Has(path string) bool
}

type HIDInfo struct {
	Path      string
	VendorID  uint16
	ProductID uint16

	// Proprietary marks the vendor interface (usage page 0xFF0A).
	// Only that interface speaks the frame protocol; the generic HID
	// interfaces of the same tablet are left to the host.
	Proprietary bool
}

type HIDDevice interface {
	io.ReadWriter
	Close() error
}
