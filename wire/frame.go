package wire

import (
	"encoding/binary"
	"errors"
)

// Package wire implements the proprietary VEIKK report protocol:
// the fixed-size input frames the tablet emits on its vendor interface
// and the output commands that switch the tablet into that mode.
//
// Everything here is a pure codec; no transport or device state.

const (
	// FrameSize is the size of every proprietary frame, in both
	// directions. The tablets never emit anything else on the
	// vendor interface.
	FrameSize = 9

	// ReportTag is the leading byte of every proprietary frame.
	ReportTag = 0x09
)

// Frame type selectors (byte 1 of an input frame).
const (
	TypePen     = 0x41
	TypeButtons = 0x42
	TypePad     = 0x43
)

var ErrMalformedFrame = errors.New("malformed report frame")

// Frame is a validated input frame. Payload aliases the caller's
// buffer and is always exactly 7 bytes.
type Frame struct {
	Type    byte
	Payload []byte
}

// Parse validates the length and leading tag of a raw report.
// The type byte is not checked here; unknown types are a routing
// decision, not a protocol violation.
func Parse(raw []byte) (Frame, error) {
	if len(raw) != FrameSize || raw[0] != ReportTag {
		return Frame{}, ErrMalformedFrame
	}
	return Frame{Type: raw[1], Payload: raw[2:FrameSize]}, nil
}

// PenReport is the decoded payload of a TypePen frame.
type PenReport struct {
	Touch   bool
	Stylus  bool
	Stylus2 bool

	X        uint16
	Y        uint16
	Pressure uint16
}

// Pen decodes the payload of a pen frame. Stateless; axis values are
// passed through unclamped, range enforcement belongs to the
// published input device.
func (f Frame) Pen() PenReport {
	return PenReport{
		Touch:    f.Payload[0]&0x01 != 0,
		Stylus:   f.Payload[0]&0x02 != 0,
		Stylus2:  f.Payload[0]&0x04 != 0,
		X:        binary.LittleEndian.Uint16(f.Payload[1:3]),
		Y:        binary.LittleEndian.Uint16(f.Payload[3:5]),
		Pressure: binary.LittleEndian.Uint16(f.Payload[5:7]),
	}
}

// ButtonsReport is the decoded payload of a TypeButtons frame.
// The same frame type carries two independent bitmask groups: the
// numbered buttons (subtype 1) and the wheel left/right rotation
// (any other subtype; the hardware sends 3).
type ButtonsReport struct {
	Wheel   bool // wheel rotation group rather than the numbered buttons
	Pressed bool
	Mask    uint16
}

func (f Frame) Buttons() ButtonsReport {
	return ButtonsReport{
		Wheel:   f.Payload[0] != 1,
		Pressed: f.Payload[1] != 0,
		Mask:    binary.LittleEndian.Uint16(f.Payload[2:4]),
	}
}

// PadReport is the decoded payload of a TypePad frame. The mask uses
// bits 0-3 for the four swipe directions and bit 4 for double-tap.
type PadReport struct {
	Pressed bool
	Mask    uint8
}

func (f Frame) Pad() PadReport {
	return PadReport{
		Pressed: f.Payload[0] != 0,
		Mask:    f.Payload[1],
	}
}

// Enable commands, one per subsystem. Sending one switches the
// corresponding subsystem into proprietary reporting. They have to be
// spaced out in time; the firmware silently drops commands that
// arrive too close together.
var (
	penEnable     = [FrameSize]byte{ReportTag, 0x01, 0x04}
	buttonsEnable = [FrameSize]byte{ReportTag, 0x02, 0x02}
	padEnable     = [FrameSize]byte{ReportTag, 0x03, 0x02}
)

// PenEnable returns a fresh copy of the pen enable command.
func PenEnable() []byte {
	c := penEnable
	return c[:]
}

// ButtonsEnable returns a fresh copy of the buttons enable command.
func ButtonsEnable() []byte {
	c := buttonsEnable
	return c[:]
}

// PadEnable returns a fresh copy of the gesture pad enable command.
func PadEnable() []byte {
	c := padEnable
	return c[:]
}
