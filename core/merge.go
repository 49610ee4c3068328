package core

import (
	"fmt"

	"github.com/veikk/veikkd-go/wire"
)

// Bitmap merge engines. The tablet reports presses and releases as
// partial bitmasks: a release frame only carries the bits being
// released, not the full state. Persisting the merged state per device
// is what keeps a modifier-style button logically held while sibling
// buttons come and go, and what makes key repeat work downstream.

// mergeBits16 applies a press/release mask to a persisted bitmap:
// press sets the bits in the mask, release clears them, and bits
// outside the mask are never touched.
func mergeBits16(state uint16, pressed bool, mask uint16) uint16 {
	if pressed {
		return state | mask
	}
	return state &^ mask
}

func mergeBits8(state uint8, pressed bool, mask uint8) uint8 {
	if pressed {
		return state | mask
	}
	return state &^ mask
}

// handlePen forwards a pen frame. Stateless: axis values and stylus
// buttons come straight from the payload.
func (d *device) handlePen(r wire.PenReport) error {
	if err := d.pen.Abs(AxisX, int32(r.X)); err != nil {
		return err
	}
	if err := d.pen.Abs(AxisY, int32(r.Y)); err != nil {
		return err
	}
	if err := d.pen.Abs(AxisPressure, int32(r.Pressure)); err != nil {
		return err
	}
	if err := d.pen.Key(KeyTouch, r.Touch); err != nil {
		return err
	}
	if err := d.pen.Key(KeyStylus, r.Stylus); err != nil {
		return err
	}
	return d.pen.Key(KeyStylus2, r.Stylus2)
}

// handleButtons merges a buttons-class frame. The subtype selects one
// of two independent bitmap domains (numbered buttons or wheel
// rotation); the other domain is left untouched. Both domains are then
// re-emitted in full from persisted state, since the frame ends in a
// single sync and a release frame does not repeat the bits still held.
func (d *device) handleButtons(r wire.ButtonsReport) error {
	d.stateMutex.Lock()
	if r.Wheel {
		d.wheelState = mergeBits8(d.wheelState, r.Pressed, uint8(r.Mask))
	} else {
		d.buttonsState = mergeBits16(d.buttonsState, r.Pressed, r.Mask)
	}
	buttons, wheel := d.buttonsState, d.wheelState
	d.stateMutex.Unlock()

	for i, key := range buttonKeys {
		if err := d.buttons.Key(key, buttons&(1<<i) != 0); err != nil {
			return err
		}
	}
	if err := d.buttons.Key(KeyWheelLeft, wheel&0x01 != 0); err != nil {
		return err
	}
	return d.buttons.Key(KeyWheelRight, wheel&0x02 != 0)
}

// handlePad merges a gesture pad frame; same algorithm as the buttons,
// single 5-bit domain.
func (d *device) handlePad(r wire.PadReport) error {
	d.stateMutex.Lock()
	d.padState = mergeBits8(d.padState, r.Pressed, r.Mask)
	pad := d.padState
	d.stateMutex.Unlock()

	for i, key := range padKeys {
		if err := d.pad.Key(key, pad&(1<<i) != 0); err != nil {
			return err
		}
	}
	return nil
}

// handleFrame validates, routes and syncs one raw report. Malformed
// frames are rejected before any interpretation; unknown frame types
// are ignored rather than treated as errors, to stay compatible with
// firmware revisions that add report types. State is only mutated and
// the sink only synced for the three known types.
func (d *device) handleFrame(raw []byte) error {
	frame, err := wire.Parse(raw)
	if err != nil {
		return err
	}

	var sink EventSink
	switch frame.Type {
	case wire.TypePen:
		sink = d.pen
		if err := d.handlePen(frame.Pen()); err != nil {
			return err
		}
	case wire.TypeButtons:
		if d.buttons == nil {
			d.log.Log(fmt.Sprintf("%s - buttons frame but model has no buttons", d.path))
			return nil
		}
		sink = d.buttons
		if err := d.handleButtons(frame.Buttons()); err != nil {
			return err
		}
	case wire.TypePad:
		if d.pad == nil {
			d.log.Log(fmt.Sprintf("%s - pad frame but model has no pad", d.path))
			return nil
		}
		sink = d.pad
		if err := d.handlePad(frame.Pad()); err != nil {
			return err
		}
	default:
		d.log.Log(fmt.Sprintf("%s - ignoring unknown frame type 0x%02x", d.path, frame.Type))
		return nil
	}

	return sink.Sync()
}
