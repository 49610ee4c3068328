package uinput

import (
	"fmt"

	"github.com/veikk/veikkd-go/core"
)

// Publisher implements core.Publisher on /dev/uinput.
type Publisher struct {
	path string
}

func New(path string) *Publisher {
	return &Publisher{path: path}
}

// axisCodes maps core axes to kernel axis codes.
var axisCodes = map[core.Axis]uint16{
	core.AxisX:        absX,
	core.AxisY:        absY,
	core.AxisPressure: absPressure,
}

// keyCodes maps core keys to kernel key codes. The numbered buttons
// land on F1-F13 (F13 doubling as the wheel center) and the wheel
// rotation on F14/F15, matching the kernel driver; the gesture pad
// uses the gamepad direction buttons plus the double-tap tool code.
var keyCodes = map[core.Key]uint16{
	core.KeyTouch:   btnTouch,
	core.KeyStylus:  btnStylus,
	core.KeyStylus2: btnStylus2,

	core.KeyButton1:  keyF1,
	core.KeyButton2:  keyF2,
	core.KeyButton3:  keyF3,
	core.KeyButton4:  keyF4,
	core.KeyButton5:  keyF5,
	core.KeyButton6:  keyF6,
	core.KeyButton7:  keyF7,
	core.KeyButton8:  keyF8,
	core.KeyButton9:  keyF9,
	core.KeyButton10: keyF10,
	core.KeyButton11: keyF11,
	core.KeyButton12: keyF12,
	core.KeyButton13: keyF13,

	core.KeyWheelLeft:  keyF14,
	core.KeyWheelRight: keyF15,

	core.KeySwipeUp:    btnNorth,
	core.KeySwipeDown:  btnSouth,
	core.KeySwipeLeft:  btnWest,
	core.KeySwipeRight: btnEast,
	core.KeyDoubleTap:  btnToolDoubletap,
}

func (p *Publisher) Pen(model *core.Model) (core.EventSink, error) {
	dev, err := Create(p.path, DeviceConfig{
		Name:    model.Name + " Pen",
		Vendor:  core.VendorID,
		Product: model.ProductID,
		Props:   []int{propPointer},
		Keys:    []int{btnTouch, btnStylus, btnStylus2},
		Axes: []AbsAxis{
			{Code: absX, Min: 0, Max: model.XMax},
			{Code: absY, Min: 0, Max: model.YMax},
			{Code: absPressure, Min: 0, Max: model.PressureMax},
		},
	})
	if err != nil {
		return nil, err
	}
	return &sink{dev: dev}, nil
}

func (p *Publisher) Buttons(model *core.Model) (core.EventSink, error) {
	dev, err := Create(p.path, DeviceConfig{
		Name:    model.Name + " Keyboard",
		Vendor:  core.VendorID,
		Product: model.ProductID,
		Props:   []int{propButtonpad},
		Keys: []int{
			keyF1, keyF2, keyF3, keyF4, keyF5, keyF6, keyF7, keyF8,
			keyF9, keyF10, keyF11, keyF12, keyF13, keyF14, keyF15,
		},
		Repeat: true,
		Scan:   true,
	})
	if err != nil {
		return nil, err
	}
	return &sink{dev: dev}, nil
}

func (p *Publisher) Pad(model *core.Model) (core.EventSink, error) {
	dev, err := Create(p.path, DeviceConfig{
		Name:    model.Name + " Gesture Pad",
		Vendor:  core.VendorID,
		Product: model.ProductID,
		Keys: []int{
			btnNorth, btnSouth, btnWest, btnEast, btnToolDoubletap,
		},
		Repeat: true,
		Scan:   true,
	})
	if err != nil {
		return nil, err
	}
	return &sink{dev: dev}, nil
}

// sink adapts one Device to core.EventSink.
type sink struct {
	dev *Device
}

func (s *sink) Abs(axis core.Axis, value int32) error {
	code, ok := axisCodes[axis]
	if !ok {
		return fmt.Errorf("unmapped axis %d", axis)
	}
	return s.dev.Emit(evAbs, code, value)
}

func (s *sink) Key(key core.Key, pressed bool) error {
	code, ok := keyCodes[key]
	if !ok {
		return fmt.Errorf("unmapped key %d", key)
	}
	value := int32(0)
	if pressed {
		value = 1
	}
	return s.dev.Emit(evKey, code, value)
}

func (s *sink) Sync() error {
	return s.dev.Sync()
}

func (s *sink) Close() error {
	return s.dev.Close()
}
