package core

import (
	"errors"
	"fmt"
)

// VendorID is the USB vendor id shared by all VEIKK tablets.
const VendorID = 0x2FEB

// Model describes one tablet family: axis ranges for the pen and which
// of the optional subsystems (numbered buttons, gesture pad) exist.
// Note that the wheels (e.g. on VK1560, A15 Pro) count as buttons and
// are not a gesture pad; they share the buttons report type.
type Model struct {
	Name      string
	ProductID uint16

	XMax        int32
	YMax        int32
	PressureMax int32

	HasButtons bool
	HasPad     bool
}

var ErrUnknownModel = errors.New("unknown tablet model")

var models = map[uint16]*Model{
	0x0001: {
		Name: "VEIKK S640", ProductID: 0x0001,
		XMax: 30480, YMax: 20320, PressureMax: 8192,
	},
	0x0002: {
		Name: "VEIKK A30", ProductID: 0x0002,
		XMax: 32768, YMax: 32768, PressureMax: 8192,
		HasButtons: true, HasPad: true,
	},
	0x0003: {
		Name: "VEIKK A50", ProductID: 0x0003,
		XMax: 50800, YMax: 30480, PressureMax: 8192,
		HasButtons: true, HasPad: true,
	},
	0x0004: {
		Name: "VEIKK A15", ProductID: 0x0004,
		XMax: 32768, YMax: 32768, PressureMax: 8192,
		HasButtons: true, HasPad: true,
	},
	0x0006: {
		Name: "VEIKK A15 Pro", ProductID: 0x0006,
		XMax: 32768, YMax: 32768, PressureMax: 8192,
		HasButtons: true, HasPad: true,
	},
	0x1001: {
		Name: "VEIKK VK1560", ProductID: 0x1001,
		XMax: 34420, YMax: 19360, PressureMax: 8192,
		HasButtons: true,
	},
}

// LookupModel returns the descriptor for a product id. The table is
// immutable after process start, so lookups are safe from any
// goroutine. Supporting a new tablet means adding a table entry; the
// protocol does not change.
func LookupModel(productID uint16) (*Model, error) {
	m, ok := models[productID]
	if !ok {
		return nil, fmt.Errorf("product 0x%04x: %w", productID, ErrUnknownModel)
	}
	return m, nil
}
