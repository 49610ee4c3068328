package usb

import (
	"errors"
	"fmt"

	"github.com/veikk/veikkd-go/core"
)

var ErrNotFound = fmt.Errorf("device not found")

// USB multiplexes several transports behind one core.HIDBus: the real
// hidapi bus and, in development, the UDP emulator.
type USB struct {
	buses []core.HIDBus
}

func Init(buses ...core.HIDBus) *USB {
	return &USB{
		buses: buses,
	}
}

func (b *USB) Has(path string) bool {
	for _, b := range b.buses {
		if b.Has(path) {
			return true
		}
	}
	return false
}

func (b *USB) Enumerate() ([]core.HIDInfo, error) {
	var infos []core.HIDInfo

	for _, b := range b.buses {
		l, err := b.Enumerate()
		if err != nil {
			return nil, err
		}
		infos = append(infos, l...)
	}
	return infos, nil
}

func (b *USB) Connect(path string) (core.HIDDevice, error) {
	for _, b := range b.buses {
		if b.Has(path) {
			return b.Connect(path)
		}
	}
	return nil, ErrNotFound
}

var errClosedDevice = errors.New("closed device")
