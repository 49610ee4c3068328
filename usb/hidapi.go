package usb

import (
	"fmt"
	"sync"

	hidapi "github.com/sstallion/go-hid"

	"github.com/veikk/veikkd-go/core"
	"github.com/veikk/veikkd-go/memorywriter"
)

// proprietaryUsagePage is the vendor usage page of the interface that
// speaks the frame protocol. The tablets also expose generic
// pen/keyboard interfaces; those emit inconsistent events across
// models and are left alone, the same choice the vendor drivers make.
const proprietaryUsagePage = 0xFF0A

type HIDAPI struct {
	log *memorywriter.MemoryWriter
}

func InitHIDAPI(log *memorywriter.MemoryWriter) (*HIDAPI, error) {
	if err := hidapi.Init(); err != nil {
		return nil, err
	}
	return &HIDAPI{log: log}, nil
}

func (b *HIDAPI) Close() {
	if err := hidapi.Exit(); err != nil {
		b.log.Log(fmt.Sprintf("hidapi exit: %s", err))
	}
}

func (b *HIDAPI) Enumerate() ([]core.HIDInfo, error) {
	var infos []core.HIDInfo

	err := hidapi.Enumerate(core.VendorID, 0, func(info *hidapi.DeviceInfo) error {
		infos = append(infos, core.HIDInfo{
			Path:        info.Path,
			VendorID:    info.VendorID,
			ProductID:   info.ProductID,
			Proprietary: info.UsagePage == proprietaryUsagePage,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Has reports actual presence, not just path routing; the activation
// sequencer uses it to skip enable writes for devices that vanished
// between attach and the timer firing.
func (b *HIDAPI) Has(path string) bool {
	found := false
	err := hidapi.Enumerate(core.VendorID, 0, func(info *hidapi.DeviceInfo) error {
		if info.Path == path {
			found = true
		}
		return nil
	})
	if err != nil {
		return false
	}
	return found
}

func (b *HIDAPI) Connect(path string) (core.HIDDevice, error) {
	d, err := hidapi.OpenPath(path)
	if err != nil {
		return nil, err
	}
	return &HID{dev: d}, nil
}

// HID wraps one open hidapi handle. Reads deliver whole input
// reports; with numbered reports the report id is the first byte, so
// a proprietary frame arrives exactly as its 9 wire bytes. Writes
// likewise start with the report id, which the enable commands
// already carry.
type HID struct {
	dev    *hidapi.Device
	mutex  sync.Mutex
	closed bool
}

func (d *HID) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return errClosedDevice
	}
	d.closed = true
	return d.dev.Close()
}

func (d *HID) Write(buf []byte) (int, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return 0, errClosedDevice
	}
	return d.dev.Write(buf)
}

func (d *HID) Read(buf []byte) (int, error) {
	return d.dev.Read(buf)
}
