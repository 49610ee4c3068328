// Package uinput publishes virtual input devices through /dev/uinput
// and implements core.Publisher on top of them: one pen, keyboard and
// gesture pad device per tablet, mirroring the capability surface the
// kernel driver would register.
package uinput

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DefaultPath is the uinput device node on Linux.
const DefaultPath = "/dev/uinput"

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

// userDev mirrors struct uinput_user_dev; written to the uinput fd
// little-endian before UI_DEV_CREATE. The struct has no implicit
// padding, so binary.Write produces the exact kernel layout.
type userDev struct {
	Name       [maxNameSize]byte
	ID         inputID
	EffectsMax uint32
	Absmax     [absSize]int32
	Absmin     [absSize]int32
	Absfuzz    [absSize]int32
	Absflat    [absSize]int32
}

// AbsAxis declares one absolute axis with its range.
type AbsAxis struct {
	Code uint16
	Min  int32
	Max  int32
}

// DeviceConfig describes the capability surface of one virtual device.
type DeviceConfig struct {
	Name    string
	Vendor  uint16
	Product uint16

	Props []int
	Keys  []int
	Axes  []AbsAxis

	// Repeat enables kernel key repeat (EV_REP), which the tablet
	// buttons rely on for held keys.
	Repeat bool
	// Scan enables EV_MSC/MSC_SCAN, matching the capability set the
	// original driver declares for the button devices.
	Scan bool
}

// Device is one created uinput device.
type Device struct {
	file *os.File
	name string
}

// Create registers a virtual device at the given uinput node.
func Create(path string, cfg DeviceConfig) (*Device, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	d := &Device{file: file, name: cfg.Name}
	if err := d.setup(cfg); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("setup %q: %w", cfg.Name, err)
	}
	return d, nil
}

func (d *Device) ioctl(req uint, value int) error {
	return unix.IoctlSetInt(int(d.file.Fd()), req, value)
}

func (d *Device) setup(cfg DeviceConfig) error {
	if len(cfg.Keys) > 0 {
		if err := d.ioctl(uiSetEvBit, evKey); err != nil {
			return fmt.Errorf("enable EV_KEY: %w", err)
		}
		for _, key := range cfg.Keys {
			if err := d.ioctl(uiSetKeyBit, key); err != nil {
				return fmt.Errorf("key 0x%x: %w", key, err)
			}
		}
	}

	if len(cfg.Axes) > 0 {
		if err := d.ioctl(uiSetEvBit, evAbs); err != nil {
			return fmt.Errorf("enable EV_ABS: %w", err)
		}
		for _, axis := range cfg.Axes {
			if err := d.ioctl(uiSetAbsBit, int(axis.Code)); err != nil {
				return fmt.Errorf("axis 0x%x: %w", axis.Code, err)
			}
		}
	}

	if cfg.Repeat {
		if err := d.ioctl(uiSetEvBit, evRep); err != nil {
			return fmt.Errorf("enable EV_REP: %w", err)
		}
	}
	if cfg.Scan {
		if err := d.ioctl(uiSetEvBit, evMsc); err != nil {
			return fmt.Errorf("enable EV_MSC: %w", err)
		}
		if err := d.ioctl(uiSetMscBit, mscScan); err != nil {
			return fmt.Errorf("enable MSC_SCAN: %w", err)
		}
	}

	for _, prop := range cfg.Props {
		if err := d.ioctl(uiSetPropBit, prop); err != nil {
			return fmt.Errorf("prop 0x%x: %w", prop, err)
		}
	}

	ud := userDev{
		ID: inputID{
			Bustype: busUSB,
			Vendor:  cfg.Vendor,
			Product: cfg.Product,
			Version: 1,
		},
	}
	copy(ud.Name[:], cfg.Name)
	for _, axis := range cfg.Axes {
		ud.Absmin[axis.Code] = axis.Min
		ud.Absmax[axis.Code] = axis.Max
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, ud); err != nil {
		return err
	}
	if _, err := d.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write user dev: %w", err)
	}

	if err := d.ioctl(uiDevCreate, 0); err != nil {
		return fmt.Errorf("UI_DEV_CREATE: %w", err)
	}
	return nil
}

// inputEvent mirrors struct input_event.
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Emit queues one event on the device. The host only sees queued
// events once Sync is called.
func (d *Device) Emit(typ, code uint16, value int32) error {
	ev := inputEvent{Type: typ, Code: code, Value: value}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, ev); err != nil {
		return err
	}
	if _, err := d.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%s: emit: %w", d.name, err)
	}
	return nil
}

// Sync flushes the queued events to the host as one report.
func (d *Device) Sync() error {
	return d.Emit(evSyn, synReport, 0)
}

// Close destroys the virtual device.
func (d *Device) Close() error {
	if err := d.ioctl(uiDevDestroy, 0); err != nil {
		_ = d.file.Close()
		return fmt.Errorf("%s: UI_DEV_DESTROY: %w", d.name, err)
	}
	return d.file.Close()
}
