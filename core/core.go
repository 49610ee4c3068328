package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/veikk/veikkd-go/memorywriter"
)

// Package with the driver logic: which tablets are attached, decoding
// their frames into published input events, and switching their
// subsystems into proprietary reporting.
//
// The usb and uinput packages are not imported; transports and
// publishers come in through the interfaces in events.go, so this
// package can be exercised end to end with fakes.

var (
	ErrAlreadyAttached = errors.New("device already attached")
	ErrNotAttached     = errors.New("device not attached")
	ErrNotProprietary  = errors.New("not the proprietary interface")
)

// device is the per-tablet context. It is created on attach and torn
// down on detach; frames are decoded for it only in between. Frame
// decode runs on a single reader goroutine per device, so the bitmap
// states never see concurrent merges; stateMutex only makes the
// status page's snapshot race-free.
type device struct {
	path  string
	model *Model
	hid   HIDDevice

	pen     EventSink
	buttons EventSink // nil unless model.HasButtons
	pad     EventSink // nil unless model.HasPad

	stateMutex   sync.Mutex
	buttonsState uint16
	wheelState   uint8
	padState     uint8

	// lifeMutex orders activation timer callbacks against detach:
	// detach flips detached and stops the timers while holding it, so
	// a pending enable write can never touch a closed handle.
	lifeMutex sync.Mutex
	detached  bool
	timers    []*time.Timer

	log *memorywriter.MemoryWriter
}

// Manager owns all attached tablets.
type Manager struct {
	bus HIDBus
	pub Publisher
	log *memorywriter.MemoryWriter

	policyMutex sync.Mutex
	policy      ActivationPolicy

	devicesMutex sync.Mutex // for atomic access to devices
	devices      map[string]*device

	// attach failures (unknown model, connect errors) are remembered
	// so the rescan loop does not retry and re-log them every tick;
	// forgotten when the path disappears from the bus
	rejected map[string]bool
}

func New(bus HIDBus, pub Publisher, log *memorywriter.MemoryWriter, policy ActivationPolicy) *Manager {
	return &Manager{
		bus:      bus,
		pub:      pub,
		log:      log,
		policy:   policy.normalized(),
		devices:  make(map[string]*device),
		rejected: make(map[string]bool),
	}
}

// Attach brings one proprietary interface under management: model
// lookup, HID connect, virtual device creation, reader goroutine,
// activation scheduling. Any failure unwinds completely; a device
// never becomes visible half-attached. Errors only affect this
// device, never its siblings.
func (m *Manager) Attach(info HIDInfo) error {
	if !info.Proprietary {
		return ErrNotProprietary
	}

	model, err := LookupModel(info.ProductID)
	if err != nil {
		return err
	}

	m.devicesMutex.Lock()
	defer m.devicesMutex.Unlock()

	if _, ok := m.devices[info.Path]; ok {
		return ErrAlreadyAttached
	}

	hid, err := m.bus.Connect(info.Path)
	if err != nil {
		return fmt.Errorf("connect %s: %w", info.Path, err)
	}

	d := &device{
		path:  info.Path,
		model: model,
		hid:   hid,
		log:   m.log,
	}

	d.pen, err = m.pub.Pen(model)
	if err != nil {
		_ = hid.Close()
		return fmt.Errorf("publish pen: %w", err)
	}
	if model.HasButtons {
		d.buttons, err = m.pub.Buttons(model)
		if err != nil {
			_ = d.pen.Close()
			_ = hid.Close()
			return fmt.Errorf("publish buttons: %w", err)
		}
	}
	if model.HasPad {
		d.pad, err = m.pub.Pad(model)
		if err != nil {
			if d.buttons != nil {
				_ = d.buttons.Close()
			}
			_ = d.pen.Close()
			_ = hid.Close()
			return fmt.Errorf("publish pad: %w", err)
		}
	}

	m.devices[info.Path] = d
	go m.readLoop(d)
	m.scheduleActivation(d)

	m.log.Log(fmt.Sprintf("attached %s at %s", model.Name, info.Path))
	return nil
}

// Detach tears one tablet down. Pending activation timers are stopped
// synchronously before anything is closed, so no deferred enable
// write can fire into the dead context afterwards.
func (m *Manager) Detach(path string) error {
	m.devicesMutex.Lock()
	d, ok := m.devices[path]
	if ok {
		delete(m.devices, path)
	}
	m.devicesMutex.Unlock()
	if !ok {
		return ErrNotAttached
	}

	d.lifeMutex.Lock()
	d.detached = true
	for _, t := range d.timers {
		t.Stop()
	}
	d.timers = nil
	d.lifeMutex.Unlock()

	if d.pad != nil {
		_ = d.pad.Close()
	}
	if d.buttons != nil {
		_ = d.buttons.Close()
	}
	_ = d.pen.Close()
	err := d.hid.Close()

	m.log.Log(fmt.Sprintf("detached %s from %s", d.model.Name, path))
	return err
}

// DetachAll is used on shutdown.
func (m *Manager) DetachAll() {
	for _, path := range m.paths() {
		if err := m.Detach(path); err != nil && !errors.Is(err, ErrNotAttached) {
			m.log.Log(fmt.Sprintf("detach %s: %s", path, err))
		}
	}
}

func (m *Manager) paths() []string {
	m.devicesMutex.Lock()
	defer m.devicesMutex.Unlock()
	paths := make([]string, 0, len(m.devices))
	for p := range m.devices {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (m *Manager) attached(path string) bool {
	m.devicesMutex.Lock()
	defer m.devicesMutex.Unlock()
	_, ok := m.devices[path]
	return ok
}

// readLoop delivers raw reports to the decoder, one at a time per
// device. Decode errors discard the frame and keep going; they never
// escalate to tearing the device down. A read error means the device
// is gone (or closed by detach), so the loop ends.
func (m *Manager) readLoop(d *device) {
	buf := make([]byte, 64)
	for {
		n, err := d.hid.Read(buf)
		if err != nil {
			d.lifeMutex.Lock()
			detached := d.detached
			d.lifeMutex.Unlock()
			if !detached {
				m.log.Log(fmt.Sprintf("%s - read ended: %s", d.path, err))
				if errDetach := m.Detach(d.path); errDetach != nil && !errors.Is(errDetach, ErrNotAttached) {
					m.log.Log(fmt.Sprintf("%s - detach after read error: %s", d.path, errDetach))
				}
			}
			return
		}
		if n == 0 {
			continue
		}
		if err := d.handleFrame(buf[:n]); err != nil {
			// transport noise; discard and continue
			m.log.Log(fmt.Sprintf("%s - dropping frame: %s", d.path, err))
		}
	}
}

// Watch polls the bus and keeps the attached set in sync with it:
// new proprietary interfaces of known models are attached, vanished
// paths are detached. Runs until the context is canceled.
func (m *Manager) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.rescan()
		}
	}
}

func (m *Manager) rescan() {
	infos, err := m.bus.Enumerate()
	if err != nil {
		m.log.Log(fmt.Sprintf("enumerate: %s", err))
		return
	}

	present := make(map[string]bool, len(infos))
	for _, info := range infos {
		present[info.Path] = true

		if info.VendorID != VendorID || !info.Proprietary {
			continue
		}
		if m.attached(info.Path) || m.rejected[info.Path] {
			continue
		}
		if err := m.Attach(info); err != nil {
			m.log.Log(fmt.Sprintf("attach %s: %s", info.Path, err))
			m.rejected[info.Path] = true
		}
	}

	// forget rejections for paths that left the bus
	for path := range m.rejected {
		if !present[path] {
			delete(m.rejected, path)
		}
	}

	for _, path := range m.paths() {
		if !present[path] {
			if err := m.Detach(path); err != nil && !errors.Is(err, ErrNotAttached) {
				m.log.Log(fmt.Sprintf("detach %s: %s", path, err))
			}
		}
	}
}

// DeviceStatus is the status page's view of one attached tablet.
type DeviceStatus struct {
	Path  string `json:"path"`
	Model string `json:"model"`

	ButtonsState uint16 `json:"buttonsState"`
	WheelState   uint8  `json:"wheelState"`
	PadState     uint8  `json:"padState"`
}

// Devices returns a snapshot of the attached tablets, sorted by path.
func (m *Manager) Devices() []DeviceStatus {
	m.devicesMutex.Lock()
	devices := make([]*device, 0, len(m.devices))
	for _, d := range m.devices {
		devices = append(devices, d)
	}
	m.devicesMutex.Unlock()

	statuses := make([]DeviceStatus, 0, len(devices))
	for _, d := range devices {
		d.stateMutex.Lock()
		s := DeviceStatus{
			Path:         d.path,
			Model:        d.model.Name,
			ButtonsState: d.buttonsState,
			WheelState:   d.wheelState,
			PadState:     d.padState,
		}
		d.stateMutex.Unlock()
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Path < statuses[j].Path
	})
	return statuses
}
