package core

import (
	"fmt"
	"time"

	"github.com/veikk/veikkd-go/wire"
)

// Deferred subsystem activation. The tablets need one enable command
// per subsystem on the output channel before they emit proprietary
// frames, and the commands must be spaced out in time: sent back to
// back, the firmware silently keeps only one of them. Each command is
// fire-and-forget; the device never acknowledges.

// ActivationPolicy controls the staggering and the (optional)
// robustness around the enable writes. The reference Windows/Mac
// drivers neither verify presence nor retry; both are configurable
// here because the silent partial-activation failure mode is real
// (device unplugged between attach and the last timer firing).
type ActivationPolicy struct {
	PenDelay     time.Duration
	ButtonsDelay time.Duration
	PadDelay     time.Duration

	// VerifyPresence skips the write when the device has already left
	// the bus by the time the timer fires.
	VerifyPresence bool

	// Retries is the number of additional write attempts on error.
	// 0 matches the original behavior: log and give up.
	Retries int
}

// minStagger is the smallest spacing between consecutive enable
// commands that the firmware reliably accepts.
const minStagger = 50 * time.Millisecond

func DefaultActivationPolicy() ActivationPolicy {
	return ActivationPolicy{
		PenDelay:       100 * time.Millisecond,
		ButtonsDelay:   200 * time.Millisecond,
		PadDelay:       300 * time.Millisecond,
		VerifyPresence: true,
		Retries:        0,
	}
}

// normalized enforces the strict pen < buttons < pad ordering even if
// a config file sets overlapping delays.
func (p ActivationPolicy) normalized() ActivationPolicy {
	if p.PenDelay < 0 {
		p.PenDelay = 0
	}
	if p.ButtonsDelay < p.PenDelay+minStagger {
		p.ButtonsDelay = p.PenDelay + minStagger
	}
	if p.PadDelay < p.ButtonsDelay+minStagger {
		p.PadDelay = p.ButtonsDelay + minStagger
	}
	return p
}

// SetActivationPolicy replaces the policy for future attaches; used
// by the config reload watcher. Already scheduled timers keep their
// original delays.
func (m *Manager) SetActivationPolicy(p ActivationPolicy) {
	m.policyMutex.Lock()
	m.policy = p.normalized()
	m.policyMutex.Unlock()
}

func (m *Manager) activationPolicy() ActivationPolicy {
	m.policyMutex.Lock()
	defer m.policyMutex.Unlock()
	return m.policy
}

// scheduleActivation arms the deferred enable commands for one
// freshly attached device: pen always, buttons and pad only when the
// model has them.
func (m *Manager) scheduleActivation(d *device) {
	p := m.activationPolicy()
	m.scheduleEnable(d, p, p.PenDelay, "pen", wire.PenEnable())
	if d.model.HasButtons {
		m.scheduleEnable(d, p, p.ButtonsDelay, "buttons", wire.ButtonsEnable())
	}
	if d.model.HasPad {
		m.scheduleEnable(d, p, p.PadDelay, "pad", wire.PadEnable())
	}
}

func (m *Manager) scheduleEnable(d *device, p ActivationPolicy, delay time.Duration, name string, cmd []byte) {
	timer := time.AfterFunc(delay, func() {
		// lifeMutex orders this against Detach: once detached is set
		// under the lock, the handle may be closed, and we must not
		// touch it. Holding the lock across the write keeps detach
		// from closing the handle mid-write.
		d.lifeMutex.Lock()
		defer d.lifeMutex.Unlock()
		if d.detached {
			return
		}

		if p.VerifyPresence && !m.bus.Has(d.path) {
			m.log.Log(fmt.Sprintf("%s - skipping %s enable, device gone", d.path, name))
			return
		}

		for attempt := 0; ; attempt++ {
			_, err := d.hid.Write(cmd)
			if err == nil {
				m.log.Log(fmt.Sprintf("%s - %s enabled", d.path, name))
				return
			}
			m.log.Log(fmt.Sprintf("%s - %s enable failed: %s", d.path, name, err))
			if attempt >= p.Retries {
				return
			}
		}
	})

	d.lifeMutex.Lock()
	if d.detached {
		timer.Stop()
	} else {
		d.timers = append(d.timers, timer)
	}
	d.lifeMutex.Unlock()
}
