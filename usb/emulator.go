package usb

import (
	"bytes"
	"net"
	"time"

	"github.com/veikk/veikkd-go/core"
)

// UDP tablet emulator. Lets the whole pipeline run against a scripted
// fake tablet: the emulator process answers a ping on enumerate and
// then exchanges raw 9-byte frames over the socket, including the
// enable commands it receives from the activation sequencer.

const (
	emulatorPath    = "emulator"
	emulatorNetwork = "udp"

	emulatorPingTimeout = 500 * time.Millisecond
)

var (
	emulatorPing = []byte("PINGPING")
	emulatorPong = []byte("PONGPONG")
)

type Emulator struct {
	address   string
	productID uint16
}

// InitEmulator creates a bus that reports one emulated tablet of the
// given model when an emulator is listening on address.
func InitEmulator(address string, productID uint16) (*Emulator, error) {
	return &Emulator{
		address:   address,
		productID: productID,
	}, nil
}

func (b *Emulator) Enumerate() ([]core.HIDInfo, error) {
	var infos []core.HIDInfo

	if b.hasEmulator() {
		infos = append(infos, core.HIDInfo{
			Path:        emulatorPath,
			VendorID:    core.VendorID,
			ProductID:   b.productID,
			Proprietary: true,
		})
	}
	return infos, nil
}

// Has probes the emulator process, like Enumerate does. Presence has
// to be live truth here, not path routing; the activation sequencer
// relies on it to skip enable writes for devices that are gone.
func (b *Emulator) Has(path string) bool {
	return path == emulatorPath && b.hasEmulator()
}

func (b *Emulator) hasEmulator() bool {
	dev, err := b.Connect(emulatorPath)
	if err != nil {
		return false
	}
	defer dev.Close()

	if _, err = dev.Write(emulatorPing); err != nil {
		return false
	}

	conn := dev.(*emulatorConn)
	if err := conn.SetReadDeadline(time.Now().Add(emulatorPingTimeout)); err != nil {
		return false
	}

	response := make([]byte, len(emulatorPong))
	if _, err = dev.Read(response); err != nil {
		return false
	}
	_ = conn.SetReadDeadline(time.Time{})

	return bytes.Equal(response, emulatorPong)
}

func (b *Emulator) Connect(path string) (core.HIDDevice, error) {
	conn, err := net.Dial(emulatorNetwork, b.address)
	if err != nil {
		return nil, err
	}
	return &emulatorConn{Conn: conn}, nil
}

type emulatorConn struct {
	net.Conn
}
