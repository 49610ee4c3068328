package uinput

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veikk/veikkd-go/core"
)

func TestKeyCodeMapping(t *testing.T) {
	// the numbered buttons land on consecutive function keys and the
	// wheel rotation continues the row
	require.Equal(t, uint16(keyF1), keyCodes[core.KeyButton1])
	require.Equal(t, uint16(keyF12), keyCodes[core.KeyButton12])
	require.Equal(t, uint16(keyF13), keyCodes[core.KeyButton13])
	require.Equal(t, uint16(keyF14), keyCodes[core.KeyWheelLeft])
	require.Equal(t, uint16(keyF15), keyCodes[core.KeyWheelRight])

	require.Equal(t, uint16(btnTouch), keyCodes[core.KeyTouch])
	require.Equal(t, uint16(btnStylus), keyCodes[core.KeyStylus])
	require.Equal(t, uint16(btnStylus2), keyCodes[core.KeyStylus2])

	require.Equal(t, uint16(btnNorth), keyCodes[core.KeySwipeUp])
	require.Equal(t, uint16(btnToolDoubletap), keyCodes[core.KeyDoubleTap])
}

func TestKeyCodesDistinct(t *testing.T) {
	seen := make(map[uint16]core.Key)
	for key, code := range keyCodes {
		if prev, ok := seen[code]; ok {
			t.Fatalf("key %d and %d share code 0x%x", prev, key, code)
		}
		seen[code] = key
	}
}

func TestAxisCodeMapping(t *testing.T) {
	require.Equal(t, uint16(absX), axisCodes[core.AxisX])
	require.Equal(t, uint16(absY), axisCodes[core.AxisY])
	require.Equal(t, uint16(absPressure), axisCodes[core.AxisPressure])
	require.Len(t, axisCodes, 3)
}
