package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRejectsMalformed(t *testing.T) {
	bad := [][]byte{
		nil,
		{},
		{0x09},
		{0x09, 0x41, 0, 0, 0, 0, 0, 0},       // short
		{0x09, 0x41, 0, 0, 0, 0, 0, 0, 0, 0}, // long
		{0x08, 0x41, 0, 0, 0, 0, 0, 0, 0},    // wrong tag
		{0x00, 0x41, 0x01, 0x02, 0x03, 0, 0, 0, 0},
		make([]byte, 64), // full read buffer
	}
	for _, raw := range bad {
		_, err := Parse(raw)
		require.ErrorIs(t, err, ErrMalformedFrame, "raw % x", raw)
	}
}

func TestParseRoutesType(t *testing.T) {
	f, err := Parse([]byte{0x09, 0x41, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, byte(TypePen), f.Type)
	require.Len(t, f.Payload, 7)

	// unknown types still parse; routing decides what to do with them
	f, err = Parse([]byte{0x09, 0x77, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, byte(0x77), f.Type)
}

func TestPenDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want PenReport
	}{
		{
			name: "hover at origin",
			raw:  []byte{0x09, 0x41, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: PenReport{},
		},
		{
			name: "touch with coordinates",
			raw:  []byte{0x09, 0x41, 0x01, 0x34, 0x12, 0x78, 0x56, 0xE8, 0x03},
			want: PenReport{Touch: true, X: 0x1234, Y: 0x5678, Pressure: 1000},
		},
		{
			name: "stylus button only",
			raw:  []byte{0x09, 0x41, 0x02, 0xFF, 0x00, 0x00, 0xFF, 0x00, 0x00},
			want: PenReport{Stylus: true, X: 0x00FF, Y: 0xFF00},
		},
		{
			name: "all three pen bits",
			raw:  []byte{0x09, 0x41, 0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x20},
			want: PenReport{Touch: true, Stylus: true, Stylus2: true, Pressure: 0x2000},
		},
		{
			name: "high bits of flag byte ignored",
			raw:  []byte{0x09, 0x41, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
			want: PenReport{},
		},
		{
			name: "maximal axis values pass through",
			raw:  []byte{0x09, 0x41, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			want: PenReport{X: 0xFFFF, Y: 0xFFFF, Pressure: 0xFFFF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, f.Pen())
		})
	}
}

func TestButtonsDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want ButtonsReport
	}{
		{
			name: "button press",
			raw:  []byte{0x09, 0x42, 0x01, 0x01, 0x05, 0x00, 0, 0, 0},
			want: ButtonsReport{Wheel: false, Pressed: true, Mask: 0x0005},
		},
		{
			name: "button release",
			raw:  []byte{0x09, 0x42, 0x01, 0x00, 0x04, 0x00, 0, 0, 0},
			want: ButtonsReport{Wheel: false, Pressed: false, Mask: 0x0004},
		},
		{
			name: "thirteenth button uses the high byte",
			raw:  []byte{0x09, 0x42, 0x01, 0x01, 0x00, 0x10, 0, 0, 0},
			want: ButtonsReport{Wheel: false, Pressed: true, Mask: 0x1000},
		},
		{
			name: "wheel rotation press",
			raw:  []byte{0x09, 0x42, 0x03, 0x01, 0x02, 0x00, 0, 0, 0},
			want: ButtonsReport{Wheel: true, Pressed: true, Mask: 0x0002},
		},
		{
			name: "wheel rotation release",
			raw:  []byte{0x09, 0x42, 0x03, 0x00, 0x01, 0x00, 0, 0, 0},
			want: ButtonsReport{Wheel: true, Pressed: false, Mask: 0x0001},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse(tt.raw)
			require.NoError(t, err)
			require.Equal(t, tt.want, f.Buttons())
		})
	}
}

func TestPadDecode(t *testing.T) {
	f, err := Parse([]byte{0x09, 0x43, 0x01, 0x12, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, PadReport{Pressed: true, Mask: 0x12}, f.Pad())

	f, err = Parse([]byte{0x09, 0x43, 0x00, 0x02, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	require.Equal(t, PadReport{Pressed: false, Mask: 0x02}, f.Pad())
}

func TestEnableCommands(t *testing.T) {
	require.Equal(t, []byte{0x09, 0x01, 0x04, 0, 0, 0, 0, 0, 0}, PenEnable())
	require.Equal(t, []byte{0x09, 0x02, 0x02, 0, 0, 0, 0, 0, 0}, ButtonsEnable())
	require.Equal(t, []byte{0x09, 0x03, 0x02, 0, 0, 0, 0, 0, 0}, PadEnable())
}

func TestEnableCommandsAreCopies(t *testing.T) {
	c := PenEnable()
	c[1] = 0xFF
	require.Equal(t, byte(0x01), PenEnable()[1])
}
