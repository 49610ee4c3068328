package uinput

// Constants from linux/uinput.h and linux/input-event-codes.h, limited
// to what the published tablet devices need.

// uinput ioctls
const (
	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502

	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetAbsBit  = 0x40045567
	uiSetMscBit  = 0x40045568
	uiSetPropBit = 0x4004556e
)

const (
	maxNameSize = 80
	absSize     = 64

	busUSB = 0x03
)

// event types
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03
	evMsc = 0x04
	evRep = 0x14
)

const synReport = 0

const mscScan = 0x04

// device properties
const (
	propPointer   = 0x00
	propButtonpad = 0x02
)

// absolute axes
const (
	absX        = 0x00
	absY        = 0x01
	absPressure = 0x18
)

// key codes
const (
	keyF1  = 59
	keyF2  = 60
	keyF3  = 61
	keyF4  = 62
	keyF5  = 63
	keyF6  = 64
	keyF7  = 65
	keyF8  = 66
	keyF9  = 67
	keyF10 = 68
	keyF11 = 87
	keyF12 = 88
	keyF13 = 183
	keyF14 = 184
	keyF15 = 185

	btnSouth = 0x130
	btnEast  = 0x131
	btnNorth = 0x133
	btnWest  = 0x134

	btnTouch         = 0x14a
	btnStylus        = 0x14b
	btnStylus2       = 0x14c
	btnToolDoubletap = 0x14d
)
