package engine

import (
	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/keycode"
)

// KeyEmitter registers and unregisters keycodes with the default action
// layer, which turns them into primary reports.
type KeyEmitter interface {
	KeyDown(code keycode.Keycode)
	KeyUp(code keycode.Keycode)
}

// LEDState is the host lock indicator state.
type LEDState struct {
	NumLock    bool
	CapsLock   bool
	ScrollLock bool
}

func LEDStateFromByte(b uint8) LEDState {
	return LEDState{
		NumLock:    b&hidreport.LEDNumLock != 0,
		CapsLock:   b&hidreport.LEDCapsLock != 0,
		ScrollLock: b&hidreport.LEDScrollLock != 0,
	}
}

type LED uint8

const (
	LEDNumLock LED = iota
	LEDCapsLock
	LEDScrollLock
)

// Host is everything the engine needs from the surrounding firmware.
type Host interface {
	KeyEmitter
	SetActiveLayer(layer uint8)
	LockLEDState() LEDState
	ToggleLockLED(led LED)
}

// Senders are the transport report senders wrapped by the multiplexer.
// Raw may be called from both the event context and the raw receive
// context, so it must be safe for concurrent use.
type Senders struct {
	Keyboard func(report hidreport.KeyboardReport)
	NKRO     func(report hidreport.NKROReport)
	Extra    func(report hidreport.ExtraReport)
	Raw      func(packet hidreport.RawPacket)
}
