package firmware

import (
	"github.com/neuroplastio/neio-keycore/engine"
	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/keycode"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// reportSender is the part of the engine the host sends its reports to.
type reportSender interface {
	SendKeyboard(report hidreport.KeyboardReport)
	SendNKRO(report hidreport.NKROReport)
	SendExtra(report hidreport.ExtraReport)
}

// host keeps the registered key set and turns every change into a report.
// All methods except setLEDs and LockLEDState run in the event context.
type host struct {
	log  *zap.Logger
	nkro bool
	out  reportSender

	keys     hidreport.NKROReport
	order    []uint8
	mods     uint8
	weakMods uint8
	extra    map[uint8]uint16

	layer atomic.Uint32
	leds  atomic.Uint32
}

func newHost(log *zap.Logger, nkro bool) *host {
	return &host{
		log:   log,
		nkro:  nkro,
		keys:  hidreport.NewNKROReport(),
		extra: make(map[uint8]uint16),
	}
}

func (h *host) KeyDown(code keycode.Keycode) {
	switch {
	case code.IsModifier():
		h.mods |= keycode.ModBit(code)
	case code.IsSystem() || code.IsConsumer():
		report, ok := hidreport.ExtraReportFor(code)
		if !ok {
			return
		}
		h.extra[report.ReportID] = report.Usage
		h.out.SendExtra(report)
		return
	case code.IsKey():
		if h.keys.HasKey(uint8(code)) {
			return
		}
		h.keys.SetKey(uint8(code))
		h.order = append(h.order, uint8(code))
	default:
		h.log.Debug("Ignoring key down", zap.Stringer("keycode", code))
		return
	}
	h.send()
}

func (h *host) KeyUp(code keycode.Keycode) {
	switch {
	case code.IsModifier():
		h.mods &^= keycode.ModBit(code)
	case code.IsSystem() || code.IsConsumer():
		report, ok := hidreport.ExtraReportFor(code)
		if !ok || h.extra[report.ReportID] != report.Usage {
			return
		}
		delete(h.extra, report.ReportID)
		h.out.SendExtra(hidreport.ExtraReport{ReportID: report.ReportID})
		return
	case code.IsKey():
		if !h.keys.HasKey(uint8(code)) {
			return
		}
		h.keys.ClearKey(uint8(code))
		for i, k := range h.order {
			if k == uint8(code) {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	default:
		return
	}
	h.send()
}

func (h *host) registerMods(mods uint8) {
	h.mods |= mods
}

func (h *host) unregisterMods(mods uint8) {
	h.mods &^= mods
}

// setWeakMods replaces the weak mods, which only live until the next
// report change that clears them.
func (h *host) setWeakMods(mods uint8) {
	h.weakMods = mods
}

func (h *host) WeakMods() uint8 {
	return h.weakMods
}

// send builds the primary report for the current key set.
func (h *host) send() {
	mods := h.mods | h.weakMods
	if h.nkro {
		report := h.keys
		report.ReportID = hidreport.ReportIDNKRO
		report.Mods = mods
		h.out.SendNKRO(report)
		return
	}
	report := hidreport.KeyboardReport{Mods: mods}
	// The oldest six keys win, like a boot keyboard with full rollover.
	copy(report.Keys[:], h.order)
	h.out.SendKeyboard(report)
}

func (h *host) SetActiveLayer(layer uint8) {
	if uint32(layer) != h.layer.Swap(uint32(layer)) {
		h.log.Debug("Layer changed", zap.Uint8("layer", layer))
	}
}

func (h *host) ActiveLayer() uint8 {
	return uint8(h.layer.Load())
}

func (h *host) LockLEDState() engine.LEDState {
	return engine.LEDStateFromByte(uint8(h.leds.Load()))
}

// ToggleLockLED taps the lock key. The local state flips right away and is
// overwritten by the next LED report from the host.
func (h *host) ToggleLockLED(led engine.LED) {
	var code keycode.Keycode
	var bit uint8
	switch led {
	case engine.LEDNumLock:
		code, bit = keycode.KC_NUM, hidreport.LEDNumLock
	case engine.LEDCapsLock:
		code, bit = keycode.KC_CAPS, hidreport.LEDCapsLock
	case engine.LEDScrollLock:
		code, bit = keycode.KC_SCRL, hidreport.LEDScrollLock
	default:
		return
	}
	h.KeyDown(code)
	h.KeyUp(code)
	for {
		old := h.leds.Load()
		if h.leds.CompareAndSwap(old, old^uint32(bit)) {
			return
		}
	}
}

func (h *host) setLEDs(leds uint8) {
	h.leds.Store(uint32(leds))
}
