package firmware

import (
	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/neuroplastio/neio-keycore/magic"
	"go.uber.org/zap"
)

// actions is the default action layer: it runs for every key transition
// the engine did not consume.
type actions struct {
	log    *zap.Logger
	host   *host
	repeat magic.Repeater
	caps   magic.CapsWord

	// repeated is what the last repeat key press registered.
	repeated keycode.Keycode
}

func newActions(log *zap.Logger, h *host) *actions {
	return &actions{log: log, host: h}
}

func (a *actions) run(code keycode.Keycode, pressed bool) {
	switch code {
	case keycode.KC_NO, keycode.KC_TRNS:
		return
	case keycode.CW_TOGG:
		if pressed {
			on := a.caps.Toggle()
			a.log.Debug("Caps word", zap.Bool("on", on))
		}
		return
	case keycode.QK_REP:
		a.repeatKey(pressed, false)
		return
	case keycode.QK_AREP:
		a.repeatKey(pressed, true)
		return
	}

	if code.IsMacro() {
		if pressed {
			a.caps.Press(code)
			a.macro(code, true)
		}
		return
	}
	if !pressed {
		a.release(code)
		return
	}
	if !code.IsModifier() {
		a.repeat.Remember(code.Basic(), a.host.mods|code.Mods())
	}
	a.press(code, 0)
}

// repeatKey types the remembered key, or its alternate, with the mods it
// was typed with.
func (a *actions) repeatKey(pressed, alternate bool) {
	if !pressed {
		if a.repeated != keycode.KC_NO {
			a.release(a.repeated)
			a.repeated = keycode.KC_NO
		}
		return
	}
	last, mods := a.repeat.Last()
	code := last
	if alternate {
		code = a.repeat.Alternate()
		mods &^= keycode.ModLAlt
	}
	switch code {
	case keycode.KC_NO, keycode.KC_TRNS, keycode.M_NOOP:
		return
	}
	if code.IsMacro() {
		a.caps.Press(code)
		a.macro(code, false)
	} else {
		a.repeated = code
		a.press(code, mods)
	}
	if alternate {
		a.repeat.AfterAlternate(code, mods)
	}
}

func (a *actions) press(code keycode.Keycode, weak uint8) {
	if !code.IsModifier() {
		if a.caps.Press(code) {
			weak |= keycode.ModLShift
		}
		a.host.setWeakMods(weak)
	}
	if code.IsModded() {
		a.host.registerMods(code.Mods())
		code = code.Basic()
	}
	a.host.KeyDown(code)
}

func (a *actions) release(code keycode.Keycode) {
	if !code.IsModifier() {
		a.host.setWeakMods(0)
	}
	if code.IsModded() {
		a.host.unregisterMods(code.Mods())
		code = code.Basic()
	}
	a.host.KeyUp(code)
}

// macro types an expansion. remember is false when a repeat key triggered
// it, in which case only the expansion's own follow-up key is recorded.
func (a *actions) macro(code keycode.Keycode, remember bool) {
	exp, ok := magic.Expand(code)
	if !ok {
		return
	}
	taps, err := exp.Taps()
	if err != nil {
		a.log.Error("Failed to expand macro", zap.Stringer("keycode", code), zap.Error(err))
		return
	}
	shift := exp.CapsWord && a.caps.On()
	for _, tap := range taps {
		var weak uint8
		if tap.Shift || shift {
			weak = keycode.ModLShift
		}
		a.host.setWeakMods(weak)
		a.host.KeyDown(tap.Code)
		a.host.KeyUp(tap.Code)
	}
	a.host.setWeakMods(0)
	if remember {
		a.repeat.Remember(code, 0)
	}
	if exp.Repeat != keycode.KC_NO {
		a.repeat.SetLast(exp.Repeat)
	}
}
