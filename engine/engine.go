// Package engine implements the input processing core: a one-shot modifier
// tracker, a layer stack, the event dispatcher that routes key transitions
// between them, and a report multiplexer with a heartbeat gated side channel.
//
// All methods except OnRawReceive must be called from a single event
// context. OnRawReceive may be called from any goroutine. No method blocks.
package engine

import (
	"time"

	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/neuroplastio/neio-keycore/pkg/fixedlist"
	"go.uber.org/zap"
)

const (
	pendingKeysSize  = 32
	shadowedKeysSize = 32
)

// Clock returns milliseconds on a free running 32 bit counter.
type Clock func() uint32

// SystemClock returns a Clock counting from its creation.
func SystemClock() Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

type Engine struct {
	log    *zap.Logger
	config Config
	host   Host
	clock  Clock

	mods    Modifiers
	layers  *LayerStack
	pending *fixedlist.List[keycode.Keycode]
	// shadowed holds the codes whose press took the shadow path, so their
	// release takes it too whatever the suppression state is by then.
	shadowed *fixedlist.List[keycode.Keycode]
	mux      *Multiplexer
}

type options struct {
	log    *zap.Logger
	config Config
	clock  Clock
	matrix func() []byte
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func WithConfig(config Config) Option {
	return func(o *options) {
		o.config = config
	}
}

func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithMatrix sets the source of the matrix bitmap carried by diagnostic
// packets, one byte per row.
func WithMatrix(matrix func() []byte) Option {
	return func(o *options) {
		o.matrix = matrix
	}
}

func New(host Host, senders Senders, opts ...Option) *Engine {
	o := options{
		log:    zap.NewNop(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = SystemClock()
	}
	e := &Engine{
		log:      o.log,
		config:   o.config,
		host:     host,
		clock:    o.clock,
		layers:   NewLayerStack(),
		pending:  fixedlist.New[keycode.Keycode](pendingKeysSize),
		shadowed: fixedlist.New[keycode.Keycode](shadowedKeysSize),
	}
	e.mux = NewMultiplexer(o.log, senders, e.layers.Active, o.matrix)
	return e
}

// HandleEvent routes a key transition and reports whether the default
// action for code should still run.
func (e *Engine) HandleEvent(code keycode.Keycode, pressed bool, now uint32) bool {
	switch {
	case code.IsLayer():
		e.handleLayer(code.Layer(), pressed)
		return false
	case code.IsOneShot():
		slot := code.Slot()
		if pressed {
			e.host.KeyDown(keycode.EX_MOD(slot))
			e.mods.Activate(slot, now)
		} else {
			e.mods.ReleasePhysical(slot, e.host)
		}
		return false
	case code == keycode.CLR_OSM:
		if pressed {
			e.pending.Clear()
			e.mods.ClearAllOneShot(e.host)
		}
		return false
	case code == keycode.TOGGLE_SUPPRESS:
		if pressed {
			suppressed := e.mux.ToggleSuppressPrimary()
			e.log.Debug("Primary reports toggled", zap.Bool("suppressed", suppressed))
		}
		return false
	}

	if e.mods.Active() {
		e.trackPending(code, pressed)
	}
	if !pressed {
		if e.shadowed.RemoveFirst(code) {
			e.mux.ShadowUnregister(code)
			return false
		}
		return true
	}
	if e.mux.SuppressPrimary() {
		if e.shadowed.Push(code) {
			e.mux.ShadowRegister(code)
			return false
		}
		e.log.Debug("Shadowed keys full, using primary path", zap.Stringer("code", code))
	}
	return true
}

func (e *Engine) handleLayer(layer uint8, pressed bool) {
	if pressed {
		e.syncExtendIndicator(layer, true)
		if _, ok := e.layers.Push(layer); !ok {
			e.log.Debug("Layer stack full, dropping layer", zap.Uint8("layer", layer))
		}
	} else {
		e.syncExtendIndicator(layer, false)
		e.layers.Pop(layer)
	}
	e.host.SetActiveLayer(e.layers.Active())
}

// syncExtendIndicator drives scroll lock to match entering or leaving the
// extend layer. The host state is read first so the LED is never toggled
// into the wrong state.
func (e *Engine) syncExtendIndicator(layer uint8, entering bool) {
	if !e.config.ExtendLockIndicator || layer != e.config.ExtendLayer {
		return
	}
	if e.host.LockLEDState().ScrollLock != entering {
		e.host.ToggleLockLED(LEDScrollLock)
	}
}

func (e *Engine) trackPending(code keycode.Keycode, pressed bool) {
	if pressed {
		if !e.pending.Push(code) {
			e.log.Debug("Pending one-shot keys full, dropping key", zap.Stringer("code", code))
		}
		return
	}
	if e.pending.Len() == 0 {
		return
	}
	e.pending.RemoveFirst(code)
	if e.pending.Len() == 0 {
		e.mods.ClearAllOneShot(e.host)
	}
}

// OnMaintenanceTick runs housekeeping at the current clock time.
func (e *Engine) OnMaintenanceTick() {
	e.Maintenance(e.clock())
}

// Maintenance expires idle one-shot latches and enforces the side channel
// heartbeat. It must run between events, never nested inside one.
func (e *Engine) Maintenance(now uint32) {
	if e.mods.Active() && e.pending.Len() == 0 {
		e.mods.Expire(now, e.config.OneShotHoldTimeout.Millis(), e.config.OneShotTimeout.Millis(), e.host)
	}
	e.mux.CheckHeartbeat(now, e.config.HeartbeatTimeout.Millis())
}

// OnRawReceive handles an inbound side channel transfer. Safe to call from
// the transport receive goroutine.
func (e *Engine) OnRawReceive(buf []byte) {
	e.mux.OnRawReceive(buf, e.clock())
}

func (e *Engine) SendKeyboard(report hidreport.KeyboardReport) {
	e.mux.SendKeyboard(report)
}

func (e *Engine) SendNKRO(report hidreport.NKROReport) {
	e.mux.SendNKRO(report)
}

func (e *Engine) SendExtra(report hidreport.ExtraReport) {
	e.mux.SendExtra(report)
}

// SetConfig swaps the configuration. Latches and layers are kept.
func (e *Engine) SetConfig(config Config) {
	e.config = config
}

func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) Now() uint32 {
	return e.clock()
}

func (e *Engine) ActiveLayer() uint8 {
	return e.layers.Active()
}

func (e *Engine) Multiplexer() *Multiplexer {
	return e.mux
}

// State is a snapshot of the engine for diagnostics.
type State struct {
	ActiveLayer     uint8             `json:"activeLayer"`
	Layers          []uint8           `json:"layers"`
	PhysicalMods    uint8             `json:"physicalMods"`
	OneShotMods     uint8             `json:"oneShotMods"`
	PendingKeys     []keycode.Keycode `json:"pendingKeys"`
	SuppressPrimary bool              `json:"suppressPrimary"`
	SideChannel     bool              `json:"sideChannel"`
}

func (e *Engine) State() State {
	return State{
		ActiveLayer:     e.layers.Active(),
		Layers:          e.layers.Layers(),
		PhysicalMods:    e.mods.Physical(),
		OneShotMods:     e.mods.OneShot(),
		PendingKeys:     e.pending.Items(),
		SuppressPrimary: e.mux.SuppressPrimary(),
		SideChannel:     e.mux.SideChannelEnabled(),
	}
}
