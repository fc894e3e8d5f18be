// Package firmware runs the keyboard scan loop on a host machine: matrix
// events from a source go through the keymap and the engine, and the
// resulting reports leave through a transport.
package firmware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neuroplastio/neio-keycore/engine"
	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/internal/matrix"
	"github.com/neuroplastio/neio-keycore/internal/transport"
	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/neuroplastio/neio-keycore/keymap"
	"github.com/neuroplastio/neio-keycore/pkg/bits"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const eventBuffer = 64

type Firmware struct {
	log       *zap.Logger
	engine    *engine.Engine
	host      *host
	actions   *actions
	source    matrix.Source
	transport transport.Transport

	keymap  *keymap.Keymap
	matrix  bits.Bits
	held    [keymap.Rows][keymap.Cols]keycode.Keycode
	configs chan engine.Config
	keymaps chan *keymap.Keymap
}

type options struct {
	log    *zap.Logger
	config engine.Config
	clock  engine.Clock
	nkro   bool
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

func WithConfig(config engine.Config) Option {
	return func(o *options) {
		o.config = config
	}
}

func WithClock(clock engine.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithNKRO sends N-key rollover reports instead of boot reports.
func WithNKRO(nkro bool) Option {
	return func(o *options) {
		o.nkro = nkro
	}
}

func New(km *keymap.Keymap, source matrix.Source, tr transport.Transport, opts ...Option) *Firmware {
	o := options{
		log:    zap.NewNop(),
		config: engine.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	f := &Firmware{
		log:       o.log.Named("firmware"),
		source:    source,
		transport: tr,
		keymap:    km,
		matrix:    bits.NewZeros(hidreport.MatrixSize * 8),
		configs:   make(chan engine.Config, 1),
		keymaps:   make(chan *keymap.Keymap, 1),
	}
	f.host = newHost(f.log, o.nkro)
	f.actions = newActions(f.log, f.host)
	engineOpts := []engine.Option{
		engine.WithLogger(o.log.Named("engine")),
		engine.WithConfig(o.config),
		engine.WithMatrix(f.matrix.Bytes),
	}
	if o.clock != nil {
		engineOpts = append(engineOpts, engine.WithClock(o.clock))
	}
	f.engine = engine.New(f.host, transport.Senders(f.log, tr), engineOpts...)
	f.host.out = f.engine
	return f
}

// Run drives the scan loop until ctx is done or the source is exhausted.
func (f *Firmware) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)
	events := make(chan matrix.Event, eventBuffer)

	group.Go(func() error {
		if err := f.transport.Run(ctx, f); err != nil {
			return fmt.Errorf("failed to run transport: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		defer close(events)
		if err := f.source.Run(ctx, events); err != nil {
			return fmt.Errorf("failed to run source: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		defer cancel()
		return f.loop(ctx, events)
	})
	return group.Wait()
}

func (f *Firmware) loop(ctx context.Context, events <-chan matrix.Event) error {
	f.applyPending()
	ticker := time.NewTicker(time.Duration(f.engine.Config().MaintenanceInterval))
	defer ticker.Stop()
	f.log.Info("Firmware started", zap.String("keymap", f.keymap.Name))
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				f.engine.OnMaintenanceTick()
				f.log.Info("Source exhausted")
				return nil
			}
			f.HandleEvent(e)
		case <-ticker.C:
			f.engine.OnMaintenanceTick()
		case config := <-f.configs:
			f.engine.SetConfig(config)
			ticker.Reset(time.Duration(config.MaintenanceInterval))
			f.log.Info("Config applied")
		case km := <-f.keymaps:
			f.keymap = km
			f.log.Info("Keymap applied", zap.String("keymap", km.Name))
		}
	}
}

// applyPending applies swaps queued before the loop started, so the first
// event already sees them.
func (f *Firmware) applyPending() {
	select {
	case config := <-f.configs:
		f.engine.SetConfig(config)
	default:
	}
	select {
	case km := <-f.keymaps:
		f.keymap = km
	default:
	}
}

// HandleEvent processes one matrix transition. Releases use the keycode
// resolved at press time, so a layer change while a key is held does not
// leave it registered.
func (f *Firmware) HandleEvent(e matrix.Event) {
	if e.Row < 0 || e.Row >= keymap.Rows || e.Col < 0 || e.Col >= keymap.Cols {
		f.log.Debug("Event outside the matrix", zap.Int("row", e.Row), zap.Int("col", e.Col))
		return
	}
	bit := e.Row*hidreport.MatrixRowBytes*8 + e.Col
	var code keycode.Keycode
	if e.Pressed {
		f.matrix.Set(bit)
		code = f.keymap.Lookup(f.engine.ActiveLayer(), e.Row, e.Col)
		f.held[e.Row][e.Col] = code
	} else {
		f.matrix.Clear(bit)
		code = f.held[e.Row][e.Col]
		f.held[e.Row][e.Col] = keycode.KC_NO
	}
	if code == keycode.KC_NO {
		return
	}
	f.log.Debug("Key event", zap.Stringer("keycode", code), zap.Bool("pressed", e.Pressed))
	if f.engine.HandleEvent(code, e.Pressed, f.engine.Now()) {
		f.actions.run(code, e.Pressed)
	}
}

// OnRawReceive implements transport.Handler.
func (f *Firmware) OnRawReceive(buf []byte) {
	f.engine.OnRawReceive(buf)
}

// OnLEDs implements transport.Handler.
func (f *Firmware) OnLEDs(leds uint8) {
	f.host.setLEDs(leds)
}

// SetConfig queues a config swap for the next loop iteration. Only the
// latest queued value is applied.
func (f *Firmware) SetConfig(config engine.Config) {
	replaceLatest(f.configs, config)
}

// SetKeymap queues a keymap swap for the next loop iteration.
func (f *Firmware) SetKeymap(km *keymap.Keymap) {
	replaceLatest(f.keymaps, km)
}

func replaceLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Close releases the source and the transport.
func (f *Firmware) Close() error {
	return errors.Join(f.source.Close(), f.transport.Close())
}

func (f *Firmware) Engine() *engine.Engine {
	return f.engine
}

func (f *Firmware) State() engine.State {
	return f.engine.State()
}

// CapsWord reports whether caps word is on.
func (f *Firmware) CapsWord() bool {
	return f.actions.caps.On()
}
