// Package monitor is the host side consumer of the keyboard side channel.
// It keeps the channel armed with heartbeats, decodes the shadow and
// diagnostic packets and publishes them on a bus.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/pkg/bus"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/sstallion/go-hid"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultHeartbeat = 500 * time.Millisecond
	readTimeout      = 100 * time.Millisecond
)

// Capture is one decoded packet.
type Capture struct {
	Time   time.Time        `json:"time"`
	Packet hidreport.Packet `json:"packet"`
}

type Bus = bus.Bus[hidreport.PacketKind, Capture]

func NewBus(log *zap.Logger, opts ...bus.Option) *Bus {
	return bus.NewBus[hidreport.PacketKind, Capture](log, opts...)
}

// rawDevice is the subset of *hid.Device the monitor needs.
type rawDevice interface {
	Write(p []byte) (int, error)
	ReadWithTimeout(p []byte, timeout time.Duration) (int, error)
	Close() error
}

type Monitor struct {
	log       *zap.Logger
	dev       rawDevice
	bus       *Bus
	recorder  *Recorder
	heartbeat time.Duration
	now       func() time.Time

	armed  atomic.Bool
	counts *xsync.MapOf[hidreport.PacketKind, *xsync.Counter]
}

type options struct {
	recorder  *Recorder
	heartbeat time.Duration
	now       func() time.Time
}

type Option func(*options)

// WithRecorder stores every capture.
func WithRecorder(r *Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

func WithHeartbeat(d time.Duration) Option {
	return func(o *options) {
		o.heartbeat = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Open connects to the raw interface at path, or to the first one found
// when path is empty.
func Open(log *zap.Logger, path string, b *Bus, opts ...Option) (*Monitor, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize hidapi: %w", err)
	}
	if path == "" {
		paths, err := RawInterfaces()
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no raw interface found")
		}
		path = paths[0]
	}
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	log.Info("Opened raw interface", zap.String("path", path))
	return New(log, dev, b, opts...), nil
}

func New(log *zap.Logger, dev rawDevice, b *Bus, opts ...Option) *Monitor {
	o := options{
		heartbeat: DefaultHeartbeat,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Monitor{
		log:       log,
		dev:       dev,
		bus:       b,
		recorder:  o.recorder,
		heartbeat: o.heartbeat,
		now:       o.now,
		counts:    xsync.NewMapOf[hidreport.PacketKind, *xsync.Counter](),
	}
}

// RawInterfaces lists the hidraw paths of every side channel interface.
func RawInterfaces() ([]string, error) {
	var paths []string
	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		if info.UsagePage == hidreport.RawUsagePage && info.Usage == hidreport.RawUsage {
			paths = append(paths, info.Path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	return paths, nil
}

// Run arms the side channel and reads packets until ctx is done. The
// channel is disarmed on the way out, which also restores the primary
// reports on the keyboard.
func (m *Monitor) Run(ctx context.Context) error {
	defer func() {
		if err := m.send(hidreport.DisarmByte); err != nil {
			m.log.Warn("Failed to disarm side channel", zap.Error(err))
		}
		m.armed.Store(false)
	}()
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return m.heartbeatLoop(ctx)
	})
	group.Go(func() error {
		return m.readLoop(ctx)
	})
	return group.Wait()
}

func (m *Monitor) heartbeatLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()
	for {
		if err := m.send(hidreport.ArmByte); err != nil {
			return fmt.Errorf("failed to send heartbeat: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// send writes a control byte. hidapi expects a leading report id, zero for
// interfaces without one.
func (m *Monitor) send(control byte) error {
	buf := make([]byte, hidreport.RawEPSize+1)
	buf[1] = control
	_, err := m.dev.Write(buf)
	return err
}

func (m *Monitor) readLoop(ctx context.Context) error {
	buf := make([]byte, hidreport.RawEPSize+1)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := m.dev.ReadWithTimeout(buf, readTimeout)
		if errors.Is(err, hid.ErrTimeout) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read packet: %w", err)
		}
		m.handle(ctx, buf[:n])
	}
}

func (m *Monitor) handle(ctx context.Context, data []byte) {
	packet, err := hidreport.DecodePacket(data)
	if err != nil {
		m.log.Debug("Dropping packet", zap.Error(err))
		return
	}
	m.count(packet.Kind)
	if packet.Kind == hidreport.PacketAck {
		if !m.armed.Swap(true) {
			m.log.Info("Side channel armed")
		}
	}
	capture := Capture{Time: m.now(), Packet: packet}
	if m.recorder != nil {
		if err := m.recorder.Record(capture); err != nil {
			m.log.Error("Failed to record capture", zap.Error(err))
		}
	}
	m.bus.Publish(ctx, packet.Kind, capture)
}

func (m *Monitor) count(kind hidreport.PacketKind) {
	counter, _ := m.counts.LoadOrCompute(kind, func() *xsync.Counter {
		return xsync.NewCounter()
	})
	counter.Inc()
}

// Armed reports whether the keyboard acknowledged a heartbeat.
func (m *Monitor) Armed() bool {
	return m.armed.Load()
}

// Stats returns the number of packets seen per kind.
func (m *Monitor) Stats() map[string]int64 {
	stats := make(map[string]int64)
	m.counts.Range(func(kind hidreport.PacketKind, counter *xsync.Counter) bool {
		stats[kind.String()] = counter.Value()
		return true
	})
	return stats
}

func (m *Monitor) Close() error {
	return m.dev.Close()
}
