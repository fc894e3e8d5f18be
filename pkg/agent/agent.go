package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/neuroplastio/neio-keycore/engine"
	"github.com/neuroplastio/neio-keycore/internal/configsvc"
	"github.com/neuroplastio/neio-keycore/internal/firmware"
	"github.com/neuroplastio/neio-keycore/internal/matrix"
	"github.com/neuroplastio/neio-keycore/internal/monitor"
	"github.com/neuroplastio/neio-keycore/internal/transport"
	"github.com/neuroplastio/neio-keycore/keymap"
	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

type Agent struct {
	config    Config
	log       *zap.Logger
	in        io.Reader
	container *dig.Container

	db *badger.DB
}

type Option func(*Agent)

func WithLogger(log *zap.Logger) Option {
	return func(a *Agent) {
		a.log = log
	}
}

// WithInput sets the stream the script source reads when it has no path.
func WithInput(in io.Reader) Option {
	return func(a *Agent) {
		a.in = in
	}
}

func NewLogger() (*zap.Logger, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000000")
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// NewAgent wires the services. Nothing is opened until a command needs it.
func NewAgent(config Config, opts ...Option) (*Agent, error) {
	a := &Agent{
		config:    config,
		in:        os.Stdin,
		container: dig.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		logger, err := NewLogger()
		if err != nil {
			return nil, err
		}
		a.log = logger
	}

	providers := []any{
		func() *zap.Logger { return a.log },
		a.openDB,
		func(log *zap.Logger) *configsvc.Service {
			return configsvc.New(log.Named("config"))
		},
		transport.NewRegistry,
		a.loadKeymap,
		func(log *zap.Logger, km *keymap.Keymap) *matrix.Registry {
			return matrix.NewRegistry(matrix.Provider{Log: log, In: a.in, Keys: km})
		},
		a.newFirmware,
		func(log *zap.Logger) *monitor.Bus {
			return monitor.NewBus(log.Named("bus"))
		},
		func(db *badger.DB) *monitor.Recorder {
			return monitor.NewRecorder(db, time.Now)
		},
	}
	for _, p := range providers {
		if err := a.container.Provide(p); err != nil {
			return nil, fmt.Errorf("failed to provide dependency: %w", err)
		}
	}
	return a, nil
}

func (a *Agent) openDB(log *zap.Logger) (*badger.DB, error) {
	dbOptions := badger.DefaultOptions(filepath.Join(a.config.DataDir, "db"))
	dbOptions.Logger = &badgerLogger{l: log.Named("badger")}
	db, err := badger.Open(dbOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *Agent) loadKeymap() (*keymap.Keymap, error) {
	if a.config.Keymap == "" {
		return keymap.Default(), nil
	}
	km, err := keymap.Load(a.config.Keymap)
	if err != nil {
		return nil, fmt.Errorf("failed to load keymap: %w", err)
	}
	return km, nil
}

type firmwareParams struct {
	dig.In

	Log        *zap.Logger
	Keymap     *keymap.Keymap
	Transports *transport.Registry
	Sources    *matrix.Registry
}

func (a *Agent) newFirmware(p firmwareParams) (*firmware.Firmware, error) {
	tr, err := p.Transports.New(a.config.Transport, a.config.TransportConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	src, err := p.Sources.New(a.config.Source, a.config.SourceConfig)
	if err != nil {
		tr.Close()
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	return firmware.New(p.Keymap, src, tr,
		firmware.WithLogger(p.Log),
		firmware.WithNKRO(a.config.NKRO),
	), nil
}

// Run starts the firmware and blocks until the context is cancelled or the
// source is exhausted. Startup fails on an invalid engine config. A config
// or keymap that becomes invalid later is logged and the last valid one
// stays in use.
func (a *Agent) Run(ctx context.Context) error {
	return a.container.Invoke(func(svc *configsvc.Service, fw *firmware.Firmware) error {
		defer fw.Close()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			return svc.Start(groupCtx)
		})
		if err := a.watch(svc, fw); err != nil {
			cancel()
			group.Wait()
			return err
		}
		group.Go(func() error {
			defer cancel()
			return fw.Run(groupCtx)
		})

		if err := group.Wait(); err != nil {
			return fmt.Errorf("agent failed: %w", err)
		}
		return nil
	})
}

func (a *Agent) watch(svc *configsvc.Service, fw *firmware.Firmware) error {
	log := a.log.Named("agent")
	config, err := configsvc.RegisterWriteable(svc, a.config.EngineConfig, engine.DefaultConfig(), func(config engine.Config, err error) {
		if err != nil {
			log.Error("Failed to reload engine config", zap.Error(err))
			return
		}
		fw.SetConfig(config)
	})
	if err != nil {
		return fmt.Errorf("failed to load engine config: %w", err)
	}
	fw.SetConfig(config)

	if a.config.Keymap == "" {
		return nil
	}
	path := a.config.Keymap
	_, err = svc.Watch(path, func(data []byte, err error) {
		if err != nil {
			log.Error("Failed to read keymap", zap.Error(err))
			return
		}
		km, err := keymap.Parse(path, data)
		if err != nil {
			log.Error("Failed to reload keymap", zap.Error(err))
			return
		}
		fw.SetKeymap(km)
	})
	if err != nil {
		return fmt.Errorf("failed to watch keymap: %w", err)
	}
	return nil
}

// Monitor consumes the side channel of the keyboard at path, or of the
// first one found, and calls fn for every packet.
func (a *Agent) Monitor(ctx context.Context, path string, record bool, fn func(monitor.Capture)) error {
	var opts []monitor.Option
	if record {
		err := a.container.Invoke(func(r *monitor.Recorder) {
			opts = append(opts, monitor.WithRecorder(r))
		})
		if err != nil {
			return err
		}
	}
	return a.container.Invoke(func(log *zap.Logger, b *monitor.Bus) error {
		m, err := monitor.Open(log.Named("monitor"), path, b, opts...)
		if err != nil {
			return err
		}
		defer m.Close()

		group, ctx := errgroup.WithContext(ctx)
		group.Go(func() error {
			return b.Start(ctx)
		})
		<-b.Ready()
		captures := b.Subscribe(ctx)
		group.Go(func() error {
			return m.Run(ctx)
		})
		group.Go(func() error {
			for msg := range captures {
				fn(msg.Message)
			}
			return nil
		})
		err = group.Wait()
		log.Info("Monitor stopped", zap.Any("packets", m.Stats()))
		return err
	})
}

// Captures returns the most recently recorded packets.
func (a *Agent) Captures(limit int) ([]monitor.Capture, error) {
	var captures []monitor.Capture
	err := a.container.Invoke(func(r *monitor.Recorder) error {
		var err error
		captures, err = r.Captures(limit)
		return err
	})
	return captures, err
}

func (a *Agent) ClearCaptures() (int, error) {
	var n int
	err := a.container.Invoke(func(r *monitor.Recorder) error {
		var err error
		n, err = r.ClearCaptures()
		return err
	})
	return n, err
}

// Devices lists the hidraw nodes and remembers when each was seen.
func (a *Agent) Devices() ([]monitor.Device, error) {
	devices, err := monitor.ListDevices()
	if err != nil {
		return nil, err
	}
	err = a.container.Invoke(func(r *monitor.Recorder) error {
		for i, dev := range devices {
			touched, err := r.TouchDevice(dev)
			if err != nil {
				return err
			}
			devices[i] = touched
		}
		return nil
	})
	return devices, err
}

func (a *Agent) Keymap() (*keymap.Keymap, error) {
	var km *keymap.Keymap
	err := a.container.Invoke(func(k *keymap.Keymap) {
		km = k
	})
	return km, err
}

func (a *Agent) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
