// Package transport delivers reports to the host and receives its output
// reports.
package transport

import (
	"context"

	"github.com/neuroplastio/neio-keycore/engine"
	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/pkg/registry"
	"go.uber.org/zap"
)

// Handler receives host output. OnRawReceive runs on the transport receive
// goroutine.
type Handler interface {
	OnRawReceive(buf []byte)
	OnLEDs(leds uint8)
}

type Transport interface {
	SendKeyboard(report hidreport.KeyboardReport) error
	SendNKRO(report hidreport.NKROReport) error
	SendExtra(report hidreport.ExtraReport) error
	// SendRaw must be safe for concurrent use.
	SendRaw(packet hidreport.RawPacket) error
	// Run delivers host output to h until ctx is done.
	Run(ctx context.Context, h Handler) error
	Close() error
}

type Provider struct {
	Log *zap.Logger
}

type Registry = registry.Registry[Transport, Provider]

// NewRegistry returns a registry with every built-in transport.
func NewRegistry(log *zap.Logger) *Registry {
	r := registry.NewRegistry[Transport, Provider](Provider{Log: log})
	r.Register("uhid", newUhidTransport)
	r.Register("log", newLogTransport)
	r.Register("memory", newMemoryTransport)
	return r
}

// Senders adapts t to the engine senders. Send errors are logged.
func Senders(log *zap.Logger, t Transport) engine.Senders {
	return engine.Senders{
		Keyboard: func(report hidreport.KeyboardReport) {
			if err := t.SendKeyboard(report); err != nil {
				log.Error("failed to send keyboard report", zap.Error(err))
			}
		},
		NKRO: func(report hidreport.NKROReport) {
			if err := t.SendNKRO(report); err != nil {
				log.Error("failed to send NKRO report", zap.Error(err))
			}
		},
		Extra: func(report hidreport.ExtraReport) {
			if err := t.SendExtra(report); err != nil {
				log.Error("failed to send extra report", zap.Error(err))
			}
		},
		Raw: func(packet hidreport.RawPacket) {
			if err := t.SendRaw(packet); err != nil {
				log.Error("failed to send raw packet", zap.Error(err))
			}
		},
	}
}
