// Package matrix produces key switch transitions for the firmware loop.
package matrix

import (
	"context"
	"io"

	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/neuroplastio/neio-keycore/pkg/registry"
	"go.uber.org/zap"
)

// Event is a single switch transition.
type Event struct {
	Row     int  `json:"row"`
	Col     int  `json:"col"`
	Pressed bool `json:"pressed"`
}

type Source interface {
	// Run sends events until the source is exhausted or ctx is done.
	Run(ctx context.Context, events chan<- Event) error
	Close() error
}

// KeyLocator finds the matrix position of a keycode.
type KeyLocator interface {
	Find(code keycode.Keycode) (row, col int, ok bool)
}

type Provider struct {
	Log  *zap.Logger
	In   io.Reader
	Keys KeyLocator
}

type Registry = registry.Registry[Source, Provider]

func NewRegistry(p Provider) *Registry {
	r := registry.NewRegistry[Source, Provider](p)
	r.Register("script", newScriptSource)
	r.Register("hidraw", newHidrawSource)
	return r
}

func send(ctx context.Context, events chan<- Event, e Event) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case events <- e:
		return nil
	}
}
