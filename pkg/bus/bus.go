// Package bus fans messages out to subscribers without letting a slow
// subscriber stall the publisher.
package bus

import (
	"context"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

type key interface {
	comparable
}

type message interface {
	any
}

type Message[K key, M message] struct {
	Key     K
	Message M
}

type Publisher[M message] func(ctx context.Context, msg M)

type subscription[K key, M message] struct {
	mu     sync.RWMutex
	ch     chan Message[K, M]
	closed bool
}

func (s *subscription[K, M]) deliver(msg Message[K, M]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

func (s *subscription[K, M]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	close(s.ch)
}

type Bus[K key, M message] struct {
	log    *zap.Logger
	buffer int
	ready  chan struct{}

	ch         chan Message[K, M]
	keySubs    *xsync.MapOf[K, *xsync.MapOf[*subscription[K, M], struct{}]]
	globalSubs *xsync.MapOf[*subscription[K, M], struct{}]
	dropped    *xsync.Counter
}

type Option func(*options)

type options struct {
	buffer int
}

// WithBuffer sets the queue length of the bus and of every subscriber.
func WithBuffer(n int) Option {
	return func(o *options) {
		o.buffer = n
	}
}

func NewBus[K key, M message](logger *zap.Logger, opts ...Option) *Bus[K, M] {
	o := options{buffer: 64}
	for _, opt := range opts {
		opt(&o)
	}
	return &Bus[K, M]{
		log:    logger,
		buffer: o.buffer,
		ready:  make(chan struct{}),

		ch:         make(chan Message[K, M], o.buffer),
		keySubs:    xsync.NewMapOf[K, *xsync.MapOf[*subscription[K, M], struct{}]](),
		globalSubs: xsync.NewMapOf[*subscription[K, M], struct{}](),
		dropped:    xsync.NewCounter(),
	}
}

// Start runs the dispatch loop until ctx is done.
func (b *Bus[K, M]) Start(ctx context.Context) error {
	close(b.ready)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-b.ch:
			b.process(msg)
		}
	}
}

func (b *Bus[K, M]) Ready() <-chan struct{} {
	return b.ready
}

// Publish queues msg, waiting for room until ctx is done.
func (b *Bus[K, M]) Publish(ctx context.Context, key K, msg M) {
	select {
	case <-ctx.Done():
	case b.ch <- Message[K, M]{key, msg}:
	}
}

// TryPublish queues msg if there is room and reports whether it did.
func (b *Bus[K, M]) TryPublish(key K, msg M) bool {
	select {
	case b.ch <- Message[K, M]{key, msg}:
		return true
	default:
		b.dropped.Inc()
		return false
	}
}

func (b *Bus[K, M]) CreatePublisher(key K) Publisher[M] {
	return func(ctx context.Context, msg M) {
		b.Publish(ctx, key, msg)
	}
}

// Dropped returns how many messages were discarded because the bus or a
// subscriber was full.
func (b *Bus[K, M]) Dropped() int64 {
	return b.dropped.Value()
}

func (b *Bus[K, M]) process(msg Message[K, M]) {
	b.fanOut(b.globalSubs, msg)
	if subs, ok := b.keySubs.Load(msg.Key); ok {
		b.fanOut(subs, msg)
	}
}

func (b *Bus[K, M]) fanOut(subs *xsync.MapOf[*subscription[K, M], struct{}], msg Message[K, M]) {
	subs.Range(func(sub *subscription[K, M], _ struct{}) bool {
		if !sub.deliver(msg) {
			b.dropped.Inc()
			b.log.Debug("Subscriber full, dropping message", zap.Any("key", msg.Key))
		}
		return true
	})
}

// Subscribe returns a channel receiving messages for the given keys, or
// every message when no key is given. The channel is closed when ctx is
// done.
func (b *Bus[K, M]) Subscribe(ctx context.Context, keys ...K) <-chan Message[K, M] {
	sub := &subscription[K, M]{ch: make(chan Message[K, M], b.buffer)}
	if len(keys) == 0 {
		b.globalSubs.Store(sub, struct{}{})
	}
	for _, k := range keys {
		subs, _ := b.keySubs.LoadOrCompute(k, func() *xsync.MapOf[*subscription[K, M], struct{}] {
			return xsync.NewMapOf[*subscription[K, M], struct{}]()
		})
		subs.Store(sub, struct{}{})
	}
	go func() {
		<-ctx.Done()
		if len(keys) == 0 {
			b.globalSubs.Delete(sub)
		}
		for _, k := range keys {
			if subs, ok := b.keySubs.Load(k); ok {
				subs.Delete(sub)
			}
		}
		sub.close()
	}()
	return sub.ch
}
