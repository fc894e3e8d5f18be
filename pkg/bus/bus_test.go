package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startBus(t *testing.T, opts ...Option) (*Bus[string, int], context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	b := NewBus[string, int](zap.NewNop(), opts...)
	go b.Start(ctx)
	<-b.Ready()
	return b, ctx
}

func receive(t *testing.T, ch <-chan Message[string, int]) Message[string, int] {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for message")
	}
	return Message[string, int]{}
}

func TestKeyedAndGlobalSubscribers(t *testing.T) {
	b, ctx := startBus(t)
	shadow := b.Subscribe(ctx, "shadow")
	all := b.Subscribe(ctx)

	b.Publish(ctx, "diagnostic", 1)
	b.Publish(ctx, "shadow", 2)

	assert.Equal(t, Message[string, int]{Key: "diagnostic", Message: 1}, receive(t, all))
	assert.Equal(t, Message[string, int]{Key: "shadow", Message: 2}, receive(t, all))
	assert.Equal(t, Message[string, int]{Key: "shadow", Message: 2}, receive(t, shadow))
	assert.Empty(t, shadow)
}

func TestPublisher(t *testing.T) {
	b, ctx := startBus(t)
	ch := b.Subscribe(ctx, "ack")
	publish := b.CreatePublisher("ack")
	publish(ctx, 7)
	assert.Equal(t, 7, receive(t, ch).Message)
}

func TestSlowSubscriberDrops(t *testing.T) {
	b, ctx := startBus(t, WithBuffer(1))
	slow := b.Subscribe(ctx, "k")
	b.Publish(ctx, "k", 1)
	assert.Eventually(t, func() bool { return len(slow) == 1 }, time.Second, time.Millisecond)

	b.Publish(ctx, "k", 2)
	assert.Eventually(t, func() bool { return b.Dropped() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, receive(t, slow).Message)
}

func TestTryPublishWithoutRoom(t *testing.T) {
	b := NewBus[string, int](zap.NewNop(), WithBuffer(1))
	assert.True(t, b.TryPublish("k", 1))
	assert.False(t, b.TryPublish("k", 2))
	assert.Equal(t, int64(1), b.Dropped())
}

func TestSubscriptionClosesWithContext(t *testing.T) {
	b, ctx := startBus(t)
	subCtx, cancel := context.WithCancel(ctx)
	ch := b.Subscribe(subCtx, "k")
	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond)

	b.Publish(ctx, "k", 1)
	assert.Zero(t, b.Dropped())
}
