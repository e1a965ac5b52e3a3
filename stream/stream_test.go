package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	first := b.Subscribe()
	defer first.Cancel()
	second := b.Subscribe()
	defer second.Cancel()

	b.Publish(42)

	assert.Equal(t, 42, <-first.C())
	assert.Equal(t, 42, <-second.C())
}

func TestCancelClosesChannelAndStopsDelivery(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	sub := b.Subscribe()
	sub.Cancel()

	_, ok := <-sub.C()
	assert.False(t, ok, "cancelled subscription channel must be closed")

	// publishing after cancel must not panic or block
	b.Publish(1)

	// cancel is idempotent
	sub.Cancel()
}

func TestCloseCancelsAllSubscriptions(t *testing.T) {
	b := NewBroker[string]()

	sub := b.Subscribe()
	b.Close()

	_, ok := <-sub.C()
	assert.False(t, ok)

	// subscribing after close yields an already-ended feed
	late := b.Subscribe()
	_, ok = <-late.C()
	assert.False(t, ok)

	// cancel after close is harmless
	sub.Cancel()
	late.Cancel()
	b.Close()
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker[int]()
	defer b.Close()

	sub := b.Subscribe()
	defer sub.Cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// overrun the buffer without a reader attached
		for i := 0; i < subscriptionBuffer*2; i++ {
			b.Publish(i)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	received := 0
	for {
		select {
		case <-sub.C():
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriptionBuffer, received, "exactly one buffer worth of events retained")
}

func TestSubscriberGoroutinesDrainAfterCancel(t *testing.T) {
	b := NewBroker[int]()

	consumed := make(chan int, 1)
	started := make(chan struct{})
	sub := b.Subscribe()
	go func() {
		close(started)
		total := 0
		for range sub.C() {
			total++
		}
		consumed <- total
	}()

	<-started
	b.Publish(1)
	b.Publish(2)

	// give the consumer a chance to drain before cancelling
	time.Sleep(10 * time.Millisecond)
	sub.Cancel()

	select {
	case total := <-consumed:
		require.LessOrEqual(t, total, 2)
	case <-time.After(time.Second):
		t.Fatal("consumer goroutine never exited after Cancel")
	}

	b.Close()
}
