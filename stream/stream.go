// Package stream provides an in-process publish/subscribe primitive with
// explicit cancellation handles. Subscribers own their handle for its
// lifetime and must Cancel it on every exit path; reclamation never
// relies on garbage collection.
package stream

import "sync"

const subscriptionBuffer = 16

type Subscription[T any] struct {
	ch     chan T
	broker *Broker[T]
	once   sync.Once
}

// C is the receive side of the subscription. It is closed by Cancel and
// by Broker.Close; a closed channel means the feed has ended.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Cancel detaches the subscription and closes its channel. Safe to call
// more than once, and after the broker has shut down.
func (s *Subscription[T]) Cancel() {
	s.once.Do(func() {
		s.broker.remove(s)
	})
}

type Broker[T any] struct {
	mu     sync.Mutex
	subs   map[*Subscription[T]]struct{}
	closed bool
}

func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{subs: make(map[*Subscription[T]]struct{})}
}

func (b *Broker[T]) Subscribe() *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription[T]{ch: make(chan T, subscriptionBuffer), broker: b}
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Publish delivers v to every live subscription. Delivery is
// non-blocking: a subscriber that has fallen subscriptionBuffer events
// behind misses the event rather than stalling the writer.
func (b *Broker[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs {
		select {
		case sub.ch <- v:
		default:
		}
	}
}

// Close cancels every subscription and rejects future ones.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

func (b *Broker[T]) remove(sub *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}
