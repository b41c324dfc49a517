package listener

import (
	"context"
	"iter"
	"slices"

	"github.com/krew-solutions/ascetic-messaging-go/asceticmessaging/deferred"
)

// CompositeListenerImp treats a fixed set of listeners as a single listener.
// Each message is delivered to all members concurrently.
//
// The member set is captured at construction and never changes, so a
// composite can be notified from many goroutines at once.
type CompositeListenerImp[T any] struct {
	listeners []Listener[T]
}

var _ Listener[any] = (*CompositeListenerImp[any])(nil)

// NewCompositeListener copies listeners into a new composite. nil members
// are dropped.
func NewCompositeListener[T any](listeners ...Listener[T]) *CompositeListenerImp[T] {
	captured := make([]Listener[T], 0, len(listeners))
	for _, l := range listeners {
		if l != nil {
			captured = append(captured, l)
		}
	}
	return &CompositeListenerImp[T]{listeners: captured}
}

// NewCompositeListenerFromSeq drains seq once and builds a composite of
// what it yielded.
func NewCompositeListenerFromSeq[T any](seq iter.Seq[Listener[T]]) *CompositeListenerImp[T] {
	return NewCompositeListener(slices.Collect(seq)...)
}

func (c *CompositeListenerImp[T]) Len() int {
	return len(c.listeners)
}

// Notify delivers message to every member concurrently and returns after all
// of them have returned.
//
// If exactly one member fails, its error is returned as is. If several fail,
// the result is a *multierror.Error listing their errors in member order. A
// member that panics fails with an error wrapping deferred.ErrPanicked.
// ctx is handed to every member unchanged; honoring it is up to them.
func (c *CompositeListenerImp[T]) Notify(ctx context.Context, message T) error {
	if len(c.listeners) == 0 {
		return nil
	}

	pending := make([]*deferred.DeferredImp[struct{}], len(c.listeners))
	for i, l := range c.listeners {
		pending[i] = NotifyAsync(ctx, l, message)
	}

	// Members are waited for even after ctx is done.
	_, err := deferred.Join(pending...).Wait(context.Background())
	return err
}
