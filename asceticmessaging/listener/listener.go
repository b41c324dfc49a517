package listener

import (
	"context"

	"github.com/krew-solutions/ascetic-messaging-go/asceticmessaging/deferred"
)

// Empty returns a listener that does nothing. Use it where no listener is
// configured instead of checking for nil.
func Empty[T any]() Listener[T] {
	return NewEmptyListener[T]()
}

// NotifyAsync starts l.Notify on a new goroutine and returns at once. The
// returned deferred settles with the error Notify returned.
func NotifyAsync[T any](ctx context.Context, l Listener[T], message T) *deferred.DeferredImp[struct{}] {
	return deferred.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, l.Notify(ctx, message)
	})
}

// NotifyDefault is NotifyAsync with a context that is never cancelled.
func NotifyDefault[T any](l Listener[T], message T) *deferred.DeferredImp[struct{}] {
	return NotifyAsync(context.Background(), l, message)
}

// NotifySync notifies l with a context that is never cancelled and blocks
// until l is done, returning its error.
//
// The wait has no timeout. Do not call it while holding anything l needs in
// order to finish, such as a mutex l locks or a channel l sends on from the
// calling goroutine: the caller and l then wait on each other forever. Code
// that has a context should call l.Notify directly.
func NotifySync[T any](l Listener[T], message T) error {
	_, err := NotifyDefault(l, message).Wait(context.Background())
	return err
}
