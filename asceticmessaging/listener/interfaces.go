package listener

import "context"

// Listener handles messages of type T.
//
// Notify returns once the work for message is complete; the returned error
// is its outcome. Implementations that stop early because ctx is done should
// return ctx.Err(), possibly wrapped.
type Listener[T any] interface {
	Notify(ctx context.Context, message T) error
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc[T any] func(ctx context.Context, message T) error

func (f ListenerFunc[T]) Notify(ctx context.Context, message T) error {
	return f(ctx, message)
}
