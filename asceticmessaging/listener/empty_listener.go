package listener

import "context"

// EmptyListenerImp takes no action and always succeeds.
type EmptyListenerImp[T any] struct{}

var _ Listener[any] = (*EmptyListenerImp[any])(nil)

func NewEmptyListener[T any]() *EmptyListenerImp[T] {
	return &EmptyListenerImp[T]{}
}

func (l *EmptyListenerImp[T]) Notify(_ context.Context, _ T) error {
	return nil
}
