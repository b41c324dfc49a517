package listener

import "context"

// NamedListenerImp tags failures of its delegate with a name, so that an
// aggregate failure from a composite says which member failed.
type NamedListenerImp[T any] struct {
	name     string
	delegate Listener[T]
}

func NewNamedListener[T any](name string, delegate Listener[T]) *NamedListenerImp[T] {
	return &NamedListenerImp[T]{name: name, delegate: delegate}
}

func (l *NamedListenerImp[T]) Name() string {
	return l.name
}

func (l *NamedListenerImp[T]) Notify(ctx context.Context, message T) error {
	if err := l.delegate.Notify(ctx, message); err != nil {
		return &ListenerError{Name: l.name, Err: err}
	}
	return nil
}
