package deferred

import "context"

type Deferred[T any] interface {
	Resolve(T) bool
	Reject(error) bool
	Done() <-chan struct{}
	Wait(ctx context.Context) (T, error)
	Settled() bool
	Err() error
}
