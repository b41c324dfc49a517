package deferred

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

/**
* Settle-once result of work running on another goroutine.
*
* Loosely follows
* - https://promisesaplus.com/
* but blocks on Wait instead of requiring callbacks.
**/

var (
	ErrPanicked     = errors.New("deferred: function panicked")
	ErrGoexit       = errors.New("deferred: function exited its goroutine")
	ErrNilRejection = errors.New("deferred: rejected without an error")
)

type DeferredImp[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	value    T
	err      error
	settled  bool
	handlers []func()
}

var _ Deferred[any] = (*DeferredImp[any])(nil)

func NewDeferred[T any]() *DeferredImp[T] {
	return &DeferredImp[T]{done: make(chan struct{})}
}

func Resolved[T any](value T) *DeferredImp[T] {
	d := NewDeferred[T]()
	d.Resolve(value)
	return d
}

func Rejected[T any](err error) *DeferredImp[T] {
	d := NewDeferred[T]()
	d.Reject(err)
	return d
}

// Resolve settles d with value. Returns false if d was already settled.
func (d *DeferredImp[T]) Resolve(value T) bool {
	return d.settle(value, nil)
}

// Reject settles d with err. Returns false if d was already settled.
// A nil err rejects with ErrNilRejection, so a rejection is never mistaken
// for success.
func (d *DeferredImp[T]) Reject(err error) bool {
	if err == nil {
		err = ErrNilRejection
	}
	var zero T
	return d.settle(zero, err)
}

func (d *DeferredImp[T]) settle(value T, err error) bool {
	d.mu.Lock()
	if d.settled {
		d.mu.Unlock()
		return false
	}
	d.value = value
	d.err = err
	d.settled = true
	handlers := d.handlers
	d.handlers = nil
	close(d.done)
	d.mu.Unlock()

	for _, h := range handlers {
		h()
	}
	return true
}

func (d *DeferredImp[T]) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until d is settled or ctx is done. Giving up on ctx does not
// settle d.
func (d *DeferredImp[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (d *DeferredImp[T]) Settled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

// Err returns the rejection error, or nil while d is pending or resolved.
func (d *DeferredImp[T]) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

func (d *DeferredImp[T]) onSettled(h func()) {
	d.mu.Lock()
	if !d.settled {
		d.handlers = append(d.handlers, h)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	h()
}

// Then chains a continuation onto d. onSuccess sees the resolved value,
// onError the rejection error; whichever runs decides how the returned
// deferred settles, so onError can recover by returning a nil error.
//
// Callbacks run on the goroutine that settles d, or on the caller's goroutine
// if d is already settled.
func Then[T, R any](d *DeferredImp[T], onSuccess func(T) (R, error), onError func(error) (R, error)) *DeferredImp[R] {
	next := NewDeferred[R]()
	d.onSettled(func() {
		var (
			result R
			err    error
		)
		if d.err == nil {
			result, err = onSuccess(d.value)
		} else {
			result, err = onError(d.err)
		}
		if err != nil {
			next.Reject(err)
			return
		}
		next.Resolve(result)
	})
	return next
}

// Go runs fn on a new goroutine and returns a deferred settled with its result.
// A panic in fn rejects with ErrPanicked, a runtime.Goexit with ErrGoexit.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *DeferredImp[T] {
	d := NewDeferred[T]()
	go func() {
		returned := false
		defer func() {
			if r := recover(); r != nil {
				d.Reject(errors.Wrapf(ErrPanicked, "%v", r))
			} else if !returned {
				d.Reject(ErrGoexit)
			}
		}()
		value, err := fn(ctx)
		returned = true
		if err != nil {
			d.Reject(err)
			return
		}
		d.Resolve(value)
	}()
	return d
}

// Join settles once every input has settled. It resolves with the values in
// input order, or rejects with the only error, or with a multierror holding
// all errors in input order.
func Join[T any](deferreds ...*DeferredImp[T]) *DeferredImp[[]T] {
	result := NewDeferred[[]T]()

	if len(deferreds) == 0 {
		result.Resolve([]T{})
		return result
	}

	var (
		mu        sync.Mutex
		remaining = len(deferreds)
		values    = make([]T, len(deferreds))
		errs      = make([]error, len(deferreds))
	)

	for i, d := range deferreds {
		d.onSettled(func() {
			mu.Lock()
			values[i] = d.value
			errs[i] = d.err
			remaining--
			last := remaining == 0
			mu.Unlock()
			if last {
				if err := combine(errs); err != nil {
					result.Reject(err)
					return
				}
				result.Resolve(values)
			}
		})
	}

	return result
}

func combine(errs []error) error {
	var failed []error
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err)
		}
	}
	switch len(failed) {
	case 0:
		return nil
	case 1:
		return failed[0]
	default:
		return multierror.Append(nil, failed...)
	}
}
