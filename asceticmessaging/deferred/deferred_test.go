package deferred

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredBasics(t *testing.T) {
	t.Run("resolve settles with value", func(t *testing.T) {
		d := NewDeferred[int]()
		assert.False(t, d.Settled())

		assert.True(t, d.Resolve(42))

		value, err := d.Wait(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 42, value)
		assert.True(t, d.Settled())
		assert.NoError(t, d.Err())
	})

	t.Run("reject settles with error", func(t *testing.T) {
		d := NewDeferred[int]()
		testError := errors.New("test error")

		assert.True(t, d.Reject(testError))

		value, err := d.Wait(context.Background())
		assert.Same(t, testError, err)
		assert.Equal(t, 0, value)
		assert.Same(t, testError, d.Err())
	})

	t.Run("first settle wins", func(t *testing.T) {
		d := NewDeferred[int]()

		assert.True(t, d.Resolve(1))
		assert.False(t, d.Resolve(2))
		assert.False(t, d.Reject(errors.New("late")))

		value, err := d.Wait(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 1, value)
	})

	t.Run("done channel closes on settle", func(t *testing.T) {
		d := NewDeferred[string]()
		select {
		case <-d.Done():
			t.Fatal("done closed before settle")
		default:
		}

		d.Resolve("x")

		select {
		case <-d.Done():
		default:
			t.Fatal("done not closed after settle")
		}
	})

	t.Run("resolved and rejected constructors", func(t *testing.T) {
		testError := errors.New("test error")

		assert.True(t, Resolved(7).Settled())
		assert.Same(t, testError, Rejected[int](testError).Err())
	})

	t.Run("reject with nil error still rejects", func(t *testing.T) {
		d := NewDeferred[int]()

		assert.True(t, d.Reject(nil))
		assert.ErrorIs(t, d.Err(), ErrNilRejection)
		assert.ErrorIs(t, Rejected[int](nil).Err(), ErrNilRejection)
	})
}

func TestWait(t *testing.T) {
	t.Run("returns context error when context ends first", func(t *testing.T) {
		d := NewDeferred[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := d.Wait(ctx)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, d.Settled())
	})

	t.Run("unblocks when settled from another goroutine", func(t *testing.T) {
		d := NewDeferred[int]()
		go func() {
			time.Sleep(5 * time.Millisecond)
			d.Resolve(3)
		}()

		value, err := d.Wait(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 3, value)
	})
}

func TestThen(t *testing.T) {
	t.Run("success handler transforms value", func(t *testing.T) {
		d := NewDeferred[int]()
		next := Then(d, func(v int) (string, error) {
			return fmt.Sprintf("value_%d", v), nil
		}, func(err error) (string, error) {
			return "", err
		})

		d.Resolve(42)

		value, err := next.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "value_42", value)
	})

	t.Run("error handler recovers with value", func(t *testing.T) {
		d := NewDeferred[int]()
		next := Then(d, func(v int) (string, error) {
			return "unexpected", nil
		}, func(err error) (string, error) {
			return "recovered", nil
		})

		d.Reject(errors.New("test error"))

		value, err := next.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "recovered", value)
	})

	t.Run("success handler error rejects next", func(t *testing.T) {
		d := NewDeferred[int]()
		stepError := errors.New("step failed")
		next := Then(d, func(v int) (int, error) {
			return 0, stepError
		}, func(err error) (int, error) {
			return 0, err
		})

		d.Resolve(1)

		assert.Same(t, stepError, next.Err())
	})

	t.Run("registered after settle runs immediately", func(t *testing.T) {
		d := Resolved(5)
		var called []int

		Then(d, func(v int) (any, error) {
			called = append(called, v)
			return nil, nil
		}, func(err error) (any, error) {
			return nil, err
		})

		assert.Equal(t, []int{5}, called)
	})
}

func TestGo(t *testing.T) {
	t.Run("resolves with function result", func(t *testing.T) {
		d := Go(context.Background(), func(ctx context.Context) (int, error) {
			return 9, nil
		})

		value, err := d.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 9, value)
	})

	t.Run("rejects with function error", func(t *testing.T) {
		testError := errors.New("test error")
		d := Go(context.Background(), func(ctx context.Context) (int, error) {
			return 0, testError
		})

		_, err := d.Wait(context.Background())
		assert.Same(t, testError, err)
	})

	t.Run("passes context through", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		d := Go(ctx, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, ctx.Err()
		})

		_, err := d.Wait(context.Background())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("panic becomes rejection", func(t *testing.T) {
		d := Go(context.Background(), func(ctx context.Context) (int, error) {
			panic("boom")
		})

		_, err := d.Wait(context.Background())
		assert.ErrorIs(t, err, ErrPanicked)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("goexit becomes rejection", func(t *testing.T) {
		d := Go(context.Background(), func(ctx context.Context) (int, error) {
			runtime.Goexit()
			return 1, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_, err := d.Wait(ctx)
		assert.ErrorIs(t, err, ErrGoexit)
	})
}

func TestJoin(t *testing.T) {
	t.Run("resolves when all resolved", func(t *testing.T) {
		d1 := NewDeferred[int]()
		d2 := NewDeferred[int]()
		d3 := NewDeferred[int]()

		combined := Join(d1, d2, d3)

		d1.Resolve(1)
		d2.Resolve(2)
		assert.False(t, combined.Settled())
		d3.Resolve(3)

		values, err := combined.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, values)
	})

	t.Run("preserves order", func(t *testing.T) {
		d1 := NewDeferred[string]()
		d2 := NewDeferred[string]()
		d3 := NewDeferred[string]()

		combined := Join(d1, d2, d3)

		// Resolve in reverse order
		d3.Resolve("third")
		d1.Resolve("first")
		d2.Resolve("second")

		values, err := combined.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"}, values)
	})

	t.Run("waits for all before rejecting", func(t *testing.T) {
		d1 := NewDeferred[int]()
		d2 := NewDeferred[int]()
		testError := errors.New("fail")

		combined := Join(d1, d2)
		d1.Reject(testError)
		assert.False(t, combined.Settled())
		d2.Resolve(2)

		_, err := combined.Wait(context.Background())
		assert.Same(t, testError, err)
	})

	t.Run("aggregates multiple errors", func(t *testing.T) {
		error1 := errors.New("error 1")
		error2 := errors.New("error 2")

		combined := Join(Rejected[int](error1), Resolved(1), Rejected[int](error2))

		_, err := combined.Wait(context.Background())
		var merr *multierror.Error
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, []error{error1, error2}, merr.Errors)
		assert.ErrorIs(t, err, error1)
		assert.ErrorIs(t, err, error2)
	})

	t.Run("nil rejection counts as failure", func(t *testing.T) {
		combined := Join(Resolved(1), Rejected[int](nil))

		_, err := combined.Wait(context.Background())
		assert.ErrorIs(t, err, ErrNilRejection)
	})

	t.Run("empty list", func(t *testing.T) {
		values, err := Join[int]().Wait(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []int{}, values)
	})
}
