package listener

import (
	"context"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// LoggingListenerImp logs every notification of its delegate.
type LoggingListenerImp[T any] struct {
	delegate Listener[T]
	logger   *slog.Logger
	name     string
}

// NewLoggingListener wraps delegate. A nil logger means slog.Default().
func NewLoggingListener[T any](delegate Listener[T], logger *slog.Logger, name string) *LoggingListenerImp[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingListenerImp[T]{delegate: delegate, logger: logger, name: name}
}

func (l *LoggingListenerImp[T]) Notify(ctx context.Context, message T) error {
	logger := l.logger.With("listener", l.name, "notification_id", ulid.Make().String())
	logger.DebugContext(ctx, "listener notified")

	start := time.Now()
	err := l.delegate.Notify(ctx, message)
	elapsed := time.Since(start)

	if err != nil {
		logger.ErrorContext(ctx, "listener failed", "error", err, "duration", elapsed)
		return err
	}
	logger.DebugContext(ctx, "listener completed", "duration", elapsed)
	return nil
}
