package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/krew-solutions/ascetic-messaging-go/asceticmessaging/listener"
	"github.com/pkg/errors"
)

// Message is what the CLI sends through the configured listeners.
type Message struct {
	Text   string
	SentAt time.Time
}

func BuildListener(cfg *FileConfig, logger *slog.Logger) *listener.CompositeListenerImp[Message] {
	members := make([]listener.Listener[Message], 0, len(cfg.Listeners))
	for _, lc := range cfg.Listeners {
		var l listener.Listener[Message]
		switch lc.Kind {
		case KindLog:
			l = newLogListener(logger.With("listener", lc.Name))
		case KindDelay:
			l = newDelayListener(lc.Delay)
		case KindFail:
			l = newFailListener(lc.Error)
		default:
			l = listener.Empty[Message]()
		}
		members = append(members, listener.NewLoggingListener[Message](
			listener.NewNamedListener(lc.Name, l), logger, lc.Name))
	}
	return listener.NewCompositeListener(members...)
}

func newLogListener(logger *slog.Logger) listener.Listener[Message] {
	return listener.ListenerFunc[Message](func(ctx context.Context, m Message) error {
		logger.InfoContext(ctx, "message received", "text", m.Text, "sent_at", m.SentAt)
		return nil
	})
}

func newDelayListener(delay time.Duration) listener.Listener[Message] {
	return listener.ListenerFunc[Message](func(ctx context.Context, _ Message) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func newFailListener(reason string) listener.Listener[Message] {
	if reason == "" {
		reason = "configured to fail"
	}
	err := errors.New(reason)
	return listener.ListenerFunc[Message](func(context.Context, Message) error {
		return err
	})
}
