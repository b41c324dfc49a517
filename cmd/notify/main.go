package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/krew-solutions/ascetic-messaging-go/asceticmessaging/listener"
)

func main() {
	settings, err := LoadSettings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCmd(settings, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the notify command. Flags default to settings; logs go
// to logOut.
func NewRootCmd(settings Settings, logOut io.Writer) *cobra.Command {
	var (
		message string
		sync    bool
	)

	cmd := &cobra.Command{
		Use:          "notify",
		Short:        "Send one message through a composite of configured listeners",
		Long:         `The notify command builds a composite listener from a YAML file, delivers a single message to every listener concurrently and reports how long the fan-out took.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(settings.LogLevel)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

			cfg, err := LoadFileConfig(settings.ConfigPath)
			if err != nil {
				return err
			}
			composite := BuildListener(cfg, logger)
			m := Message{Text: message, SentAt: time.Now()}

			start := time.Now()
			if sync {
				err = listener.NotifySync[Message](composite, m)
			} else {
				ctx := cmd.Context()
				if settings.Timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
					defer cancel()
				}
				err = composite.Notify(ctx, m)
			}
			elapsed := time.Since(start)
			if err != nil {
				logger.Error("delivery failed", "listeners", composite.Len(), "duration", elapsed, "error", err)
				return fmt.Errorf("error delivering message: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "delivered to %s in %s\n", countListeners(composite.Len()), elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&settings.ConfigPath, "config", "c", settings.ConfigPath, "path to the listeners YAML file")
	cmd.Flags().StringVarP(&message, "message", "m", "ping", "message text to deliver")
	cmd.Flags().DurationVar(&settings.Timeout, "timeout", settings.Timeout, "cancel delivery after this long (0 means never)")
	cmd.Flags().StringVar(&settings.LogLevel, "log-level", settings.LogLevel, "debug, info, warn or error")
	cmd.Flags().BoolVar(&sync, "sync", false, "deliver with NotifySync, ignoring --timeout")

	return cmd
}

func countListeners(n int) string {
	if n == 1 {
		return "1 listener"
	}
	return fmt.Sprintf("%d listeners", n)
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
	return level, nil
}
