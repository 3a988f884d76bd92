// Package logger builds the process slog.Logger and the HTTP request logging
// middleware.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

type Options struct {
	Level  slog.Leveler
	JSON   bool
	Writer io.Writer

	// FluentHost enables forwarding of every record to Fluent Bit.
	FluentHost string
	FluentPort int
	Tag        string
}

// New returns the logger and a close func that flushes the fluent client, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}

	var console slog.Handler
	if opts.JSON {
		console = slog.NewJSONHandler(opts.Writer, &slog.HandlerOptions{Level: opts.Level})
	} else {
		console = tint.NewHandler(opts.Writer, &tint.Options{Level: opts.Level, TimeFormat: time.DateTime})
	}

	closeFn := func() error { return nil }
	if opts.FluentHost == "" {
		return slog.New(console), closeFn, nil
	}

	port := opts.FluentPort
	if port == 0 {
		port = 24224
	}
	client, err := fluent.New(fluent.Config{FluentHost: opts.FluentHost, FluentPort: port, Async: true})
	if err != nil {
		return slog.New(console), closeFn, err
	}
	tag := opts.Tag
	if tag == "" {
		tag = "hbnb-web"
	}
	fh := NewFluentHandler(client, tag, opts.Level)
	return slog.New(Fanout(console, fh)), client.Close, nil
}

type ctxKey struct{}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}
