package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options controls how records are encoded. Color only applies to text.
type Options struct {
	Format Format
	Level  slog.Level
	Color  bool
}

// New builds the process logger on stdout. Kubernetes, dev and prod get
// JSON at info level; local runs get colored text at debug level.
// LOG_LEVEL (debug, info, warn, error) overrides the level in both modes.
func New() *slog.Logger {
	return NewWithWriter(os.Stdout, optionsFromEnv())
}

// NewWithServiceContext is New with service identity attached to every record.
func NewWithServiceContext(serviceName, version string) *slog.Logger {
	return New().With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", os.Getenv("ENV")),
	)
}

func NewWithWriter(w io.Writer, opts Options) *slog.Logger {
	var inner slog.Handler
	if opts.Format == FormatJSON {
		inner = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: opts.Level, AddSource: true})
	} else {
		inner = slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level})
	}

	h := &handler{inner: inner}
	if opts.Color && opts.Format != FormatJSON {
		h.paint = &painter{w: w}
	}
	return slog.New(h)
}

func optionsFromEnv() Options {
	_, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST")
	env := os.Getenv("ENV")

	opts := Options{Format: FormatText, Level: slog.LevelDebug, Color: true}
	if inK8s || env == "prod" || env == "dev" {
		opts = Options{Format: FormatJSON, Level: slog.LevelInfo}
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(raw)); err == nil {
			opts.Level = level
		}
	}
	return opts
}

// handler adds trace_id and span_id from the active span. With a painter
// set, warning and error lines are wrapped in ANSI color codes.
type handler struct {
	inner slog.Handler
	paint *painter
}

// painter serializes writes to the shared writer so escape codes never
// interleave with another record.
type painter struct {
	mu sync.Mutex
	w  io.Writer
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	r = r.Clone()
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	if h.paint == nil {
		return h.inner.Handle(ctx, r)
	}

	h.paint.mu.Lock()
	defer h.paint.mu.Unlock()

	code := colorCode(r.Level)
	if code == "" {
		return h.inner.Handle(ctx, r)
	}
	if _, err := io.WriteString(h.paint.w, "\x1b["+code+"m"); err != nil {
		return err
	}
	err := h.inner.Handle(ctx, r)
	if _, resetErr := io.WriteString(h.paint.w, "\x1b[0m"); err == nil {
		err = resetErr
	}
	return err
}

func colorCode(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "31"
	case level >= slog.LevelWarn:
		return "33"
	default:
		return ""
	}
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{inner: h.inner.WithAttrs(attrs), paint: h.paint}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{inner: h.inner.WithGroup(name), paint: h.paint}
}
