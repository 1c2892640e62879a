// Package logger provides structured logging for the instance lifecycle
// engine: subsystem-tagged slog.Loggers with OpenTelemetry trace context
// stitched in, log file rotation, and a per-instance log-splitting handler
// for ciel's own instance operations.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Subsystem names for per-subsystem logging configuration.
const (
	SubsystemNSName        = "NSNAME"
	SubsystemOverlay       = "OVERLAY"
	SubsystemMachineBroker = "MACHINEBROKER"
	SubsystemInstance      = "INSTANCE"
	SubsystemWorkspace     = "WORKSPACE"
	SubsystemCLI           = "CLI"
)

type contextKey string

const loggerKey contextKey = "logger"

// Config holds logging configuration, read from the environment by
// cmd/ciel's config package and passed in here rather than re-read.
type Config struct {
	// DefaultLevel is the default log level for all subsystems.
	DefaultLevel slog.Level
	// SubsystemLevels maps subsystem names to their specific log levels.
	// If a subsystem is not in this map, DefaultLevel is used.
	SubsystemLevels map[string]slog.Level
	// AddSource adds source file information to log entries.
	AddSource bool
	// FilePath, when non-empty, directs output to a rotated log file
	// instead of stderr (see lumberjack.Logger below for the rotation
	// policy). Empty means stderr, which keeps stdout free for the
	// CLI's own command output.
	FilePath string
	// MaxSizeMB, MaxBackups and MaxAgeDays configure rotation when
	// FilePath is set. Zero values fall back to lumberjack's defaults.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// InstanceLogDir, when non-empty, additionally splits every record the
	// Instance subsystem logs with an "instance" attribute into its own
	// per-instance file under this directory — so `ciel start`/`exec`
	// activity for one instance can be tailed without grepping the whole
	// process log. Only SubsystemInstance honors this; every other
	// subsystem's records never carry an "instance" attribute to split on.
	InstanceLogDir string
}

// instanceLogPath returns the per-instance log file path under dir, or ""
// if dir is unset (disabling the split).
func instanceLogPath(dir, instance string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, instance+".log")
}

// ParseLevel parses a log level string, defaulting to Info on anything it
// doesn't recognize.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFor returns the log level for the given subsystem.
func (c Config) LevelFor(subsystem string) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

func (c Config) output() *os.File {
	return os.Stderr
}

func (c Config) writer() interface{ Write([]byte) (int, error) } {
	if c.FilePath == "" {
		return c.output()
	}
	return &lumberjack.Logger{
		Filename:   c.FilePath,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
		Compress:   true,
	}
}

// New creates a subsystem-tagged logger. otelHandler, if non-nil, receives
// every record alongside the primary sink (see pkg/otelinit). For
// SubsystemInstance with cfg.InstanceLogDir set, records additionally split
// into per-instance files via InstanceHandler — the one piece of sink
// composition this module needs that no other subsystem does, since only
// instance operations log against a particular named instance.
func New(subsystem string, cfg Config, otelHandler slog.Handler) *slog.Logger {
	level := cfg.LevelFor(subsystem)
	jsonHandler := slog.NewJSONHandler(cfg.writer(), &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	})

	sinks := []slog.Handler{jsonHandler}
	if otelHandler != nil {
		sinks = append(sinks, otelHandler)
	}
	if subsystem == SubsystemInstance && cfg.InstanceLogDir != "" {
		// The discard handler's own level is irrelevant to what reaches the
		// instance log file (InstanceHandler.Handle decides that by
		// attribute, not level), but multiHandler still consults Enabled
		// before calling Handle, so it must accept everything the outer
		// traceContextHandler already let through.
		discard := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
		sinks = append(sinks, NewInstanceHandler(discard, func(instance string) string {
			return instanceLogPath(cfg.InstanceLogDir, instance)
		}))
	}

	var base slog.Handler = sinks[0]
	if len(sinks) > 1 {
		base = &multiHandler{handlers: sinks}
	}

	return slog.New(&traceContextHandler{
		Handler:   base,
		subsystem: subsystem,
		level:     level,
	})
}

// traceContextHandler tags every record with its subsystem and, when the
// context carries a valid span, trace/span IDs.
type traceContextHandler struct {
	slog.Handler
	subsystem string
	level     slog.Level
}

func (h *traceContextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *traceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.String("subsystem", h.subsystem))
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{Handler: h.Handler.WithAttrs(attrs), subsystem: h.subsystem, level: h.level}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{Handler: h.Handler.WithGroup(name), subsystem: h.subsystem, level: h.level}
}

// multiHandler fans a record out to every handler in the list.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: out}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: out}
}

// AddToContext attaches logger to ctx for retrieval by FromContext.
func AddToContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger stashed by AddToContext, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
