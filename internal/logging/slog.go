package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Options selects the outputs of a SlogManager. Nil writers are skipped.
type Options struct {
	Console io.Writer
	File    io.Writer
	Level   string

	// Provider enables the OTel bridge when non-nil.
	Provider *sdklog.LoggerProvider

	// Context adds dynamic attributes to every record.
	Context ContextProvider
}

// SlogManager owns the application logger of one mapview run.
type SlogManager struct {
	service  string
	logger   *slog.Logger
	provider *sdklog.LoggerProvider
}

// NewSlogManager returns a manager whose OTel records are attributed to
// service.
func NewSlogManager(service string) *SlogManager {
	return &SlogManager{service: service}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// utcTime renders record times as RFC3339 in UTC.
func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey {
		return a
	}
	if t, ok := a.Value.Any().(time.Time); ok {
		a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
	}
	return a
}

// Setup builds the logger from opts. Calling it again replaces the
// previous logger.
func (m *SlogManager) Setup(opts Options) {
	lvl := parseLevel(opts.Level)
	m.provider = opts.Provider

	text := &slog.HandlerOptions{Level: lvl, ReplaceAttr: utcTime}
	var sinks []slog.Handler
	for _, w := range []io.Writer{opts.Console, opts.File} {
		if w != nil {
			sinks = append(sinks, slog.NewTextHandler(w, text))
		}
	}
	if opts.Provider != nil {
		sinks = append(sinks, otelslog.NewHandler(m.service, otelslog.WithLoggerProvider(opts.Provider)))
	}

	m.logger = slog.New(newAttrHandler(NewFanout(sinks...), opts.Context))
	m.logger.Debug("Logging initialized", "level", lvl.String())
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush pushes buffered OTel records to their exporters.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.ForceFlush(ctx)
}
