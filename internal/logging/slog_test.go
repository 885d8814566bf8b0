package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestSetup_Outputs(t *testing.T) {
	var console, file bytes.Buffer
	m := NewSlogManager("mapview")
	m.Setup(Options{Console: &console, File: &file, Level: "info"})
	m.Logger().Warn("Unknown color, using default", "source", "media", "line", 4)

	for name, buf := range map[string]*bytes.Buffer{"console": &console, "file": &file} {
		assert.Contains(t, buf.String(), "Unknown color", name)
		assert.Contains(t, buf.String(), "line=4", name)
		assert.Regexp(t, `time=\d{4}-\d\d-\d\dT\d\d:\d\d:\d\dZ`, buf.String(), name)
	}
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "info", wantInfo: true, wantWarn: true},
		{level: "warn", wantWarn: true},
		{level: "error"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager("mapview")
			m.Setup(Options{File: &buf, Level: tt.level})

			m.Logger().Debug("row detail")
			m.Logger().Info("build summary")
			m.Logger().Warn("row rejected")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("row detail")))
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("build summary")))
			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("row rejected")))
		})
	}
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := NewSlogManager("mapview")

	m.Setup(Options{File: &buf1, Level: "info"})
	m.Logger().Info("first")

	m.Setup(Options{File: &buf2, Level: "info"})
	m.Logger().Info("second")

	assert.Contains(t, buf1.String(), "first")
	assert.NotContains(t, buf1.String(), "second", "old file should not receive new logs")
	assert.Contains(t, buf2.String(), "second")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager("mapview")
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestSetup_WithOTelProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()

	var buf bytes.Buffer
	m := NewSlogManager("mapview")
	m.Setup(Options{File: &buf, Level: "info", Provider: provider})

	m.Logger().Info("otel integrated")
	assert.Contains(t, buf.String(), "otel integrated")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestSetup_ContextProvider(t *testing.T) {
	var buf bytes.Buffer
	buildID := ""
	m := NewSlogManager("mapview")
	m.Setup(Options{
		File:  &buf,
		Level: "info",
		Context: func() []slog.Attr {
			if buildID == "" {
				return nil
			}
			return []slog.Attr{slog.String("buildId", buildID)}
		},
	})

	m.Logger().Info("reading input")
	buildID = "b-1"
	m.Logger().Info("build complete")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if assert.Len(t, lines, 2) {
		assert.NotContains(t, string(lines[0]), "buildId")
		assert.Contains(t, string(lines[1]), "buildId=b-1")
	}
}

func TestNewZerolog_Level(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZerolog(&buf, "warn")

	zl.Info().Msg("quiet")
	zl.Warn().Str("path", "/media/a.jpg").Msg("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), `"path":"/media/a.jpg"`)
}
