package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// captureStdout swaps osStdout for a pipe. The returned func restores it and
// yields what was written.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)

	saved := osStdout
	osStdout = w
	t.Cleanup(func() { osStdout = saved })

	return func() string {
		w.Close()
		osStdout = saved
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}

func TestSetup_Destination(t *testing.T) {
	t.Run("file keeps stdout clean", func(t *testing.T) {
		stdout := captureStdout(t)

		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("ball stepped")

		assert.Empty(t, stdout(), "replies share stdout with the host")
		assert.Contains(t, file.String(), "Logging initialized")
		assert.Contains(t, file.String(), "ball stepped")
	})

	t.Run("no file falls back to stdout", func(t *testing.T) {
		stdout := captureStdout(t)

		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("ball stepped")

		assert.Contains(t, stdout(), "ball stepped")
	})
}

func TestSetup_Level(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)

			m.Logger().Debug("slice computed")
			m.Logger().Error("lock poisoned")

			assert.Equal(t, tt.wantDebug, strings.Contains(buf.String(), "slice computed"))
			assert.Contains(t, buf.String(), "lock poisoned")
		})
	}
}

func TestSetup_TimestampsInUTC(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)
	m.Logger().Info("x")

	line := strings.SplitN(buf.String(), "\n", 2)[0]
	require.True(t, strings.HasPrefix(line, "time="), line)
	stamp := strings.Fields(line)[0][len("time="):]
	_, err := time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(stamp, "Z"), stamp)
}

func TestSetup_SecondCallRedirects(t *testing.T) {
	var before, after bytes.Buffer
	m := NewSlogManager()

	m.Setup(&before, "info", nil)
	m.Logger().Info("early")
	m.Setup(&after, "info", nil)
	m.Logger().Info("late")

	assert.Contains(t, before.String(), "early")
	assert.NotContains(t, before.String(), "late")
	assert.Contains(t, after.String(), "late")
}

func TestSetup_SessionAttrs(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	id := ""
	m.GetSessionID = func() string { return id }
	m.GetPreset = func() string { return "hoops" }
	m.Setup(&buf, "info", nil)

	m.Logger().Info("before load")
	assert.NotContains(t, buf.String(), "session=")

	id = "abc-123"
	m.Logger().Info("after load")
	assert.Contains(t, buf.String(), "session=abc-123")
	assert.Contains(t, buf.String(), "preset=hoops")
}

func TestSetup_WithOTelProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", provider)

	m.Logger().Info("bridged")
	assert.Contains(t, buf.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestLogger_BeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Same(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))

	// no-op until Setup
	m.WriteLog("tick", "ignored", "error")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "debug", nil)

	log := m.Component("dispatcher")
	log.Debug("handler registered", "command", "tick")

	assert.Contains(t, buf.String(), "component=dispatcher")
	assert.Contains(t, buf.String(), "command=tick")
}

func TestWriteLog(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "level=DEBUG"},
		{"INFO", "level=INFO"},
		{"warn", "level=WARN"},
		{"ERROR", "level=ERROR"},
		{"trace", "level=INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, "debug", nil)
			buf.Reset()

			m.WriteLog("load_hoops", "Loaded preset hoops", tt.level)

			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, `msg="Loaded preset hoops"`)
			assert.Contains(t, out, "function=load_hoops")
		})
	}
}

func TestParseLevel(t *testing.T) {
	want := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"Info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, lvl := range want {
		assert.Equal(t, lvl, parseLevel(in), in)
	}
}
