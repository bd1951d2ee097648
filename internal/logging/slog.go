package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// swapped in tests
var (
	osStdout = os.Stdout
	osPipe   = os.Pipe
)

const bridgeName = "github.com/ballsym/extension"

// SlogManager owns the process logger. Setup may be called again once the
// config is loaded; loggers handed out earlier keep their old destination.
type SlogManager struct {
	logger   *slog.Logger
	provider *sdklog.LoggerProvider

	// When set, every record carries the live session id and preset.
	GetSessionID func() string
	GetPreset    func() string
}

// NewSlogManager returns a manager that logs through slog.Default until
// Setup is called.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel accepts slog level names in any case; anything else is info.
func parseLevel(name string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// utcSeconds renders record times as RFC 3339 in UTC.
func utcSeconds(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey || a.Value.Kind() != slog.KindTime {
		return a
	}
	return slog.String(slog.TimeKey, a.Value.Time().UTC().Format(time.RFC3339))
}

// Setup routes records to w, or to stdout when w is nil. Command replies
// share stdout with the host in serve mode, so callers pass the log file
// whenever they have one. A non-nil provider adds the OTel bridge.
func (m *SlogManager) Setup(w io.Writer, level string, provider *sdklog.LoggerProvider) {
	if w == nil {
		w = osStdout
	}
	m.provider = provider

	sinks := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level), ReplaceAttr: utcSeconds}),
	}
	if provider != nil {
		sinks = append(sinks, otelslog.NewHandler(bridgeName, otelslog.WithLoggerProvider(provider)))
	}

	m.logger = slog.New(&sessionStamp{next: newFanout(sinks...), attrs: m.sessionAttrs})
	m.logger.Info("Logging initialized", "level", level, "otel", provider != nil)
}

func (m *SlogManager) sessionAttrs() []slog.Attr {
	var attrs []slog.Attr
	if m.GetSessionID != nil {
		if id := m.GetSessionID(); id != "" {
			attrs = append(attrs, slog.String("session", id))
		}
	}
	if m.GetPreset != nil {
		if p := m.GetPreset(); p != "" {
			attrs = append(attrs, slog.String("preset", p))
		}
	}
	return attrs
}

// Logger returns the configured logger, or slog.Default before Setup.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Component returns the logger tagged with a component attribute.
// Values satisfy the dispatcher's Logger interface directly.
func (m *SlogManager) Component(name string) *slog.Logger {
	return m.Logger().With("component", name)
}

// Flush exports records still batched for the OTel bridge.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	return m.provider.ForceFlush(ctx)
}

// WriteLog logs data at the named level with the calling command attached.
// It does nothing before Setup.
func (m *SlogManager) WriteLog(functionName, data, level string) {
	if m.logger == nil {
		return
	}
	m.logger.Log(context.Background(), parseLevel(level), data, "function", functionName)
}
