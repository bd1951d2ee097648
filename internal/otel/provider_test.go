package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ballsym/extension/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
)

func TestNew_Disabled(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(context.Background(), config.OTelConfig{}, &buf, "test")
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Nil(t, p.LoggerProvider())
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.Zero(t, buf.Len())
}

func TestNew_NoExporter(t *testing.T) {
	_, err := New(context.Background(), config.OTelConfig{Enabled: true, ServiceName: "ballsym"}, nil, "test")
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestNew_WriterReceivesRecords(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.OTelConfig{Enabled: true, ServiceName: "ballsym", BatchTimeout: time.Second}
	p, err := New(context.Background(), cfg, &buf, "1.2.3")
	require.NoError(t, err)
	require.True(t, p.Enabled())

	var rec otellog.Record
	rec.SetBody(otellog.StringValue("prediction served"))
	p.LoggerProvider().Logger("test").Emit(context.Background(), rec)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Flush(ctx))

	out := buf.String()
	assert.Contains(t, out, "prediction served")
	assert.Contains(t, out, "ballsym")
	assert.Contains(t, out, "1.2.3")

	require.NoError(t, p.Shutdown(ctx))
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(ctx), "second shutdown is a no-op")
}

func TestNew_EndpointOnly(t *testing.T) {
	cfg := config.OTelConfig{Enabled: true, ServiceName: "ballsym", Endpoint: "127.0.0.1:4318", Insecure: true, BatchTimeout: time.Second}
	p, err := New(context.Background(), cfg, nil, "test")
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = p.Shutdown(ctx)
}
