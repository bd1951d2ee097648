// Package otel builds the OpenTelemetry log pipeline behind the slog bridge.
// Records are batched to a local writer and, when an endpoint is set, to an
// OTLP/HTTP collector.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ballsym/extension/internal/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ErrNoExporter is returned when OTel is enabled with nowhere to send records.
var ErrNoExporter = errors.New("otel enabled without a log writer or endpoint")

// Provider owns the log provider. A disabled Provider is usable and does
// nothing.
type Provider struct {
	logs *sdklog.LoggerProvider
}

// New builds the pipeline described by cfg. w receives pretty-printed
// records and may be nil when an endpoint is configured.
func New(ctx context.Context, cfg config.OTelConfig, w io.Writer, version string) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	opts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	batch := []sdklog.BatchProcessorOption{sdklog.WithExportTimeout(cfg.BatchTimeout)}

	if w != nil {
		exp, err := writerExporter(w)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp, batch...)))
	}
	if cfg.Endpoint != "" {
		exp, err := collectorExporter(ctx, cfg.Endpoint, cfg.Insecure)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdklog.WithProcessor(sdklog.NewBatchProcessor(exp, batch...)))
	}
	if len(opts) == 1 {
		return nil, ErrNoExporter
	}

	return &Provider{logs: sdklog.NewLoggerProvider(opts...)}, nil
}

func writerExporter(w io.Writer) (sdklog.Exporter, error) {
	exp, err := stdoutlog.New(stdoutlog.WithWriter(w), stdoutlog.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating writer exporter: %w", err)
	}
	return exp, nil
}

func collectorExporter(ctx context.Context, endpoint string, insecure bool) (sdklog.Exporter, error) {
	opts := []otlploghttp.Option{otlploghttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlploghttp.WithInsecure())
	}
	exp, err := otlploghttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter for %s: %w", endpoint, err)
	}
	return exp, nil
}

// LoggerProvider is nil when disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	return p.logs
}

// Enabled reports whether a pipeline was built.
func (p *Provider) Enabled() bool {
	return p.logs != nil
}

// Flush exports everything batched so far.
func (p *Provider) Flush(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	if err := p.logs.ForceFlush(ctx); err != nil {
		return fmt.Errorf("flushing logs: %w", err)
	}
	return nil
}

// Shutdown flushes and stops every exporter. Later calls are no-ops.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.logs == nil {
		return nil
	}
	logs := p.logs
	p.logs = nil
	if err := logs.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down logs: %w", err)
	}
	return nil
}
