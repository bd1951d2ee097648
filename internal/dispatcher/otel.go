package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const scope = "github.com/ballsym/extension/internal/dispatcher"

// instrument creates the dispatcher's instruments on the global meter
// provider. They are no-ops until a provider is installed.
func (d *Dispatcher) instrument() error {
	m := otel.Meter(scope)

	var err error
	if d.queueSize, err = m.Int64ObservableGauge("ballsym.dispatcher.queue.size",
		metric.WithDescription("Events waiting in a buffered command queue"),
		metric.WithUnit("{event}"),
	); err != nil {
		return fmt.Errorf("creating queue gauge: %w", err)
	}
	if _, err = m.RegisterCallback(d.observeQueues, d.queueSize); err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}

	if d.processed, err = m.Int64Counter("ballsym.dispatcher.events.processed",
		metric.WithDescription("Buffered events handled by a queue worker"),
		metric.WithUnit("{event}"),
	); err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}

	if d.dropped, err = m.Int64Counter("ballsym.dispatcher.events.dropped",
		metric.WithDescription("Events rejected because their queue was full"),
		metric.WithUnit("{event}"),
	); err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}

	if d.duration, err = m.Float64Histogram("ballsym.command.duration",
		metric.WithDescription("Time spent inside a timed command handler"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50),
	); err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}
	return nil
}

func (d *Dispatcher) observeQueues(_ context.Context, o metric.Observer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for cmd, buf := range d.buffers {
		o.ObserveInt64(d.queueSize, int64(len(buf)), metric.WithAttributes(attribute.String("command", cmd)))
	}
	return nil
}
