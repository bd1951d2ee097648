// Package dispatcher routes host commands to handlers. A command can run
// inline or through its own ordered queue, and can be logged and timed.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrClosed is returned when dispatching to a queued command after Close.
	ErrClosed = errors.New("dispatcher closed")
	// ErrUnknownCommand is returned for commands nothing was registered for.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQueueFull is returned when a non-blocking queue has no room left.
	ErrQueueFull = errors.New("queue full")
)

// Queued is the result of a command that was accepted onto its queue.
const Queued = "queued"

// Event is one command invocation.
type Event struct {
	Command   string
	Args      []string
	Payload   any // in-process callers may pass a decoded value instead of Args
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*settings)

type settings struct {
	queueSize int
	blocking  bool
	logged    bool
	timed     bool
}

// Buffered runs the handler on a dedicated goroutine fed by a queue of the
// given size. Events of one command are handled in dispatch order.
func Buffered(size int) Option {
	return func(s *settings) { s.queueSize = size }
}

// Blocking makes Dispatch wait for room on a full queue instead of failing.
func Blocking() Option {
	return func(s *settings) { s.blocking = true }
}

// Logged logs each call at debug level and each failure at error level.
func Logged() Option {
	return func(s *settings) { s.logged = true }
}

// Timed records handler time in the ballsym.command.duration histogram.
func Timed() Option {
	return func(s *settings) { s.timed = true }
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	logger Logger

	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	duration  metric.Float64Histogram

	// mu guards routes, buffers and closed. Queued dispatches hold it for
	// reading while they send so Close cannot close a channel under them.
	mu      sync.RWMutex
	routes  map[string]HandlerFunc
	buffers map[string]chan Event
	closed  bool
	workers sync.WaitGroup
}

// New creates a Dispatcher reporting to the global OTel meter provider.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		logger:  logger,
		routes:  make(map[string]HandlerFunc),
		buffers: make(map[string]chan Event),
	}
	if err := d.instrument(); err != nil {
		return nil, err
	}
	return d, nil
}

// Register installs h for command, replacing any earlier handler. Timing
// wraps the handler itself, so a queued command is timed on its worker.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if s.timed {
		h = d.timed(command, h)
	}
	if s.queueSize > 0 {
		h = d.queued(command, s.queueSize, s.blocking, h)
	}
	if s.logged {
		h = d.logged(command, h)
	}

	d.mu.Lock()
	d.routes[command] = h
	d.mu.Unlock()
}

// Dispatch runs the handler registered for e.Command. A zero Timestamp is
// set to the current time.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	d.mu.RLock()
	h, ok := d.routes[e.Command]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(e)
}

// HasHandler reports whether command is registered.
func (d *Dispatcher) HasHandler(command string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.routes[command]
	return ok
}

// Commands lists the registered commands in sorted order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cmds := make([]string, 0, len(d.routes))
	for cmd := range d.routes {
		cmds = append(cmds, cmd)
	}
	slices.Sort(cmds)
	return cmds
}

// Close stops accepting queued events and waits until everything already
// queued has been handled. Inline commands keep working.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, buf := range d.buffers {
		close(buf)
	}
	d.mu.Unlock()

	d.workers.Wait()
}

func (d *Dispatcher) queued(command string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)
	attrs := metric.WithAttributes(attribute.String("command", command))

	d.mu.Lock()
	d.buffers[command] = buffer
	d.mu.Unlock()

	d.workers.Add(1)
	go func() {
		defer d.workers.Done()
		for e := range buffer {
			if _, err := h(e); err != nil {
				d.logger.Error("queued event failed", "command", command, "error", err)
			}
			d.processed.Add(context.Background(), 1, attrs)
		}
	}()

	return func(e Event) (any, error) {
		d.mu.RLock()
		defer d.mu.RUnlock()
		if d.closed {
			return nil, ErrClosed
		}
		if blocking {
			buffer <- e
			return Queued, nil
		}
		select {
		case buffer <- e:
			return Queued, nil
		default:
			d.dropped.Add(context.Background(), 1, attrs)
			return nil, fmt.Errorf("%w: %s", ErrQueueFull, command)
		}
	}
}

func (d *Dispatcher) timed(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		result, err := h(e)
		ms := float64(time.Since(start).Microseconds()) / 1000
		d.duration.Record(context.Background(), ms, metric.WithAttributes(
			attribute.String("command", command),
			attribute.Bool("error", err != nil),
		))
		return result, err
	}
}

func (d *Dispatcher) logged(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("dispatching", "command", command, "args", len(e.Args))

		result, err := h(e)
		if err != nil {
			d.logger.Error("command failed", "command", command, "took", time.Since(start), "error", err)
			return result, err
		}
		d.logger.Debug("command done", "command", command, "took", time.Since(start))
		return result, nil
	}
}
