package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// fanout delivers every record to each sink that accepts its level.
type fanout struct {
	sinks []slog.Handler
}

func newFanout(sinks ...slog.Handler) *fanout {
	return &fanout{sinks: slices.DeleteFunc(slices.Clone(sinks), func(h slog.Handler) bool { return h == nil })}
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f.sinks, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

// Handle keeps going after a failing sink; all failures are joined.
func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.sinks {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f *fanout) each(fn func(slog.Handler) slog.Handler) *fanout {
	next := make([]slog.Handler, len(f.sinks))
	for i, h := range f.sinks {
		next[i] = fn(h)
	}
	return &fanout{sinks: next}
}

// sessionStamp appends the attributes of the live session to each record.
// The attrs func is evaluated per record so a reload shows up immediately.
type sessionStamp struct {
	next  slog.Handler
	attrs func() []slog.Attr
}

func (s *sessionStamp) Enabled(ctx context.Context, level slog.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *sessionStamp) Handle(ctx context.Context, r slog.Record) error {
	if s.attrs != nil {
		r.AddAttrs(s.attrs()...)
	}
	return s.next.Handle(ctx, r)
}

func (s *sessionStamp) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionStamp{next: s.next.WithAttrs(attrs), attrs: s.attrs}
}

func (s *sessionStamp) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	return &sessionStamp{next: s.next.WithGroup(name), attrs: s.attrs}
}
