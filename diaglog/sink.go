package diaglog

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sink is a backend capable of recording entries.
//
// All operations accept a context and return an error instead of panicking.
// A sink that does not support a read operation (a write-only remote
// collector, for example) returns an empty or zero result rather than an
// error, so the facade can treat absence of capability uniformly.
type Sink interface {
	// Store records the entry, assigns its ID, and returns the stored copy.
	Store(ctx context.Context, e Entry) (Entry, error)

	// All returns every stored entry, newest first.
	All(ctx context.Context) ([]Entry, error)

	// ByCategory returns stored entries of one category, newest first.
	ByCategory(ctx context.Context, c Category) ([]Entry, error)

	// Clear removes all stored entries.
	Clear(ctx context.Context) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
}

// NoopSink accepts every entry and retains nothing. It is the sink for
// headless contexts where neither local storage nor a collector applies.
type NoopSink struct{}

var _ Sink = NoopSink{}

// Store assigns a local ID and discards the entry.
func (NoopSink) Store(_ context.Context, e Entry) (Entry, error) {
	e.ID = uuid.NewString()
	return e, nil
}

// All always returns no entries.
func (NoopSink) All(context.Context) ([]Entry, error) { return nil, nil }

// ByCategory always returns no entries.
func (NoopSink) ByCategory(context.Context, Category) ([]Entry, error) { return nil, nil }

// Clear is a no-op.
func (NoopSink) Clear(context.Context) error { return nil }

// Count always returns zero.
func (NoopSink) Count(context.Context) (int, error) { return 0, nil }

// ConsoleSink writes entries to the process console and retains nothing.
// It is selected when no persistent store or collector is configured, so
// diagnostics remain visible even without a durable backend.
type ConsoleSink struct {
	w *consoleWriter
}

var _ Sink = (*ConsoleSink)(nil)

// NewConsoleSink creates a console-only sink writing through log.
func NewConsoleSink(log zerolog.Logger) *ConsoleSink {
	return &ConsoleSink{w: newConsoleWriter(log)}
}

// Store assigns a local ID and echoes the entry to the console.
func (s *ConsoleSink) Store(_ context.Context, e Entry) (Entry, error) {
	e.ID = uuid.NewString()
	s.w.write(e)
	return e, nil
}

// All always returns no entries.
func (s *ConsoleSink) All(context.Context) ([]Entry, error) { return nil, nil }

// ByCategory always returns no entries.
func (s *ConsoleSink) ByCategory(context.Context, Category) ([]Entry, error) { return nil, nil }

// Clear is a no-op.
func (s *ConsoleSink) Clear(context.Context) error { return nil }

// Count always returns zero.
func (s *ConsoleSink) Count(context.Context) (int, error) { return 0, nil }
