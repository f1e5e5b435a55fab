package diaglog

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventKind discriminates subscriber notifications.
type EventKind int

const (
	// EventAdd carries a newly accepted entry.
	EventAdd EventKind = iota
	// EventClear signals that the sink was emptied.
	EventClear
)

// Event is a notification delivered to subscribers. Entry is populated for
// EventAdd only.
type Event struct {
	Kind  EventKind
	Entry Entry
}

// Listener receives subscriber notifications. Listeners are invoked in
// registration order; a panicking listener never prevents the remaining
// listeners from being notified.
type Listener func(Event)

// Logger is the coordinating facade for diagnostic logging. Its sink is
// fixed at construction and never re-evaluated. A Logger is safe for
// concurrent use.
//
// Logging is a non-critical side channel: no failure inside the subsystem
// propagates to callers of the leveled methods. Sink faults degrade to a
// console echo plus a synthesized entry so subscribers stay consistent.
type Logger struct {
	sink    Sink
	console *consoleWriter
	diag    zerolog.Logger
	now     func() time.Time

	mu     sync.Mutex
	lastTS int64
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn Listener
}

// Option customizes Logger construction.
type Option func(*Logger)

// WithConsoleLogger sets the zerolog logger used for the console fallback
// path and the facade's own diagnostics. Defaults to a timestamped logger
// on stderr.
func WithConsoleLogger(log zerolog.Logger) Option {
	return func(l *Logger) {
		l.console = newConsoleWriter(log)
		l.diag = log
	}
}

// WithNow overrides the timestamp source. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// New constructs a Logger bound to sink. A nil sink behaves as NoopSink.
func New(sink Sink, opts ...Option) *Logger {
	if sink == nil {
		sink = NoopSink{}
	}
	base := zerolog.New(os.Stderr).With().Timestamp().Logger()
	l := &Logger{
		sink:    sink,
		console: newConsoleWriter(base),
		diag:    base,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Info records an informational entry.
func (l *Logger) Info(ctx context.Context, msg string, details ...any) Entry {
	return l.log(ctx, CategoryInfo, msg, details)
}

// Success records a success entry.
func (l *Logger) Success(ctx context.Context, msg string, details ...any) Entry {
	return l.log(ctx, CategorySuccess, msg, details)
}

// Warning records a warning entry.
func (l *Logger) Warning(ctx context.Context, msg string, details ...any) Entry {
	return l.log(ctx, CategoryWarning, msg, details)
}

// Error records an error entry.
func (l *Logger) Error(ctx context.Context, msg string, details ...any) Entry {
	return l.log(ctx, CategoryError, msg, details)
}

// Debug records a debug entry.
func (l *Logger) Debug(ctx context.Context, msg string, details ...any) Entry {
	return l.log(ctx, CategoryDebug, msg, details)
}

func (l *Logger) log(ctx context.Context, cat Category, msg string, details []any) Entry {
	e := Entry{
		Timestamp: l.timestamp(),
		Category:  cat,
		Message:   msg,
	}
	// One detail is recorded as the payload itself; passing several folds
	// them into a single list so nothing a caller supplied is dropped.
	switch {
	case len(details) == 1:
		if details[0] != nil {
			e.Details = Sanitize(details[0])
		}
	case len(details) > 1:
		e.Details = Sanitize(details)
	}

	stored, err := l.sink.Store(ctx, e)
	if err != nil {
		l.diag.Warn().Err(err).Str("category", string(cat)).Msg("log sink store failed, falling back to console")
		e.ID = "local-" + uuid.NewString()
		l.console.write(e)
		stored = e
	}

	l.notify(Event{Kind: EventAdd, Entry: stored})
	return stored
}

// timestamp returns the current time in epoch milliseconds, clamped so that
// values never decrease across sequential calls on one Logger.
func (l *Logger) timestamp() int64 {
	ts := l.now().UnixMilli()
	l.mu.Lock()
	if ts < l.lastTS {
		ts = l.lastTS
	}
	l.lastTS = ts
	l.mu.Unlock()
	return ts
}

// All returns every stored entry, newest first. Sink faults degrade to an
// empty result; callers never see an error from the read side.
func (l *Logger) All(ctx context.Context) []Entry {
	entries, err := l.sink.All(ctx)
	if err != nil {
		l.diag.Error().Err(err).Msg("log sink read failed")
		return nil
	}
	return entries
}

// ByCategory returns stored entries of one category, newest first, degrading
// to an empty result on sink faults.
func (l *Logger) ByCategory(ctx context.Context, c Category) []Entry {
	entries, err := l.sink.ByCategory(ctx, c)
	if err != nil {
		l.diag.Error().Err(err).Str("category", string(c)).Msg("log sink read failed")
		return nil
	}
	return entries
}

// Count returns the number of stored entries, degrading to zero on sink
// faults.
func (l *Logger) Count(ctx context.Context) int {
	n, err := l.sink.Count(ctx)
	if err != nil {
		l.diag.Error().Err(err).Msg("log sink count failed")
		return 0
	}
	return n
}

// Clear empties the sink and notifies subscribers. The clear event is
// emitted even when the sink fails or is a no-op, so downstream state
// resets consistently.
func (l *Logger) Clear(ctx context.Context) {
	if err := l.sink.Clear(ctx); err != nil {
		l.diag.Error().Err(err).Msg("log sink clear failed")
	}
	l.notify(Event{Kind: EventClear})
}

// Subscribe registers fn for add and clear events and returns its
// unsubscribe function. Unsubscribing removes exactly the registration it
// came from; other listeners are unaffected. Unsubscribe is idempotent.
func (l *Logger) Subscribe(fn Listener) (unsubscribe func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs = append(l.subs, subscription{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, s := range l.subs {
			if s.id == id {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				return
			}
		}
	}
}

// notify delivers ev to a snapshot of the subscriber list, so a listener
// that unsubscribes itself (or another) mid-notification cannot corrupt
// iteration.
func (l *Logger) notify(ev Event) {
	l.mu.Lock()
	snapshot := make([]subscription, len(l.subs))
	copy(snapshot, l.subs)
	l.mu.Unlock()

	for _, s := range snapshot {
		l.dispatch(s.fn, ev)
	}
}

func (l *Logger) dispatch(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			l.diag.Error().Interface("panic", r).Msg("log subscriber panicked")
		}
	}()
	fn(ev)
}
