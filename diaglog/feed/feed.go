// Package feed bridges the diagnostic logger to a presentation layer. A
// Feed mirrors the logger's entries into local state via a single
// subscription and exposes pass-through operations, so rendering code never
// talks to a sink (or the logger singleton) directly.
package feed

import (
	"context"
	"sync"

	"github.com/vocalis/voicekit/diaglog"
)

// Feed holds a most-recent-first view of logged entries. The ordering is
// the Feed's own contract, independent of how a sink physically orders
// rows. A Feed is safe for concurrent use.
type Feed struct {
	logger *diaglog.Logger

	mu      sync.RWMutex
	entries []diaglog.Entry
	loaded  bool

	unsubscribe func()
	closeOnce   sync.Once
}

// New registers a Feed on logger. Callers must Close the Feed when the
// consuming view is torn down, or events will keep flowing into it.
func New(logger *diaglog.Logger) *Feed {
	f := &Feed{logger: logger}
	f.unsubscribe = logger.Subscribe(f.onEvent)
	return f
}

// Load populates the Feed with the current entry set. Only the first call
// fetches; the Feed marks itself loaded even when the sink read degrades to
// an empty result. Entries that arrived through the subscription before Load
// completes are kept, so a write-only or console sink (whose reads are
// empty) never loses entries logged between New and Load.
func (f *Feed) Load(ctx context.Context) {
	f.mu.RLock()
	loaded := f.loaded
	f.mu.RUnlock()
	if loaded {
		return
	}

	fetched := f.logger.All(ctx)

	f.mu.Lock()
	if !f.loaded {
		held := make(map[string]struct{}, len(f.entries))
		for _, e := range f.entries {
			held[e.ID] = struct{}{}
		}
		for _, e := range fetched {
			if _, ok := held[e.ID]; !ok {
				f.entries = append(f.entries, e)
			}
		}
		f.loaded = true
	}
	f.mu.Unlock()
}

// Loaded reports whether the initial fetch has completed.
func (f *Feed) Loaded() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loaded
}

// Entries returns a snapshot of the held entries, newest first.
func (f *Feed) Entries() []diaglog.Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]diaglog.Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Close disposes the Feed's subscription. Idempotent.
func (f *Feed) Close() {
	f.closeOnce.Do(f.unsubscribe)
}

func (f *Feed) onEvent(ev diaglog.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch ev.Kind {
	case diaglog.EventAdd:
		f.entries = append([]diaglog.Entry{ev.Entry}, f.entries...)
	case diaglog.EventClear:
		f.entries = nil
	}
}

// Info logs through the underlying facade.
func (f *Feed) Info(ctx context.Context, msg string, details ...any) diaglog.Entry {
	return f.logger.Info(ctx, msg, details...)
}

// Success logs through the underlying facade.
func (f *Feed) Success(ctx context.Context, msg string, details ...any) diaglog.Entry {
	return f.logger.Success(ctx, msg, details...)
}

// Warning logs through the underlying facade.
func (f *Feed) Warning(ctx context.Context, msg string, details ...any) diaglog.Entry {
	return f.logger.Warning(ctx, msg, details...)
}

// Error logs through the underlying facade.
func (f *Feed) Error(ctx context.Context, msg string, details ...any) diaglog.Entry {
	return f.logger.Error(ctx, msg, details...)
}

// Debug logs through the underlying facade.
func (f *Feed) Debug(ctx context.Context, msg string, details ...any) diaglog.Entry {
	return f.logger.Debug(ctx, msg, details...)
}

// ByCategory returns stored entries of one category from the facade.
func (f *Feed) ByCategory(ctx context.Context, c diaglog.Category) []diaglog.Entry {
	return f.logger.ByCategory(ctx, c)
}

// Count returns the stored entry count from the facade.
func (f *Feed) Count(ctx context.Context) int {
	return f.logger.Count(ctx)
}

// Clear empties the sink; the resulting clear event also empties this Feed.
func (f *Feed) Clear(ctx context.Context) {
	f.logger.Clear(ctx)
}
