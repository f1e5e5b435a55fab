package diaglog

import (
	"github.com/rs/zerolog"
)

// consoleWriter mirrors entries to the process console through zerolog,
// mapping categories onto zerolog levels. It backs the console fallback
// path and the console-only sink.
type consoleWriter struct {
	log zerolog.Logger
}

func newConsoleWriter(log zerolog.Logger) *consoleWriter {
	return &consoleWriter{log: log}
}

func (w *consoleWriter) write(e Entry) {
	ev := w.eventFor(e.Category).Str("category", string(e.Category))
	if e.ID != "" {
		ev = ev.Str("entry_id", e.ID)
	}
	if e.Details != nil {
		ev = ev.Interface("details", e.Details)
	}
	ev.Msg(e.Message)
}

// eventFor maps a category to the matching zerolog severity. Success has no
// zerolog counterpart and reports at info level; the category field carries
// the distinction.
func (w *consoleWriter) eventFor(c Category) *zerolog.Event {
	switch c {
	case CategoryError:
		return w.log.Error()
	case CategoryWarning:
		return w.log.Warn()
	case CategoryDebug:
		return w.log.Debug()
	default:
		return w.log.Info()
	}
}
