// Package voicekit assembles the client kit from configuration: the
// diagnostic logger with its sink, the agent session client, and the token
// issuer.
package voicekit

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/vocalis/voicekit/config"
	"github.com/vocalis/voicekit/diaglog"
	"github.com/vocalis/voicekit/diaglog/collector"
	"github.com/vocalis/voicekit/diaglog/store"
	"github.com/vocalis/voicekit/session"
)

// NewConsoleLogger builds the zerolog logger used for console output and
// internal diagnostics, honoring the configured level and pretty flag.
func NewConsoleLogger(cfg config.LogConfig) zerolog.Logger {
	var l zerolog.Logger
	if cfg.Pretty {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	} else {
		l = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return l.Level(level)
}

// NewDiagnostics constructs the diagnostic logger. The sink choice is made
// exactly once, here, from the configuration as it stands at construction:
// a persistent local store when a path is configured, otherwise the remote
// collector when its URL is set, otherwise console only. The choice is
// never re-evaluated for the life of the process.
func NewDiagnostics(cfg *config.Config) (*diaglog.Logger, error) {
	console := NewConsoleLogger(cfg.Log)

	var sink diaglog.Sink
	switch {
	case cfg.Diagnostics.Store.Path != "":
		st, err := store.New(store.Options{
			Path:       cfg.Diagnostics.Store.Path,
			MaxEntries: cfg.Diagnostics.Store.Cap,
		})
		if err != nil {
			return nil, err
		}
		sink = st
	case cfg.Diagnostics.Collector.URL != "":
		col, err := collector.New(cfg.Diagnostics.Collector.URL)
		if err != nil {
			return nil, err
		}
		sink = col
	default:
		console.Info().Str("collector", "disabled").Msg("no log backend configured; diagnostics go to console only")
		sink = diaglog.NewConsoleSink(console.With().Str("collector", "disabled").Logger())
	}

	return diaglog.New(sink, diaglog.WithConsoleLogger(console)), nil
}

// NewSessionClient constructs the agent session client, routing its
// lifecycle events into the diagnostic log.
func NewSessionClient(cfg *config.Config, diag *diaglog.Logger) (*session.Client, error) {
	return session.New(cfg.Agent.URL,
		session.WithDiagnostics(diag),
		session.WithHTTPClient(&http.Client{Timeout: cfg.Agent.Timeout}),
	)
}
