package voicekit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalis/voicekit/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		Log: config.LogConfig{Level: "error"},
	}
}

func TestConsoleOnlyWhenNothingConfigured(t *testing.T) {
	diag, err := NewDiagnostics(baseConfig())
	require.NoError(t, err)
	ctx := context.Background()

	e := diag.Info(ctx, "hello")
	assert.NotEmpty(t, e.ID)
	assert.Zero(t, diag.Count(ctx), "console-only sink retains nothing")
}

func TestStorePathSelectsPersistentSink(t *testing.T) {
	cfg := baseConfig()
	cfg.Diagnostics.Store.Path = t.TempDir()

	diag, err := NewDiagnostics(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	diag.Info(ctx, "durable")
	assert.Equal(t, 1, diag.Count(ctx))

	all := diag.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "durable", all[0].Message)
}

func TestStorePathWinsOverCollector(t *testing.T) {
	var posts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		posts.Add(1)
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.Diagnostics.Store.Path = t.TempDir()
	cfg.Diagnostics.Collector.URL = srv.URL

	diag, err := NewDiagnostics(cfg)
	require.NoError(t, err)

	diag.Info(context.Background(), "local only")
	assert.Equal(t, int64(0), posts.Load())
	assert.Equal(t, 1, diag.Count(context.Background()))
}

func TestCollectorURLSelectsCollectorSink(t *testing.T) {
	var posts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.Diagnostics.Collector.URL = srv.URL

	diag, err := NewDiagnostics(cfg)
	require.NoError(t, err)

	e := diag.Info(context.Background(), "forwarded")
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, int64(1), posts.Load())
}

func TestNewSessionClientRequiresAgentURL(t *testing.T) {
	cfg := baseConfig()
	diag, err := NewDiagnostics(cfg)
	require.NoError(t, err)

	_, err = NewSessionClient(cfg, diag)
	assert.Error(t, err)
}
