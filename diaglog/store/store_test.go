package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vocalis/voicekit/diaglog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Options{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func entry(ts int64, cat diaglog.Category, msg string) diaglog.Entry {
	return diaglog.Entry{Timestamp: ts, Category: cat, Message: msg}
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestStoreAssignsUniqueIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.Store(ctx, entry(1, diaglog.CategoryInfo, "first"))
	require.NoError(t, err)
	b, err := s.Store(ctx, entry(2, diaglog.CategoryInfo, "second"))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestDetailsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := entry(10, diaglog.CategoryDebug, "with details")
	in.Details = map[string]any{"a": float64(1), "b": []any{float64(1), float64(2), float64(3)}}

	_, err := s.Store(ctx, in)
	require.NoError(t, err)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, in.Details, all[0].Details)
	assert.Equal(t, "with details", all[0].Message)
}

func TestAllReturnsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, ts := range []int64{100, 300, 200} {
		_, err := s.Store(ctx, entry(ts, diaglog.CategoryInfo, string(rune('a'+i))))
		require.NoError(t, err)
	}

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(300), all[0].Timestamp)
	assert.Equal(t, int64(200), all[1].Timestamp)
	assert.Equal(t, int64(100), all[2].Timestamp)
}

func TestByCategoryFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Store(ctx, entry(1, diaglog.CategoryError, "err one"))
	require.NoError(t, err)
	_, err = s.Store(ctx, entry(2, diaglog.CategoryInfo, "info one"))
	require.NoError(t, err)
	_, err = s.Store(ctx, entry(3, diaglog.CategoryInfo, "info two"))
	require.NoError(t, err)
	_, err = s.Store(ctx, entry(4, diaglog.CategoryError, "err two"))
	require.NoError(t, err)
	_, err = s.Store(ctx, entry(5, diaglog.CategoryInfo, "info three"))
	require.NoError(t, err)

	errs, err := s.ByCategory(ctx, diaglog.CategoryError)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	for _, e := range errs {
		assert.Equal(t, diaglog.CategoryError, e.Category)
	}
	assert.Equal(t, "err two", errs[0].Message)
	assert.Equal(t, "err one", errs[1].Message)
}

func TestClearThenCountIsZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for ts := int64(1); ts <= 3; ts++ {
		_, err := s.Store(ctx, entry(ts, diaglog.CategoryInfo, "x"))
		require.NoError(t, err)
	}

	require.NoError(t, s.Clear(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRetentionPrunesOldest(t *testing.T) {
	s, err := New(Options{Path: t.TempDir(), MaxEntries: 5})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	for ts := int64(1); ts <= 8; ts++ {
		_, err := s.Store(ctx, entry(ts, diaglog.CategoryInfo, "n"))
		require.NoError(t, err)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, int64(8), all[0].Timestamp)
	assert.Equal(t, int64(4), all[4].Timestamp, "oldest entries are pruned first")
}

func TestConcurrentFirstUseCoalescesOpen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Store(ctx, entry(int64(i+1), diaglog.CategoryInfo, "race"))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestOpenFailureIsRemembered(t *testing.T) {
	// A file in place of the directory makes badger's open fail.
	dir := t.TempDir()
	s, err := New(Options{Path: dir + "/not-a-dir/nested/deeper\x00bad"})
	require.NoError(t, err)

	_, err = s.Store(context.Background(), entry(1, diaglog.CategoryInfo, "x"))
	assert.Error(t, err)

	_, err2 := s.Count(context.Background())
	assert.Error(t, err2)
}

func TestCanceledContextFailsFast(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Store(ctx, entry(1, diaglog.CategoryInfo, "x"))
	assert.ErrorIs(t, err, context.Canceled)
}
