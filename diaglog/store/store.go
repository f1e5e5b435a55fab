// Package store provides the persistent local log sink: an embedded badger
// database with secondary indexes on category and timestamp, so entries
// survive restarts and remain queryable by kind and recency.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/vocalis/voicekit/diaglog"
)

// DefaultMaxEntries caps retention when Options.MaxEntries is unset. The
// store prunes oldest-first once a write pushes it over the cap.
const DefaultMaxEntries = 10000

// Options configures a Store.
type Options struct {
	// Path is the directory holding the badger database. Required.
	Path string
	// MaxEntries caps retained entries; zero or negative selects
	// DefaultMaxEntries.
	MaxEntries int
}

// Store is a diaglog.Sink backed by an embedded badger database. The
// database is opened lazily on first use; concurrent first operations
// coalesce onto a single open attempt, and an open failure is remembered
// for the life of the Store.
type Store struct {
	path       string
	maxEntries int

	openOnce sync.Once
	db       *badgerhold.Store
	openErr  error
}

var _ diaglog.Sink = (*Store)(nil)

// record is the persisted shape of an entry. Details are stored as JSON so
// arbitrary sanitized payloads survive the round trip intact.
type record struct {
	ID        string `badgerhold:"key"`
	Timestamp int64  `badgerhold:"index"`
	Category  string `badgerhold:"index"`
	Message   string
	Details   []byte
}

// New validates opts and returns an unopened Store. Construction fails fast
// when no usable path is configured; callers that cannot provide local
// storage should select a different sink instead.
func New(opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("store: path is required")
	}
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{path: opts.Path, maxEntries: maxEntries}, nil
}

func (s *Store) ensureOpen() error {
	s.openOnce.Do(func() {
		opt := badgerhold.DefaultOptions
		opt.Options = badger.DefaultOptions(s.path).WithLogger(nil)
		db, err := badgerhold.Open(opt)
		if err != nil {
			s.openErr = fmt.Errorf("store: open %s: %w", s.path, err)
			return
		}
		s.db = db
	})
	return s.openErr
}

// Store assigns a fresh ID, persists the entry, and returns the stored copy.
func (s *Store) Store(ctx context.Context, e diaglog.Entry) (diaglog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return diaglog.Entry{}, err
	}
	if err := s.ensureOpen(); err != nil {
		return diaglog.Entry{}, err
	}

	rec, err := toRecord(e)
	if err != nil {
		return diaglog.Entry{}, err
	}
	rec.ID = uuid.NewString()

	if err := s.db.Insert(rec.ID, rec); err != nil {
		return diaglog.Entry{}, fmt.Errorf("store: insert: %w", err)
	}
	// Retention is best effort; the entry itself is already durable, so a
	// prune failure must not make the write look failed.
	_ = s.prune()
	return withID(e, rec.ID), nil
}

// All returns every entry, newest first.
func (s *Store) All(ctx context.Context) ([]diaglog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	var recs []record
	if err := s.db.Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("store: find: %w", err)
	}
	sortNewestFirst(recs)
	return toEntries(recs)
}

// ByCategory returns entries of one category via the category index, newest
// first. The index is unordered for equality lookups, so results are sorted
// after retrieval.
func (s *Store) ByCategory(ctx context.Context, c diaglog.Category) ([]diaglog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	var recs []record
	q := badgerhold.Where("Category").Eq(string(c)).Index("Category")
	if err := s.db.Find(&recs, q); err != nil {
		return nil, fmt.Errorf("store: find by category: %w", err)
	}
	sortNewestFirst(recs)
	return toEntries(recs)
}

// Clear removes every stored entry.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if err := s.db.DeleteMatching(&record{}, nil); err != nil {
		return fmt.Errorf("store: clear: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ensureOpen(); err != nil {
		return 0, err
	}
	n, err := s.db.Count(&record{}, nil)
	if err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return int(n), nil
}

// Close releases the underlying database. The Store must not be used after
// Close.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// prune drops oldest entries once the store exceeds its retention cap.
func (s *Store) prune() error {
	n, err := s.db.Count(&record{}, nil)
	if err != nil {
		return err
	}
	over := int(n) - s.maxEntries
	if over <= 0 {
		return nil
	}

	var recs []record
	if err := s.db.Find(&recs, nil); err != nil {
		return err
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Timestamp < recs[j].Timestamp })
	for i := 0; i < over && i < len(recs); i++ {
		if err := s.db.Delete(recs[i].ID, &record{}); err != nil {
			return err
		}
	}
	return nil
}

func sortNewestFirst(recs []record) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Timestamp > recs[j].Timestamp })
}

func toRecord(e diaglog.Entry) (*record, error) {
	rec := &record{
		Timestamp: e.Timestamp,
		Category:  string(e.Category),
		Message:   e.Message,
	}
	if e.Details != nil {
		details, err := json.Marshal(e.Details)
		if err != nil {
			return nil, fmt.Errorf("store: encode details: %w", err)
		}
		rec.Details = details
	}
	return rec, nil
}

func toEntries(recs []record) ([]diaglog.Entry, error) {
	entries := make([]diaglog.Entry, 0, len(recs))
	for i := range recs {
		e, err := toEntry(&recs[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func toEntry(rec *record) (diaglog.Entry, error) {
	e := diaglog.Entry{
		ID:        rec.ID,
		Timestamp: rec.Timestamp,
		Category:  diaglog.Category(rec.Category),
		Message:   rec.Message,
	}
	if len(rec.Details) > 0 {
		var details any
		if err := json.Unmarshal(rec.Details, &details); err != nil {
			return diaglog.Entry{}, fmt.Errorf("store: decode details: %w", err)
		}
		e.Details = details
	}
	return e, nil
}

func withID(e diaglog.Entry, id string) diaglog.Entry {
	e.ID = id
	return e
}
