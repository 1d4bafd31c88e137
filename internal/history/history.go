// Package history persists completed exam results as a bounded,
// most-recent-first list under a single key.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/examiz/internal/exam"
	"github.com/abhisek/examiz/internal/schemacheck"
)

// Key is the storage key holding the result list.
const Key = "edu_exam_history"

// DefaultCapacity bounds the list when no capacity is configured.
const DefaultCapacity = 20

// ErrNotFound is returned by Find for an unknown id.
var ErrNotFound = errors.New("exam result not found")

// KV is the persistence boundary. Get returns nil, nil when the key is
// absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store owns the exam history. It is not safe for concurrent use; the
// session machine and the CLI each hold their own.
type Store struct {
	kv       KV
	capacity int
	log      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCapacity overrides the list bound.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithLogger sets the logger used for corruption warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a Store over kv.
func New(kv KV, opts ...Option) *Store {
	s := &Store{kv: kv, capacity: DefaultCapacity, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capacity returns the list bound.
func (s *Store) Capacity() int { return s.capacity }

// Load returns the stored results, newest first. Unreadable data is
// discarded and replaced by an empty list; individual malformed records are
// skipped. Only storage I/O failures are returned as errors.
func (s *Store) Load(ctx context.Context) ([]exam.Result, error) {
	raw, err := s.kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.Warn("history unreadable, starting fresh", "error", err)
		if err := s.kv.Put(ctx, Key, []byte("[]")); err != nil {
			s.log.Warn("reset history", "error", err)
		}
		return nil, nil
	}

	results := make([]exam.Result, 0, len(records))
	for i, rec := range records {
		r, err := decodeRecord(rec)
		if err != nil {
			s.log.Warn("skipping malformed history record", "index", i, "error", err)
			continue
		}
		results = append(results, r)
	}
	if len(results) > s.capacity {
		results = results[:s.capacity]
	}
	return results, nil
}

// Append stores r as the newest entry, evicting the oldest entries beyond
// capacity, and returns the updated list.
func (s *Store) Append(ctx context.Context, r exam.Result) ([]exam.Result, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("append result: %w", err)
	}
	current, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	next := make([]exam.Result, 0, len(current)+1)
	next = append(next, r.Clone())
	next = append(next, current...)
	if len(next) > s.capacity {
		next = next[:s.capacity]
	}

	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Find returns the result with the given id.
func (s *Store) Find(ctx context.Context, id string) (exam.Result, error) {
	results, err := s.Load(ctx)
	if err != nil {
		return exam.Result{}, err
	}
	for _, r := range results {
		if r.ID == id {
			return r, nil
		}
	}
	return exam.Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Clear removes all stored results.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, results []exam.Result) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Put(ctx, Key, data); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

func decodeRecord(raw json.RawMessage) (exam.Result, error) {
	if err := schemacheck.JSON("exam-result", recordSchema, raw); err != nil {
		return exam.Result{}, err
	}
	var r exam.Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return exam.Result{}, err
	}
	if err := r.Validate(); err != nil {
		return exam.Result{}, err
	}
	return r, nil
}
