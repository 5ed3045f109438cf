package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/otot/internal/domain"
)

// Store keeps records in memory. It satisfies domain.RecordStore and is
// used for dry runs and tests.
type Store struct {
	mu      sync.RWMutex
	records map[string]*domain.Record // URL -> Record
	closed  bool
}

var _ domain.RecordStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		records: make(map[string]*domain.Record),
	}
}

// NewFrom creates a store holding copies of records.
func NewFrom(records []*domain.Record) *Store {
	s := New()
	for _, r := range records {
		s.records[r.URL] = r.Clone()
	}
	return s
}

// LoadAll returns copies of every record.
func (s *Store) LoadAll(ctx context.Context) ([]*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrStoreUnavailable
	}

	records := make([]*domain.Record, 0, len(s.records))
	for _, r := range s.records {
		records = append(records, r.Clone())
	}
	return records, nil
}

// UpsertVisit adds or increments a record.
func (s *Store) UpsertVisit(ctx context.Context, rawURL string, now time.Time) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrStoreUnavailable
	}

	if r, ok := s.records[rawURL]; ok {
		r.Visit(now)
		return r.Clone(), nil
	}

	r, err := domain.NewRecord(rawURL, now)
	if err != nil {
		return nil, err
	}
	s.records[rawURL] = r
	return r.Clone(), nil
}

// FindByURL retrieves a record by URL
func (s *Store) FindByURL(ctx context.Context, rawURL string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrStoreUnavailable
	}

	r, ok := s.records[rawURL]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return r.Clone(), nil
}

// Seed inserts rawURL unless it is already known.
func (s *Store) Seed(ctx context.Context, rawURL string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false, domain.ErrStoreUnavailable
	}
	if _, ok := s.records[rawURL]; ok {
		return false, nil
	}

	r, err := domain.NewRecord(rawURL, now)
	if err != nil {
		return false, err
	}
	s.records[rawURL] = r
	return true, nil
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = domain.Truncate(cutoff)
	return s.deleteWhere(func(r *domain.Record) bool {
		return r.LastAccessed.Before(cutoff)
	})
}

func (s *Store) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	p, err := domain.ParseURLPattern(pattern)
	if err != nil {
		return 0, err
	}
	return s.deleteWhere(func(r *domain.Record) bool {
		return p.MatchString(r.URL)
	})
}

func (s *Store) DeleteByDomain(ctx context.Context, baseDomain string) (int64, error) {
	baseDomain = strings.ToLower(strings.TrimSpace(baseDomain))
	return s.deleteWhere(func(r *domain.Record) bool {
		return r.BaseDomain == baseDomain
	})
}

// Count returns the number of records.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return domain.ErrStoreUnavailable
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func (s *Store) deleteWhere(match func(*domain.Record) bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, domain.ErrStoreUnavailable
	}

	var n int64
	for u, r := range s.records {
		if match(r) {
			delete(s.records, u)
			n++
		}
	}
	return n, nil
}
