package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/logger"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "history.db")
	s, err := Open(context.Background(), path, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestOpenIsIdempotent(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertVisit(ctx, "https://github.com/rust-lang/rust", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, logger.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUpsertVisit(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rec, err := s.UpsertVisit(ctx, "https://github.com/rust-lang/rust", t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.VisitCount)
	assert.Equal(t, "github.com", rec.Host)
	assert.Equal(t, []string{"rust-lang", "rust"}, rec.Path)
	assert.Equal(t, "github.com", rec.BaseDomain)
	assert.True(t, rec.LastAccessed.Equal(t0))

	rec, err = s.UpsertVisit(ctx, "https://github.com/rust-lang/rust", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.VisitCount)
	assert.True(t, rec.LastAccessed.Equal(t0.Add(time.Hour)))

	// a skewed clock increments but never rewinds the timestamp
	rec, err = s.UpsertVisit(ctx, "https://github.com/rust-lang/rust", t0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.VisitCount)
	assert.True(t, rec.LastAccessed.Equal(t0.Add(time.Hour)))

	records, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUpsertVisitBareDomain(t *testing.T) {
	s, _ := openTestStore(t)

	rec, err := s.UpsertVisit(context.Background(), "https://news.ycombinator.com", time.Now())
	require.NoError(t, err)
	assert.NotNil(t, rec.Path)
	assert.Empty(t, rec.Path)
	assert.Equal(t, "ycombinator.com", rec.BaseDomain)
}

func TestUpsertVisitMalformedURL(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.UpsertVisit(context.Background(), "https://", time.Now())
	assert.ErrorIs(t, err, domain.ErrMalformedURL)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestConcurrentUpsertsNeverLoseIncrements(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	// a second handle on the same file stands in for another process
	other, err := Open(ctx, path, logger.Nop())
	require.NoError(t, err)
	defer other.Close()

	const workers, perWorker = 8, 10
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)

	for w := 0; w < workers; w++ {
		store := s
		if w%2 == 1 {
			store = other
		}
		wg.Add(1)
		go func(store *Store) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := store.UpsertVisit(ctx, "https://github.com/golang/go", time.Now()); err != nil {
					errs <- err
				}
			}
		}(store)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("upsert failed: %v", err)
	}

	rec, err := s.FindByURL(ctx, "https://github.com/golang/go")
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), rec.VisitCount)
}

func TestFindByURL(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.FindByURL(ctx, "https://nowhere.example")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)

	_, err = s.UpsertVisit(ctx, "https://docs.rs/serde", time.Now())
	require.NoError(t, err)

	rec, err := s.FindByURL(ctx, "https://docs.rs/serde")
	require.NoError(t, err)
	assert.Equal(t, "docs.rs", rec.Host)
	assert.Equal(t, []string{"serde"}, rec.Path)
}

func TestSeed(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.UpsertVisit(ctx, "https://github.com", t0)
	require.NoError(t, err)
	_, err = s.UpsertVisit(ctx, "https://github.com", t0)
	require.NoError(t, err)

	inserted, err := s.Seed(ctx, "https://github.com", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = s.Seed(ctx, "https://gitlab.com", t0)
	require.NoError(t, err)
	assert.True(t, inserted)

	rec, err := s.FindByURL(ctx, "https://github.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.VisitCount)
	assert.True(t, rec.LastAccessed.Equal(t0))
}

func TestDeletes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seed := func(t *testing.T) *Store {
		s, _ := openTestStore(t)
		visits := map[string]time.Time{
			"https://github.com/rust-lang/rust": now,
			"https://gist.github.com/abc":       now.Add(-48 * time.Hour),
			"https://docs.rs/serde":             now.Add(-90 * 24 * time.Hour),
			"https://shop.example.com/100_off":  now.Add(-90 * 24 * time.Hour),
			"https://shop.example.com/100xoff":  now,
		}
		for u, ts := range visits {
			_, err := s.UpsertVisit(ctx, u, ts)
			require.NoError(t, err)
		}
		return s
	}

	t.Run("older than", func(t *testing.T) {
		s := seed(t)
		n, err := s.DeleteOlderThan(ctx, now.Add(-30*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("pattern escapes like wildcards", func(t *testing.T) {
		s := seed(t)
		n, err := s.DeleteMatching(ctx, "100_off$")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = s.FindByURL(ctx, "https://shop.example.com/100xoff")
		assert.NoError(t, err)
	})

	t.Run("anchored pattern", func(t *testing.T) {
		s := seed(t)
		n, err := s.DeleteMatching(ctx, `^https://docs\.rs`)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("empty pattern rejected", func(t *testing.T) {
		s := seed(t)
		_, err := s.DeleteMatching(ctx, "^$")
		assert.Error(t, err)
	})

	t.Run("domain", func(t *testing.T) {
		s := seed(t)
		n, err := s.DeleteByDomain(ctx, "GitHub.com")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		records, err := s.LoadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.LoadAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	assert.ErrorIs(t, s.Ping(context.Background()), domain.ErrStoreUnavailable)
}

func TestWithRetryStopsOnOtherErrors(t *testing.T) {
	s, _ := openTestStore(t)

	calls := 0
	boom := errors.New("boom")
	err := s.withRetry(context.Background(), "test", func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.False(t, isBusy(boom))
}
