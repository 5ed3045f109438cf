package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/logger"
	"github.com/MrSnakeDoc/otot/internal/utils"
)

const (
	// busyTimeout is how long sqlite itself waits on a lock before
	// reporting SQLITE_BUSY to the retry loop.
	busyTimeout = 5 * time.Second

	recordColumns = `url, host_segment, path_segments, base_domain, visit_count, last_accessed`

	selectAll = `SELECT ` + recordColumns + ` FROM urls`

	selectByURL = `SELECT ` + recordColumns + ` FROM urls WHERE url = ?`

	upsertVisit = `
INSERT INTO urls (url, host_segment, path_segments, base_domain, visit_count, last_accessed)
VALUES (?, ?, ?, ?, 1, ?)
ON CONFLICT (url) DO UPDATE SET
    visit_count   = visit_count + 1,
    last_accessed = MAX(last_accessed, excluded.last_accessed)
RETURNING ` + recordColumns

	insertIfAbsent = `
INSERT INTO urls (url, host_segment, path_segments, base_domain, visit_count, last_accessed)
VALUES (?, ?, ?, ?, 1, ?)
ON CONFLICT (url) DO NOTHING`

	deleteOlderThan = `DELETE FROM urls WHERE last_accessed < ?`

	deleteMatching = `DELETE FROM urls WHERE url LIKE ? ESCAPE '\'`

	deleteByDomain = `DELETE FROM urls WHERE base_domain = ?`
)

// Store is the sqlite-backed domain.RecordStore.
type Store struct {
	db    *sql.DB
	log   logger.Logger
	retry retryPolicy
}

var _ domain.RecordStore = (*Store)(nil)

// Open opens (creating if needed) the history database at path and
// migrates its schema.
func Open(ctx context.Context, path string, log logger.Logger) (*Store, error) {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create database directory: %w", domain.ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", domain.ErrStoreUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		utils.Close(db)
		return nil, fmt.Errorf("%w: failed to open database %s: %w", domain.ErrStoreUnavailable, path, err)
	}

	if err := migrateUp(db, log); err != nil {
		utils.Close(db)
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	log.Debug("history database opened", logger.String("path", path))

	return &Store{
		db:    db,
		log:   log,
		retry: defaultRetry,
	}, nil
}

// dsn enables WAL, a busy timeout and immediate write transactions so
// that concurrent invocations serialize on BEGIN instead of deadlocking
// on a read-to-write upgrade.
func dsn(path string) string {
	params := []string{
		fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeout.Milliseconds()),
		"_pragma=journal_mode(WAL)",
		"_pragma=synchronous(NORMAL)",
		"_txlock=immediate",
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// LoadAll returns every record.
func (s *Store) LoadAll(ctx context.Context) ([]*domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectAll)
	if err != nil {
		return nil, unavailable("load urls", err)
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, unavailable("scan url", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("load urls", err)
	}

	s.log.Debug("records loaded", logger.Int("count", len(records)))
	return records, nil
}

// UpsertVisit records one open of rawURL inside a single write transaction.
func (s *Store) UpsertVisit(ctx context.Context, rawURL string, now time.Time) (*domain.Record, error) {
	seg, err := domain.Segment(rawURL)
	if err != nil {
		return nil, err
	}
	path, err := json.Marshal(seg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal path segments: %w", err)
	}
	ts := domain.Truncate(now).Unix()

	var rec *domain.Record
	err = s.withRetry(ctx, "upsert visit", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		r, err := scanRecord(tx.QueryRowContext(ctx, upsertVisit, rawURL, seg.Host, string(path), seg.BaseDomain, ts))
		if err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, unavailable("upsert visit", err)
	}

	s.log.Debug("visit recorded",
		logger.String("url", rec.URL),
		logger.Int64("visit_count", rec.VisitCount))
	return rec, nil
}

// FindByURL looks a record up by exact URL.
func (s *Store) FindByURL(ctx context.Context, rawURL string) (*domain.Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectByURL, rawURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, unavailable("find url", err)
	}
	return rec, nil
}

// Seed inserts rawURL unless it is already known.
func (s *Store) Seed(ctx context.Context, rawURL string, now time.Time) (bool, error) {
	seg, err := domain.Segment(rawURL)
	if err != nil {
		return false, err
	}
	path, err := json.Marshal(seg.Path)
	if err != nil {
		return false, fmt.Errorf("failed to marshal path segments: %w", err)
	}

	n, err := s.exec(ctx, "seed url", insertIfAbsent,
		rawURL, seg.Host, string(path), seg.BaseDomain, domain.Truncate(now).Unix())
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteOlderThan removes records last opened before cutoff.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, "prune by age", deleteOlderThan, cutoff.Unix())
}

// DeleteMatching removes records whose URL matches pattern.
func (s *Store) DeleteMatching(ctx context.Context, pattern string) (int64, error) {
	p, err := domain.ParseURLPattern(pattern)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, "prune by pattern", deleteMatching, p.Like())
}

// DeleteByDomain removes every record of baseDomain.
func (s *Store) DeleteByDomain(ctx context.Context, baseDomain string) (int64, error) {
	return s.exec(ctx, "prune by domain", deleteByDomain, strings.ToLower(strings.TrimSpace(baseDomain)))
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// exec runs a write statement with retries and returns the affected rows.
func (s *Store) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	var n int64
	err := s.withRetry(ctx, op, func() error {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, unavailable(op, err)
	}
	s.log.Debug("write applied", logger.String("op", op), logger.Int64("rows", n))
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.Record, error) {
	var (
		rec  domain.Record
		path string
		last int64
	)
	if err := row.Scan(&rec.URL, &rec.Host, &path, &rec.BaseDomain, &rec.VisitCount, &last); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(path), &rec.Path); err != nil {
		return nil, fmt.Errorf("corrupt path segments for %s: %w", rec.URL, err)
	}
	if rec.Path == nil {
		rec.Path = []string{}
	}
	rec.LastAccessed = time.Unix(last, 0).UTC()
	return &rec, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
