package sqlite

import (
	"context"
	"errors"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/MrSnakeDoc/otot/internal/logger"
)

// retryPolicy bounds how long a write keeps retrying on lock contention.
type retryPolicy struct {
	attempts    int           // total tries, including the first
	initialWait time.Duration // grows exponentially
	maxWait     time.Duration
}

var defaultRetry = retryPolicy{
	attempts:    6,
	initialWait: 20 * time.Millisecond,
	maxWait:     500 * time.Millisecond,
}

// withRetry runs fn until it succeeds, fails with a non-contention error,
// or the policy is exhausted. Only SQLITE_BUSY and SQLITE_LOCKED retry.
func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	wait := s.retry.initialWait
	var err error

	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !isBusy(err) || attempt >= s.retry.attempts {
			return err
		}

		s.log.Debug("database busy, retrying",
			logger.String("op", op),
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", wait),
			logger.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}

		wait *= 2
		if wait > s.retry.maxWait {
			wait = s.retry.maxWait
		}
	}
}

// isBusy reports whether err is a transient lock conflict.
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff { // primary result code
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}
