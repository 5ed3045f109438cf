package domain

import (
	"context"
	"time"
)

// RecordStore is the persisted collection of URL records.
//
// Implementations must make UpsertVisit atomic with respect to other
// writers: concurrent opens of the same URL never lose an increment.
type RecordStore interface {
	// LoadAll returns a snapshot of every record, in no particular order.
	LoadAll(ctx context.Context) ([]*Record, error)

	// UpsertVisit creates rawURL with a visit count of 1, or increments the
	// count and refreshes LastAccessed. The stored record is returned.
	UpsertVisit(ctx context.Context, rawURL string, now time.Time) (*Record, error)

	// FindByURL looks up a record by exact URL. ErrRecordNotFound when absent.
	FindByURL(ctx context.Context, rawURL string) (*Record, error)

	// Seed inserts rawURL when absent and reports whether it did.
	// Existing records are left untouched.
	Seed(ctx context.Context, rawURL string, now time.Time) (bool, error)

	// DeleteOlderThan removes records last accessed before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteMatching removes records whose URL matches an anchored pattern
	// (see URLPattern).
	DeleteMatching(ctx context.Context, pattern string) (int64, error)

	// DeleteByDomain removes every record of a base domain.
	DeleteByDomain(ctx context.Context, baseDomain string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
