package domain

import "time"

// Record is the persisted history entry of one URL opened through otot.
//
// A Record is uniquely identified by its URL. Segments are derived once,
// when the record is created, and never change afterwards.
type Record struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// URL is the full address as it was opened.
	// Example: https://github.com/rust-lang/rust
	URL string

	// Host is the host segment matched by the first query token.
	// Example: github.com
	Host string

	// Path holds the ordered path segments.
	// Example: ["rust-lang", "rust"]
	Path []string

	// BaseDomain is the registrable domain of Host.
	// Example: "gist.github.com" -> "github.com"
	BaseDomain string

	// ─────────────────────────────
	// Usage (mutated on every open)
	// ─────────────────────────────

	// VisitCount starts at 1 and grows by exactly 1 per open.
	VisitCount int64

	// LastAccessed is the UTC time of the latest open, second resolution.
	LastAccessed time.Time
}

// NewRecord builds a first-visit record for rawURL.
func NewRecord(rawURL string, now time.Time) (*Record, error) {
	seg, err := Segment(rawURL)
	if err != nil {
		return nil, err
	}
	return &Record{
		URL:          rawURL,
		Host:         seg.Host,
		Path:         seg.Path,
		BaseDomain:   seg.BaseDomain,
		VisitCount:   1,
		LastAccessed: Truncate(now),
	}, nil
}

// Visit applies one more open to r. LastAccessed never moves backwards.
func (r *Record) Visit(now time.Time) {
	r.VisitCount++
	if now = Truncate(now); now.After(r.LastAccessed) {
		r.LastAccessed = now
	}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	c.Path = append([]string(nil), r.Path...)
	return &c
}

// Truncate normalizes t to the resolution the store persists (UTC seconds).
func Truncate(t time.Time) time.Time {
	return time.Unix(t.Unix(), 0).UTC()
}
