package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/otot/internal/browser"
	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/logger"
)

// Cache remembers which URL a normalized query last resolved to.
// Get returns "" on a miss.
type Cache interface {
	GetResolution(ctx context.Context, query string) (string, error)
	CacheResolution(ctx context.Context, query, url string) error
	InvalidateResolution(ctx context.Context, query string) error
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	Policy           domain.FrecencyPolicy
	PreferredBrowser string
	Now              func() time.Time
	Cache            Cache // optional, serve mode only; never overrides the ranking
}

// Service runs the open, query and maintenance pipelines over a RecordStore.
type Service struct {
	store   domain.RecordStore
	opener  browser.Opener
	log     logger.Logger
	policy  domain.FrecencyPolicy
	browser string
	now     func() time.Time
	cache   Cache
}

// Resolution is the URL chosen for an input.
type Resolution struct {
	URL       string
	Candidate *domain.Candidate // nil for a direct open
	Direct    bool              // input was a full URL nothing in history matched
}

// Visit is a resolution after it has been recorded.
type Visit struct {
	Resolution
	Record *domain.Record
	Cached bool // the resolution cache already pointed at this URL
}

func New(store domain.RecordStore, opener browser.Opener, log logger.Logger, opts Options) *Service {
	if opts.Policy.Buckets == nil {
		opts.Policy = domain.DefaultFrecencyPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:   store,
		opener:  opener,
		log:     log,
		policy:  opts.Policy,
		browser: opts.PreferredBrowser,
		now:     opts.Now,
		cache:   opts.Cache,
	}
}

// WithCache returns a copy of s that consults c before resolving.
func (s *Service) WithCache(c Cache) *Service {
	cp := *s
	cp.cache = c
	return &cp
}

// Policy returns the frecency policy used for ranking.
func (s *Service) Policy() domain.FrecencyPolicy { return s.policy }

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// Resolve picks the URL for input without touching the store.
//
// History is searched first. Only when nothing matches is the input
// considered as a literal address; anything else is ErrNoMatch.
func (s *Service) Resolve(ctx context.Context, input string) (*Resolution, error) {
	query, err := domain.ParseQuery(input)
	if err != nil {
		return nil, err
	}

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	best, err := domain.FindBestMatch(query, records, s.policy, s.now())
	switch {
	case err == nil:
		s.log.Debug("query matched",
			logger.String("query", query.Raw),
			logger.String("url", best.Record.URL),
			logger.Float64("frecency", best.Frecency),
			logger.Float64("match_score", best.Quality.Score))
		return &Resolution{URL: best.Record.URL, Candidate: best}, nil
	case !errors.Is(err, domain.ErrNoMatch):
		return nil, err
	}

	in := domain.ClassifyInput(input)
	if in.Kind != domain.InputURL {
		s.log.Debug("no match", logger.String("query", query.Raw), logger.Int("records", len(records)))
		return nil, domain.ErrNoMatch
	}

	s.log.Debug("no match, opening input as url", logger.String("url", in.URL.String()))
	return &Resolution{URL: in.URL.String(), Direct: true}, nil
}

// Record resolves input and records the visit, without launching anything.
func (s *Service) Record(ctx context.Context, input string) (*Visit, error) {
	res, err := s.Resolve(ctx, input)
	if errors.Is(err, domain.ErrNoMatch) {
		s.forget(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	rec, err := s.store.UpsertVisit(ctx, res.URL, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to record visit: %w", err)
	}

	cached := s.syncCache(ctx, input, res.URL)

	s.log.Info("visit recorded",
		logger.String("url", rec.URL),
		logger.Int64("visit_count", rec.VisitCount),
		logger.Time("last_accessed", rec.LastAccessed),
		logger.Bool("direct", res.Direct),
		logger.Bool("cached", cached))

	return &Visit{Resolution: *res, Record: rec, Cached: cached}, nil
}

// Open resolves input, records the visit and launches the browser.
// browserOverride wins over the configured preferred browser.
func (s *Service) Open(ctx context.Context, input, browserOverride string) (*Visit, error) {
	v, err := s.Record(ctx, input)
	if err != nil {
		return nil, err
	}

	b := s.browser
	if browserOverride != "" {
		b = browserOverride
	}
	if err := s.opener.Open(v.URL, b); err != nil {
		return v, err
	}
	return v, nil
}

// Query ranks every matching record, best first, without mutating anything.
// limit <= 0 returns all of them.
func (s *Service) Query(ctx context.Context, input string, limit int) ([]*domain.Candidate, error) {
	query, err := domain.ParseQuery(input)
	if err != nil {
		return nil, err
	}

	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	candidates := domain.RankCandidates(query, records, s.policy, s.now())
	if len(candidates) == 0 {
		return nil, domain.ErrNoMatch
	}
	return capped(candidates, limit), nil
}

// Top returns the highest-frecency records regardless of any query.
func (s *Service) Top(ctx context.Context, limit int) ([]*domain.Candidate, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return capped(domain.RankByFrecency(records, s.policy, s.now()), limit), nil
}

// Show returns the record stored for an exact URL.
func (s *Service) Show(ctx context.Context, rawURL string) (*domain.Record, error) {
	return s.store.FindByURL(ctx, strings.TrimSpace(rawURL))
}

// PruneOlderThan deletes records not opened within age.
func (s *Service) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	if age <= 0 {
		return 0, fmt.Errorf("prune age must be positive, got %v", age)
	}
	cutoff := s.now().Add(-age)
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.Info("pruned by age", logger.Duration("older_than", age), logger.Int64("deleted", n))
	return n, nil
}

// PruneMatching deletes records whose URL matches pattern.
func (s *Service) PruneMatching(ctx context.Context, pattern string) (int64, error) {
	n, err := s.store.DeleteMatching(ctx, pattern)
	if err != nil {
		return 0, err
	}
	s.log.Info("pruned by pattern", logger.String("pattern", pattern), logger.Int64("deleted", n))
	return n, nil
}

// PruneDomain deletes every record of a base domain.
func (s *Service) PruneDomain(ctx context.Context, baseDomain string) (int64, error) {
	if strings.TrimSpace(baseDomain) == "" {
		return 0, errors.New("domain must not be empty")
	}
	n, err := s.store.DeleteByDomain(ctx, domain.BaseDomain(strings.ToLower(strings.TrimSpace(baseDomain))))
	if err != nil {
		return 0, err
	}
	s.log.Info("pruned by domain", logger.String("domain", baseDomain), logger.Int64("deleted", n))
	return n, nil
}

// ImportResult summarizes a seeding run.
type ImportResult struct {
	Added    int
	Existing int
	Invalid  []string
}

// Import seeds urls into history. Known URLs keep their counts.
func (s *Service) Import(ctx context.Context, urls []string) (ImportResult, error) {
	var res ImportResult
	now := s.now()

	for _, u := range urls {
		added, err := s.store.Seed(ctx, u, now)
		switch {
		case errors.Is(err, domain.ErrMalformedURL):
			s.log.Warn("skipping invalid url", logger.String("url", u), logger.Error(err))
			res.Invalid = append(res.Invalid, u)
		case err != nil:
			return res, err
		case added:
			res.Added++
		default:
			res.Existing++
		}
	}

	s.log.Info("import finished",
		logger.Int("added", res.Added),
		logger.Int("existing", res.Existing),
		logger.Int("invalid", len(res.Invalid)))
	return res, nil
}

// Count returns the number of records in history.
func (s *Service) Count(ctx context.Context) (int, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func capped(c []*domain.Candidate, limit int) []*domain.Candidate {
	if limit > 0 && len(c) > limit {
		return c[:limit]
	}
	return c
}
