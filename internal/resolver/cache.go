package resolver

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/logger"
)

// cacheKey normalizes input so that "GH//rust/" and "gh/rust" share an entry.
func cacheKey(input string) (string, bool) {
	q, err := domain.ParseQuery(input)
	if err != nil {
		return "", false
	}
	return strings.Join(q.Tokens, "/"), true
}

// syncCache stores url as the resolution of input and reports whether the
// cache already agreed with it. The ranked winner always wins: an entry
// pointing elsewhere is overwritten. Cache failures are logged and treated
// as misses.
func (s *Service) syncCache(ctx context.Context, input, url string) bool {
	if s.cache == nil {
		return false
	}
	key, ok := cacheKey(input)
	if !ok {
		return false
	}

	cached, err := s.cache.GetResolution(ctx, key)
	if err != nil {
		s.log.Warn("resolution cache unavailable", logger.Error(err))
		return false
	}

	if cached != "" && cached != url {
		s.log.Debug("cached resolution overtaken",
			logger.String("query", key),
			logger.String("cached", cached),
			logger.String("url", url))
	}

	if err := s.cache.CacheResolution(ctx, key, url); err != nil {
		s.log.Warn("failed to cache resolution", logger.Error(err))
		return false
	}
	return cached == url
}

// forget drops the cached resolution of input once nothing matches it anymore.
func (s *Service) forget(ctx context.Context, input string) {
	if s.cache == nil {
		return
	}
	key, ok := cacheKey(input)
	if !ok {
		return
	}
	if err := s.cache.InvalidateResolution(ctx, key); err != nil {
		s.log.Warn("failed to invalidate cached resolution", logger.Error(err))
	}
}
