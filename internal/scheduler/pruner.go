package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/otot/internal/logger"
)

// AgeDeleter removes records idle for longer than maxAge.
type AgeDeleter interface {
	PruneOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

// CacheFlusher drops cached resolutions after records were deleted.
type CacheFlusher interface {
	FlushResolutions(ctx context.Context) (int, error)
}

// Pruner periodically deletes history entries that were not opened for
// longer than maxAge. It only runs inside `otot serve`.
type Pruner struct {
	deleter  AgeDeleter
	cache    CacheFlusher // optional
	logger   logger.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPruner creates a new pruner. cache may be nil.
func NewPruner(
	deleter AgeDeleter,
	cache CacheFlusher,
	log logger.Logger,
	interval time.Duration,
	maxAge time.Duration,
) *Pruner {
	return &Pruner{
		deleter:  deleter,
		cache:    cache,
		logger:   log,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a first pass immediately, then one per interval until Stop
// is called or ctx is done.
func (p *Pruner) Start(ctx context.Context) error {
	if err := p.Prune(ctx); err != nil {
		p.logger.Warn("initial prune failed", logger.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := p.Prune(ctx); err != nil {
					p.logger.Error("prune failed", logger.Error(err))
				}
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the pruner. Safe to call more than once.
func (p *Pruner) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Prune deletes stale records once and flushes the resolution cache when
// anything was removed.
func (p *Pruner) Prune(ctx context.Context) error {
	deleted, err := p.deleter.PruneOlderThan(ctx, p.maxAge)
	if err != nil {
		return err
	}

	if deleted == 0 {
		p.logger.Debug("nothing to prune", logger.Duration("max_age", p.maxAge))
		return nil
	}

	p.logger.Info("stale records pruned",
		logger.Int64("deleted", deleted),
		logger.Duration("max_age", p.maxAge))

	if p.cache != nil {
		flushed, err := p.cache.FlushResolutions(ctx)
		if err != nil {
			p.logger.Warn("failed to flush resolution cache", logger.Error(err))
		} else {
			p.logger.Debug("resolution cache flushed", logger.Int("keys", flushed))
		}
	}

	return nil
}
