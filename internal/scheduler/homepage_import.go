package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/otot/internal/logger"
	"github.com/MrSnakeDoc/otot/internal/resolver"
)

// URLSource yields the URLs to seed, e.g. homepage.Source.
type URLSource interface {
	URLs() ([]string, error)
}

// Seeder inserts URLs that are not yet in history.
type Seeder interface {
	Import(ctx context.Context, urls []string) (resolver.ImportResult, error)
}

// HomepageImporter periodically re-seeds history from Homepage files so
// that newly added services become reachable without a first manual open.
type HomepageImporter struct {
	source   URLSource
	seeder   Seeder
	logger   logger.Logger
	interval time.Duration
	trigger  <-chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHomepageImporter creates a new importer. interval <= 0 disables the
// periodic pass; trigger (may be nil) requests an immediate one.
func NewHomepageImporter(source URLSource, seeder Seeder, log logger.Logger, interval time.Duration, trigger <-chan struct{}) *HomepageImporter {
	return &HomepageImporter{
		source:   source,
		seeder:   seeder,
		logger:   log,
		interval: interval,
		trigger:  trigger,
		stopCh:   make(chan struct{}),
	}
}

// Start imports once, failing if the files cannot be read, then keeps
// re-importing every interval and on each trigger.
func (hi *HomepageImporter) Start(ctx context.Context) error {
	if err := hi.Import(ctx); err != nil {
		return fmt.Errorf("initial import failed: %w", err)
	}

	go func() {
		var tick <-chan time.Time
		if hi.interval > 0 {
			ticker := time.NewTicker(hi.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				if err := hi.Import(ctx); err != nil {
					hi.logger.Error("failed to import homepage urls", logger.Error(err))
				}
			case <-hi.trigger:
				hi.logger.Info("manual import triggered")
				if err := hi.Import(ctx); err != nil {
					hi.logger.Error("failed to import homepage urls", logger.Error(err))
				}
			case <-hi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer
func (hi *HomepageImporter) Stop() {
	hi.stopOnce.Do(func() { close(hi.stopCh) })
}

// Import loads the source and seeds every URL once.
func (hi *HomepageImporter) Import(ctx context.Context) error {
	urls, err := hi.source.URLs()
	if err != nil {
		return fmt.Errorf("failed to load homepage urls: %w", err)
	}

	res, err := hi.seeder.Import(ctx, urls)
	if err != nil {
		return fmt.Errorf("failed to seed urls: %w", err)
	}

	if res.Added > 0 {
		hi.logger.Info("homepage urls imported",
			logger.Int("added", res.Added),
			logger.Int("existing", res.Existing))
	} else {
		hi.logger.Debug("homepage unchanged", logger.Int("urls", len(urls)))
	}
	return nil
}
