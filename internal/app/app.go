package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/otot/internal/browser"
	"github.com/MrSnakeDoc/otot/internal/config"
	"github.com/MrSnakeDoc/otot/internal/logger"
	"github.com/MrSnakeDoc/otot/internal/resolver"
	"github.com/MrSnakeDoc/otot/internal/store/sqlite"
	"github.com/MrSnakeDoc/otot/internal/utils"
)

// Options are the global flags shared by every command.
type Options struct {
	ConfigPath string // --config
	DBPath     string // --db, wins over config and env
	Verbose    int    // -v count
}

// App holds what a command needs once configuration is resolved.
type App struct {
	cfg     *config.Config
	cfgPath string
	logger  logger.Logger
	store   *sqlite.Store
	svc     *resolver.Service
}

// env carries the process surroundings so tests can replace them.
type env struct {
	opener browser.Opener
	now    func() time.Time
}

// New loads configuration, opens the history store and builds the resolver.
// The caller owns Close.
func New(ctx context.Context, opts Options, e env) (*App, error) {
	cfg, cfgPath, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	loggerClient := logger.New(logger.LevelForVerbosity(cfg.LogLevel, opts.Verbose), cfg.PrettyLog)

	store, err := sqlite.Open(ctx, cfg.ResolvedDBPath(), loggerClient)
	if err != nil {
		return nil, err
	}

	svc := resolver.New(store, e.opener, loggerClient, resolver.Options{
		Policy:           cfg.FrecencyPolicy(),
		PreferredBrowser: cfg.PreferredBrowser,
		Now:              e.now,
	})

	return &App{
		cfg:     cfg,
		cfgPath: cfgPath,
		logger:  loggerClient,
		store:   store,
		svc:     svc,
	}, nil
}

// loadConfig reads the config file and applies --db on top.
func loadConfig(opts Options) (*config.Config, string, error) {
	boot := logger.New(logger.LevelForVerbosity("warn", opts.Verbose), true)
	cfg, path, err := config.Load(opts.ConfigPath, boot)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	return cfg, path, nil
}

// Close releases the store and flushes logs.
func (a *App) Close() {
	utils.MustClose(a.store, a.logger)
	_ = a.logger.Sync()
}
