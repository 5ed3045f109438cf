package app

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/otot/internal/httpserver"
	"github.com/MrSnakeDoc/otot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/otot/internal/logger"
	"github.com/MrSnakeDoc/otot/internal/redis"
	"github.com/MrSnakeDoc/otot/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/otot/internal/store/redis"
	"github.com/MrSnakeDoc/otot/internal/utils"
	"github.com/MrSnakeDoc/otot/internal/version"
)

// Serve runs the jump server until SIGINT/SIGTERM or ctx is done.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Serve.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Serve.Listen, err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Infof("🚀 Starting %s on %s", version.String(), ln.Addr())

	readiness := map[string]deps.Pinger{"store": a.store}

	// Optional resolution cache - fail fast when configured but unreachable
	var (
		cache       *redisstore.Store
		redisClient *goredis.Client
	)
	if addr := a.cfg.Cache.RedisAddr; addr != "" {
		a.logger.Infof("Connecting to Redis at %s", addr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           addr,
			Password:       a.cfg.Cache.RedisPassword,
			RedisDB:        a.cfg.Cache.RedisDB,
			ConnectTimeout: a.cfg.Cache.ConnectTimeout.Duration,
		}, a.logger)
		if err != nil {
			utils.Close(ln)
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		redisClient = client
		defer utils.MustClose(redisClient, a.logger)

		cache = redisstore.NewStore(redisClient, a.cfg.Cache.TTL.Duration)
		readiness["redis"] = cache
		a.svc = a.svc.WithCache(cache)
	}

	// Background pruner
	if maxAge := a.cfg.Serve.PruneAfter.Duration; maxAge > 0 {
		var flusher scheduler.CacheFlusher
		if cache != nil {
			flusher = cache
		}
		pruner := scheduler.NewPruner(a.svc, flusher, a.logger, a.cfg.Serve.PruneInterval.Duration, maxAge)
		if err := pruner.Start(ctx); err != nil {
			utils.Close(ln)
			return fmt.Errorf("failed to start pruner: %w", err)
		}
		defer pruner.Stop()
		a.logger.Info("pruner started",
			logger.Duration("interval", a.cfg.Serve.PruneInterval.Duration),
			logger.Duration("prune_after", maxAge))
	}

	// Homepage importer
	var importTrigger chan struct{}
	if src := a.homepageSource(); !src.Empty() {
		importTrigger = make(chan struct{}, 1)
		importer := scheduler.NewHomepageImporter(src, a.svc, a.logger, a.cfg.Serve.ImportInterval.Duration, importTrigger)
		if err := importer.Start(ctx); err != nil {
			utils.Close(ln)
			return fmt.Errorf("failed to start homepage importer: %w", err)
		}
		defer importer.Stop()
		a.logger.Info("homepage importer started",
			logger.Duration("interval", a.cfg.Serve.ImportInterval.Duration))
	}

	d := deps.Deps{
		Logger:        a.logger,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		Resolver:      a.svc,
		Readiness:     readiness,
		MaxResults:    a.cfg.MaxResults,
		ImportTrigger: importTrigger,
	}
	server := httpserver.New(a.cfg.Serve.Listen, a.logger, d)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Serve.ShutdownTimeout.Duration)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ otot stopped cleanly")
	return nil
}
