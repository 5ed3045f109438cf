package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/otot/internal/logger"
)

// ConnectOptions defines Redis connection retry behavior.
type ConnectOptions struct {
	Addr           string        // Redis address (ex: "localhost:6379")
	Password       string        // Optional password
	RedisDB        int           // Redis DB number
	ConnectTimeout time.Duration // Total time allowed for connection attempts (ex: 5s)
	RetryInterval  time.Duration // Initial wait between retries, doubles each time
	MaxWait        time.Duration // Cap on the wait between retries
	PingTimeout    time.Duration // Timeout for each ping attempt
}

// withDefaults fills the retry knobs left at zero.
func (o ConnectOptions) withDefaults() ConnectOptions {
	if o.RetryInterval <= 0 {
		o.RetryInterval = 250 * time.Millisecond
	}
	if o.MaxWait <= 0 {
		o.MaxWait = 2 * time.Second
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = time.Second
	}
	return o
}

// connectionLogger handles all Redis connection logging.
type connectionLogger struct {
	logger logger.Logger
}

func (cl *connectionLogger) logSuccess(addr string, attempts int, elapsed time.Duration) {
	if attempts > 1 {
		cl.logger.Warn("connected to redis after retry",
			logger.String("addr", addr),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed))
		return
	}
	cl.logger.Info("connected to redis", logger.String("addr", addr))
}

func (cl *connectionLogger) logRetry(addr string, attempt int, nextRetry time.Duration, err error) {
	cl.logger.Warn("redis connection failed, retrying",
		logger.String("addr", addr),
		logger.Int("attempt", attempt),
		logger.Duration("next_retry_in", nextRetry),
		logger.Error(err))
}

// New creates a Redis client, pinging with exponential backoff until
// ConnectTimeout. The resolution cache is optional, so callers usually log
// the error and carry on without it.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if opts.ConnectTimeout <= 0 {
		return nil, fmt.Errorf("ConnectTimeout must be > 0, got %v", opts.ConnectTimeout)
	}
	opts = opts.withDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.RedisDB,
	})

	if err := connectWithRetry(ctx, client, opts, &connectionLogger{logger: log}); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// connectWithRetry handles the retry loop with exponential backoff.
func connectWithRetry(ctx context.Context, client *redis.Client, opts ConnectOptions, log *connectionLogger) error {
	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	start := time.Now()
	wait := opts.RetryInterval

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			log.logSuccess(opts.Addr, attempt, time.Since(start))
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				opts.Addr, attempt, opts.ConnectTimeout, err)

		case <-timer.C:
			log.logRetry(opts.Addr, attempt, wait, err)
			// Exponential backoff with cap
			wait *= 2
			if wait > opts.MaxWait {
				wait = opts.MaxWait
			}
		}
	}
}
