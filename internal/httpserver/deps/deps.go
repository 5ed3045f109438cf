package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/otot/internal/logger"
	"github.com/MrSnakeDoc/otot/internal/resolver"
)

// Pinger is anything /readyz should check (record store, redis cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	Resolver      *resolver.Service
	Readiness     map[string]Pinger // name -> check, all must pass
	MaxResults    int               // cap for /query, 0 = no limit
	ImportTrigger chan struct{}     // nil when no Homepage files are configured
}
