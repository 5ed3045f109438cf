package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/MrSnakeDoc/otot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/otot/internal/logger"
)

const readyzTimeout = time.Second

type readyzResponse struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Readyz pings every dependency; any failure answers 503.
func Readyz(d deps.Deps) http.HandlerFunc {
	names := make([]string, 0, len(d.Readiness))
	for name := range d.Readiness {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		resp := readyzResponse{Ready: true, Checks: make(map[string]string, len(names))}
		for _, name := range names {
			if err := d.Readiness[name].Ping(ctx); err != nil {
				d.Logger.Warn("readiness check failed",
					logger.String("check", name),
					logger.Error(err))
				resp.Ready = false
				resp.Checks[name] = err.Error()
				continue
			}
			resp.Checks[name] = "ok"
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}
