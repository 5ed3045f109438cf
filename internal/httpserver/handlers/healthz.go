package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/otot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/otot/internal/logger"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Records       *int    `json:"records,omitempty"` // nil when history could not be read
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Healthz reports liveness, build info and the size of history. A history
// read failure does not fail liveness; /readyz covers that.
func Healthz(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthzResponse{
			Status:        "ok",
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
			UptimeSeconds: time.Since(start).Seconds(),
		}

		if d.Resolver != nil {
			n, err := d.Resolver.Count(r.Context())
			if err != nil {
				d.Logger.Debug("healthz: history unreadable", logger.Error(err))
			} else {
				resp.Records = &n
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
