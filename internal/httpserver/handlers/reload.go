package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/otot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/otot/internal/logger"
)

type reloadResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// Reload asks the Homepage importer for an immediate pass.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ImportTrigger == nil {
			writeJSON(w, http.StatusNotFound, reloadResponse{Message: "no homepage files configured"})
			return
		}

		select {
		case d.ImportTrigger <- struct{}{}:
			d.Logger.Info("manual import triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, reloadResponse{Triggered: true, Message: "import triggered"})
		default:
			d.Logger.Warn("import already pending",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusConflict, reloadResponse{Message: "import already pending"})
		}
	}
}
