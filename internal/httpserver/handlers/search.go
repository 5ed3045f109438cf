package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/otot/internal/logger"
	"github.com/MrSnakeDoc/otot/internal/render"
)

// Search resolves q like `otot open`, records the visit and redirects.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Error(w, "missing q parameter", http.StatusBadRequest)
			return
		}

		d.Logger.Info("search request", logger.String("query", query))

		v, err := d.Resolver.Record(r.Context(), query)
		if err != nil {
			writeResolveError(w, d, query, err)
			return
		}

		d.Logger.Info("redirecting",
			logger.String("query", query),
			logger.String("url", v.URL),
			logger.Bool("cached", v.Cached),
			logger.Bool("direct", v.Direct))

		http.Redirect(w, r, v.URL, http.StatusFound)
	}
}

// Query returns the ranked candidates for q as JSON, without recording anything.
func Query(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			http.Error(w, "missing q parameter", http.StatusBadRequest)
			return
		}

		candidates, err := d.Resolver.Query(r.Context(), query, d.MaxResults)
		switch {
		case errors.Is(err, domain.ErrNoMatch):
			writeJSON(w, http.StatusOK, []render.CandidateView{})
		case err != nil:
			writeResolveError(w, d, query, err)
		default:
			writeJSON(w, http.StatusOK, render.Views(candidates))
		}
	}
}

func writeResolveError(w http.ResponseWriter, d deps.Deps, query string, err error) {
	switch {
	case errors.Is(err, domain.ErrNoMatch):
		d.Logger.Debug("no match", logger.String("query", query))
		http.Error(w, `no results for "`+query+`"`, http.StatusNotFound)
	case errors.Is(err, domain.ErrMalformedQuery):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrStoreUnavailable):
		d.Logger.Error("store unavailable", logger.String("query", query), logger.Error(err))
		http.Error(w, "history store unavailable", http.StatusServiceUnavailable)
	default:
		d.Logger.Error("search failed", logger.String("query", query), logger.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
