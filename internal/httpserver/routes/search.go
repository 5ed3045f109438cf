package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/otot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/otot/internal/httpserver/handlers"
)

func init() { Register("search", registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	r.Get("/search", handlers.Search(d))
	r.Get("/query", handlers.Query(d))
}
