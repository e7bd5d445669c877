package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nbaradar/obsidian-mcp-server/internal/notestore"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(notes *notestore.Service, registry *vault.Registry, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(notes, registry)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Vaults.
	r.Get("/vaults", h.Vaults)

	// Notes CRUD. The static move route wins over the wildcard.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/move", h.MoveNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Search.
	r.Get("/search", h.Search)
	r.Get("/search/tags", h.SearchTags)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
