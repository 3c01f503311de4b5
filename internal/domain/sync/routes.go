package sync

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduquest/eduquest-api/internal/middleware"
)

// Routes registers sync routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireOperator())

	r.Post("/roster", h.SyncRoster)

	return r
}
