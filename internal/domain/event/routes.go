package event

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduquest/eduquest-api/internal/middleware"
)

// Routes registers events routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/participations", h.Participations)
	r.Post("/{id}/participate", h.Participate)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperator())
		r.Post("/", h.Create)
	})

	return r
}
