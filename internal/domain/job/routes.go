package job

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduquest/eduquest-api/internal/middleware"
)

// Routes registers jobs routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/apply", h.Apply)
	r.Get("/assignments/mine", h.MyAssignments)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireTeacher())
		r.Post("/", h.Create)
		r.Post("/{id}/close", h.Close)
		r.Post("/assignments/{id}/approve", h.Approve)
		r.Post("/assignments/{id}/reject", h.Reject)
		r.Post("/assignments/{id}/return", h.Return)
	})

	return r
}
