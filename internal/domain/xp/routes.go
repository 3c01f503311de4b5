package xp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduquest/eduquest-api/internal/middleware"
)

// Routes registers XP routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/students/{id}", h.GetStudentXP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireTeacher())
		r.Post("/grants", h.Grant)
		r.Get("/budgets", h.ListBudgets)
	})

	return r
}
