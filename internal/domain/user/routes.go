package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers user routes. The directory listing is teacher-and-up;
// the gate comes in as a parameter because the middleware package depends
// on this one for the Role type.
func (h *Handler) Routes(authMiddleware, requireTeacher func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireTeacher)
		r.Get("/", h.List)
	})

	return r
}
