package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers auth routes. Login and refresh are public; /me requires
// a valid access token.
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.Me)
	})

	return r
}
