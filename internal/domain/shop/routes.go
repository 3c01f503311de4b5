package shop

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduquest/eduquest-api/internal/middleware"
)

// Routes registers shop routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/items", h.ListItems)
	r.Get("/balance", h.GetBalance)
	r.Get("/transactions", h.ListTransactions)
	r.Get("/purchases", h.ListPurchases)
	r.Post("/purchases", h.BuyItem)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperator())
		r.Post("/items", h.CreateItem)
		r.Patch("/items/{id}/toggle", h.ToggleItem)
	})

	return r
}
