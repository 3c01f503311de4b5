package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/pkg/response"
)

// Handler handles user HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get returns one user
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, u)
}

// List returns users, optionally filtered by ?role=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	role := Role(r.URL.Query().Get("role"))

	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	users, err := h.service.List(r.Context(), role, limit, offset)
	if err != nil {
		if errors.Is(err, ErrInvalidRole) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, users)
}
