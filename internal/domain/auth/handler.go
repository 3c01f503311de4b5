package auth

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/middleware"
	"github.com/eduquest/eduquest-api/internal/pkg/response"
	"github.com/eduquest/eduquest-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Login authenticates with email and password
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	tokens, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, tokens)
}

// Refresh exchanges a refresh token for a fresh pair
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, tokens)
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.service.Me(r.Context(), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, u)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefresh):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, err.Error())
	default:
		response.InternalError(w)
	}
}
