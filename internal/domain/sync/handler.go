package sync

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/middleware"
	"github.com/eduquest/eduquest-api/internal/pkg/response"
)

// Handler handles sync HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new sync handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SyncRoster triggers a full roster sync
func (h *Handler) SyncRoster(w http.ResponseWriter, r *http.Request) {
	operatorID := middleware.GetUserID(r.Context())
	if operatorID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	result, err := h.service.SyncRoster(r.Context(), operatorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotOperator):
			response.Forbidden(w, err.Error())
		case errors.Is(err, user.ErrUserNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}
