package event

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/middleware"
	"github.com/eduquest/eduquest-api/internal/pkg/response"
	"github.com/eduquest/eduquest-api/internal/pkg/validator"
)

// Handler handles events HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new events handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create defines a new bonus event
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	operatorID := middleware.GetUserID(r.Context())
	if operatorID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	e, err := h.service.Create(r.Context(), operatorID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, e)
}

// List returns events; ?active=true narrows to open windows
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"

	events, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, events)
}

// Get returns one event
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	e, err := h.service.Get(r.Context(), eventID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, e)
}

// Participate claims the event bonus for the caller
func (h *Handler) Participate(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	var req ParticipateRequest
	if r.ContentLength > 0 {
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
	}

	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	p, err := h.service.Participate(r.Context(), userID, eventID, req.RequestID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, p)
}

// Participations lists everyone who claimed the event bonus
func (h *Handler) Participations(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid event ID")
		return
	}

	participations, err := h.service.ListParticipations(r.Context(), eventID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, participations)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEventNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotOperator):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrAlreadyParticipated):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrEventNotActive), errors.Is(err, ErrInvalidWindow):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
