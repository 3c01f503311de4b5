package job

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/middleware"
	"github.com/eduquest/eduquest-api/internal/pkg/response"
	"github.com/eduquest/eduquest-api/internal/pkg/validator"
)

// Handler handles jobs HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new jobs handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create publishes a new job
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

	teacherID := middleware.GetUserID(r.Context())
	if teacherID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	j, err := h.service.Create(r.Context(), teacherID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, j)
}

// List returns jobs, optionally filtered by status
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))

	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	jobs, err := h.service.ListJobs(r.Context(), status, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, jobs)
}

// Get returns one job with its assignments
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid job ID")
		return
	}

	j, err := h.service.GetJob(r.Context(), jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, j)
}

// Apply submits the caller's application for a job
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid job ID")
		return
	}

	var req ApplyRequest
	if r.ContentLength > 0 {
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
	}

	studentID := middleware.GetUserID(r.Context())
	if studentID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	a, err := h.service.Apply(r.Context(), studentID, jobID, req.RequestID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, a)
}

// Approve approves a pending application
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Approve)
}

// Reject rejects a pending application
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject)
}

// Return sends an approved application back for revision
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Return)
}

// Close closes a job and pays out the approved students
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid job ID")
		return
	}

	teacherID := middleware.GetUserID(r.Context())
	if teacherID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	result, err := h.service.Close(r.Context(), teacherID, jobID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, result)
}

// MyAssignments returns the caller's applications
func (h *Handler) MyAssignments(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())
	if studentID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	assignments, err := h.service.ListMyAssignments(r.Context(), studentID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, assignments)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, teacherID, assignmentID uuid.UUID) (*Assignment, error)) {
	assignmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid assignment ID")
		return
	}

	teacherID := middleware.GetUserID(r.Context())
	if teacherID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	a, err := fn(r.Context(), teacherID, assignmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, a)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrJobNotFound), errors.Is(err, ErrAssignmentNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotTeacher), errors.Is(err, ErrNotJobOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrAlreadyApplied):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrJobNotOpen), errors.Is(err, ErrJobFull),
		errors.Is(err, ErrJobNotCloseable), errors.Is(err, ErrInvalidTransition):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
