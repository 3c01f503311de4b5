package xp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/middleware"
	"github.com/eduquest/eduquest-api/internal/pkg/response"
	"github.com/eduquest/eduquest-api/internal/pkg/validator"
)

// Handler handles XP HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new XP handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Grant awards XP to a student
func (h *Handler) Grant(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	granterID := middleware.GetUserID(r.Context())
	if granterID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	a, err := h.service.Grant(r.Context(), granterID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, a)
}

// GetStudentXP returns a student's XP total, level and grant history
func (h *Handler) GetStudentXP(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid student ID")
		return
	}

	summary, err := h.service.GetStudentXP(r.Context(), studentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, summary)
}

// ListBudgets returns the caller's daily budgets for today
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	teacherID := middleware.GetUserID(r.Context())
	if teacherID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	budgets, err := h.service.ListBudgets(r.Context(), teacherID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, budgets)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var budgetErr *BudgetExceededError

	switch {
	case errors.As(err, &budgetErr):
		response.BadRequestCode(w, "BUDGET_EXCEEDED", budgetErr.Error(), map[string]string{
			"remaining": strconv.Itoa(budgetErr.Remaining),
		})
	case errors.Is(err, ErrGranterNotFound), errors.Is(err, ErrStudentNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotTeacher):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w)
	}
}
