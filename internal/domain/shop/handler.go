package shop

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/middleware"
	"github.com/eduquest/eduquest-api/internal/pkg/response"
	"github.com/eduquest/eduquest-api/internal/pkg/validator"
)

// Handler handles shop HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates new shop handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetBalance returns the caller's spendable balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, BalanceResponse{UserID: userID, Balance: balance})
}

// ListTransactions returns the caller's money ledger
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	txs, err := h.service.ListTransactions(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, txs)
}

// BuyItem purchases an item for the caller
func (h *Handler) BuyItem(w http.ResponseWriter, r *http.Request) {
	var req BuyRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	p, err := h.service.BuyItem(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, p)
}

// ListItems returns the catalog. Operators see inactive items too.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	activeOnly := !middleware.GetRole(r.Context()).AtLeast(user.RoleOperator)

	items, err := h.service.ListItems(r.Context(), activeOnly)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, items)
}

// ListPurchases returns the caller's purchase history
func (h *Handler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	purchases, err := h.service.ListPurchases(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, purchases)
}

// CreateItem adds a catalog item
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	operatorID := middleware.GetUserID(r.Context())
	item, err := h.service.CreateItem(r.Context(), operatorID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, item)
}

// ToggleItem flips an item's active flag
func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid item ID")
		return
	}

	operatorID := middleware.GetUserID(r.Context())
	item, err := h.service.ToggleItem(r.Context(), operatorID, itemID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, item)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var fundsErr *InsufficientFundsError

	switch {
	case errors.As(err, &fundsErr):
		response.BadRequestCode(w, "INSUFFICIENT_FUNDS", fundsErr.Error(), map[string]string{
			"balance": strconv.Itoa(fundsErr.Balance),
			"price":   strconv.Itoa(fundsErr.Price),
		})
	case errors.Is(err, ErrItemNotFound), errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrItemInactive):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotOperator):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w)
	}
}
