package shop

import "github.com/google/uuid"

// BuyRequest represents a purchase request
type BuyRequest struct {
	ItemID    uuid.UUID `json:"item_id" validate:"required"`
	RequestID string    `json:"request_id" validate:"omitempty,max=128"`
}

// CreateItemRequest represents a catalog item creation request
type CreateItemRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Price       int    `json:"price" validate:"gte=0"`
	Rarity      string `json:"rarity" validate:"omitempty,rarity"`
}

// BalanceResponse is the read-side balance summary
type BalanceResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance int       `json:"balance"`
}
