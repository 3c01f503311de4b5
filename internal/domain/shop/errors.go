package shop

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when the item does not exist
	ErrItemNotFound = errors.New("item not found")

	// ErrItemInactive is returned when the item is not purchasable
	ErrItemInactive = errors.New("item is not active")

	// ErrNotOperator is returned on catalog mutations by non-operators
	ErrNotOperator = errors.New("only operators may manage the catalog")

	// ErrInsufficientFunds is the errors.Is target for InsufficientFundsError
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// InsufficientFundsError rejects a purchase that would drive the balance
// negative. Balance and Price let the caller report the shortfall.
type InsufficientFundsError struct {
	Balance int
	Price   int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %d, price %d", e.Balance, e.Price)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
