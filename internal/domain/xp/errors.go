package xp

import (
	"errors"
	"fmt"
)

var (
	// ErrGranterNotFound is returned when the granting user does not exist
	ErrGranterNotFound = errors.New("granter not found")

	// ErrStudentNotFound is returned when the target student does not exist
	ErrStudentNotFound = errors.New("student not found")

	// ErrNotTeacher is returned when the granter lacks teacher or operator role
	ErrNotTeacher = errors.New("only teachers and operators may grant XP")

	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrBudgetExceeded is the errors.Is target for BudgetExceededError
	ErrBudgetExceeded = errors.New("daily XP budget exceeded")
)

// BudgetExceededError rejects a grant that would push a teacher's daily
// usage over budget. Remaining carries the headroom still grantable today.
type BudgetExceededError struct {
	Remaining int
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("daily XP budget exceeded: %d XP remaining today", e.Remaining)
}

func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrBudgetExceeded
}
