package event

import "time"

// CreateRequest creates a new bonus event
type CreateRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	XPBonus     int       `json:"xp_bonus" validate:"required,gte=1"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
}

// ParticipateRequest claims an event bonus
type ParticipateRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,max=128"`
}
