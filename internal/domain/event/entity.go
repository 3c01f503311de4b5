package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is an operator-defined bonus window. Students who participate while
// the window is open receive the XP bonus through the regular ledger.
type Event struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	XPBonus     int       `db:"xp_bonus" json:"xp_bonus"`
	StartsAt    time.Time `db:"starts_at" json:"starts_at"`
	EndsAt      time.Time `db:"ends_at" json:"ends_at"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Active reports whether the event window is open at t.
func (e *Event) Active(t time.Time) bool {
	return !t.Before(e.StartsAt) && t.Before(e.EndsAt)
}

// Participation is one student's claim on an event bonus. At most one per
// (event, user) pair.
type Participation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	EventID   uuid.UUID `db:"event_id" json:"event_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	RequestID *string   `db:"request_id" json:"request_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
