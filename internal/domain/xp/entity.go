package xp

import (
	"time"

	"github.com/google/uuid"
)

// Audit is one immutable XP grant. Rows are never updated or deleted; a
// user's total XP is the sum of their audit amounts.
type Audit struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Amount    int       `db:"amount" json:"amount"`
	Reason    string    `db:"reason" json:"reason"`
	RequestID *string   `db:"request_id" json:"request_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DailyBudget caps XP a teacher may grant per subject per calendar day.
// A row is created lazily on the first grant attempt for that day; used only
// ever increases within the day.
type DailyBudget struct {
	TeacherID uuid.UUID `db:"teacher_id" json:"teacher_id"`
	SubjectID uuid.UUID `db:"subject_id" json:"subject_id"`
	Day       time.Time `db:"day" json:"day"`
	Budget    int       `db:"budget" json:"budget"`
	Used      int       `db:"used" json:"used"`
}

// Remaining returns the grantable headroom for the day.
func (b *DailyBudget) Remaining() int {
	return b.Budget - b.Used
}
