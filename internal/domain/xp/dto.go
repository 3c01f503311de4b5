package xp

import (
	"github.com/google/uuid"

	"github.com/eduquest/eduquest-api/internal/domain/leveling"
)

// GrantRequest represents a grant XP request
type GrantRequest struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
	SubjectID uuid.UUID `json:"subject_id" validate:"required"`
	Amount    int       `json:"amount" validate:"required,gte=1"`
	Reason    string    `json:"reason" validate:"required,min=2,max=500"`
	RequestID string    `json:"request_id" validate:"omitempty,max=128"`
}

// StudentXP is the read-side summary for one student
type StudentXP struct {
	StudentID uuid.UUID     `json:"student_id"`
	TotalXP   int           `json:"total_xp"`
	Level     leveling.Info `json:"level"`
	Progress  float64       `json:"progress_to_next_level"`
	Recent    []Audit       `json:"recent_grants"`
	Audits    []Audit       `json:"audits"`
}
