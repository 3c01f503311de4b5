package job

import "github.com/google/uuid"

// CreateRequest represents a job creation request
type CreateRequest struct {
	Title       string    `json:"title" validate:"required,min=2,max=200"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	SubjectID   uuid.UUID `json:"subject_id" validate:"required"`
	XPReward    int       `json:"xp_reward" validate:"required,gte=1"`
	MoneyReward int       `json:"money_reward" validate:"gte=0"`
	MaxStudents int       `json:"max_students" validate:"omitempty,gte=1"`
}

// ApplyRequest represents a student's application
type ApplyRequest struct {
	RequestID string `json:"request_id" validate:"omitempty,max=128"`
}

// Payout is one student's share from a job close
type Payout struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	XPAmount    int       `json:"xp_amount"`
	MoneyAmount int       `json:"money_amount"`
}

// Remainder is the undistributed leftover from floor division
type Remainder struct {
	XP    int `json:"xp"`
	Money int `json:"money"`
}

// CloseResult is the composite result of closing a job
type CloseResult struct {
	Job       *Job      `json:"job"`
	Payouts   []Payout  `json:"payouts"`
	Remainder Remainder `json:"remainder"`
}

// JobWithAssignments is the read-side job detail
type JobWithAssignments struct {
	Job         *Job                    `json:"job"`
	Assignments []AssignmentWithStudent `json:"assignments"`
}
