package job

import (
	"time"

	"github.com/google/uuid"
)

// Status is a job's lifecycle state. CLOSED is terminal and is reached
// exactly once, only through the creating teacher.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// AssignmentStatus is one student's position in the workflow. REJECTED and
// COMPLETED are terminal; APPROVED may be sent back to APPLIED before close.
type AssignmentStatus string

const (
	AssignmentApplied   AssignmentStatus = "applied"
	AssignmentApproved  AssignmentStatus = "approved"
	AssignmentRejected  AssignmentStatus = "rejected"
	AssignmentCompleted AssignmentStatus = "completed"
)

// Job is a task a teacher publishes. Rewards never change after creation.
type Job struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Description  string     `db:"description" json:"description"`
	SubjectID    uuid.UUID  `db:"subject_id" json:"subject_id"`
	TeacherID    uuid.UUID  `db:"teacher_id" json:"teacher_id"`
	XPReward     int        `db:"xp_reward" json:"xp_reward"`
	MoneyReward  int        `db:"money_reward" json:"money_reward"`
	MaxStudents  int        `db:"max_students" json:"max_students"`
	Status       Status     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ClosedAt     *time.Time `db:"closed_at" json:"closed_at,omitempty"`
}

// Closeable reports whether the job may still be closed.
func (j *Job) Closeable() bool {
	return j.Status == StatusOpen || j.Status == StatusInProgress
}

// Assignment is one student's application to a job. (job, student) is
// unique; capacity is checked against the job's max_students at creation.
type Assignment struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	JobID       uuid.UUID        `db:"job_id" json:"job_id"`
	StudentID   uuid.UUID        `db:"student_id" json:"student_id"`
	Status      AssignmentStatus `db:"status" json:"status"`
	RequestID   *string          `db:"request_id" json:"request_id,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	CompletedAt *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// AssignmentWithStudent joins the student's name for payout reporting.
type AssignmentWithStudent struct {
	Assignment
	StudentName string `db:"student_name" json:"student_name"`
}
