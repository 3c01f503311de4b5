package job

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduquest/eduquest-api/internal/domain/feed"
	"github.com/eduquest/eduquest-api/internal/domain/shop"
	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/domain/xp"
	"github.com/eduquest/eduquest-api/internal/pkg/audit"
)

// Service implements the jobs lifecycle engine: creation, application,
// the approval workflow and close-time payout distribution. Every mutation
// runs in one transaction under the job's row lock, so a partial payout is
// never observable.
type Service struct {
	db       *sqlx.DB
	repo     Repository
	xpRepo   xp.Repository
	shopRepo shop.Repository
	users    user.Repository
	sink     audit.Sink
	feed     feed.Publisher
}

// NewService creates the jobs service
func NewService(db *sqlx.DB, repo Repository, xpRepo xp.Repository, shopRepo shop.Repository, users user.Repository, sink audit.Sink) *Service {
	return &Service{db: db, repo: repo, xpRepo: xpRepo, shopRepo: shopRepo, users: users, sink: sink}
}

// SetFeedPublisher sets the live feed publisher (optional)
func (s *Service) SetFeedPublisher(p feed.Publisher) {
	s.feed = p
}

// Create publishes a new job in OPEN state. Teacher or operator only.
func (s *Service) Create(ctx context.Context, teacherID uuid.UUID, req *CreateRequest) (*Job, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	creator, err := s.users.GetByIDTx(ctx, tx, teacherID)
	if err != nil {
		return nil, err
	}
	if !creator.Role.AtLeast(user.RoleTeacher) {
		return nil, ErrNotTeacher
	}

	maxStudents := req.MaxStudents
	if maxStudents <= 0 {
		maxStudents = 1
	}

	j := &Job{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		SubjectID:   req.SubjectID,
		TeacherID:   teacherID,
		XPReward:    req.XPReward,
		MoneyReward: req.MoneyReward,
		MaxStudents: maxStudents,
		Status:      StatusOpen,
	}
	if err := s.repo.InsertTx(ctx, tx, j); err != nil {
		return nil, err
	}

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message: "Job created",
		UserID:  &teacherID,
		Metadata: map[string]interface{}{
			"job_id":       j.ID.String(),
			"title":        j.Title,
			"xp_reward":    j.XPReward,
			"money_reward": j.MoneyReward,
			"max_students": j.MaxStudents,
		},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return j, nil
}

// Apply creates an APPLIED assignment for the student. The duplicate check
// runs before the capacity check so a re-applying student gets the precise
// error; both run under the job's row lock.
func (s *Service) Apply(ctx context.Context, studentID, jobID uuid.UUID, requestID string) (*Assignment, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	j, err := s.repo.GetForUpdateTx(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	if j.Status != StatusOpen {
		return nil, ErrJobNotOpen
	}

	assignments, err := s.repo.ListAssignmentsTx(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	for i := range assignments {
		if assignments[i].StudentID == studentID {
			// Retried request: return the existing assignment instead of
			// reporting a conflict.
			if requestID != "" && assignments[i].RequestID != nil && *assignments[i].RequestID == requestID {
				return &assignments[i], nil
			}
			return nil, ErrAlreadyApplied
		}
	}
	if len(assignments) >= j.MaxStudents {
		return nil, ErrJobFull
	}

	a := &Assignment{
		ID:        uuid.New(),
		JobID:     jobID,
		StudentID: studentID,
		Status:    AssignmentApplied,
	}
	if requestID != "" {
		a.RequestID = &requestID
	}
	if err := s.repo.InsertAssignmentTx(ctx, tx, a); err != nil {
		return nil, err
	}

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message:   "Job application submitted",
		UserID:    &studentID,
		RequestID: requestID,
		Metadata:  map[string]interface{}{"job_id": jobID.String()},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return a, nil
}

// Approve moves an APPLIED assignment to APPROVED.
func (s *Service) Approve(ctx context.Context, teacherID, assignmentID uuid.UUID) (*Assignment, error) {
	return s.transition(ctx, teacherID, assignmentID, AssignmentApplied, AssignmentApproved, "Job assignment approved")
}

// Reject moves an APPLIED assignment to REJECTED. Terminal.
func (s *Service) Reject(ctx context.Context, teacherID, assignmentID uuid.UUID) (*Assignment, error) {
	return s.transition(ctx, teacherID, assignmentID, AssignmentApplied, AssignmentRejected, "Job assignment rejected")
}

// Return sends an APPROVED assignment back to APPLIED for revision.
func (s *Service) Return(ctx context.Context, teacherID, assignmentID uuid.UUID) (*Assignment, error) {
	return s.transition(ctx, teacherID, assignmentID, AssignmentApproved, AssignmentApplied, "Job assignment returned for revision")
}

// transition applies a single-edge assignment state change guarded by the
// job's row lock, the creator check and the expected source state.
func (s *Service) transition(ctx context.Context, teacherID, assignmentID uuid.UUID, from, to AssignmentStatus, message string) (*Assignment, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	a, err := s.repo.GetAssignmentTx(ctx, tx, assignmentID)
	if err != nil {
		return nil, err
	}

	j, err := s.repo.GetForUpdateTx(ctx, tx, a.JobID)
	if err != nil {
		return nil, err
	}
	if j.TeacherID != teacherID {
		return nil, ErrNotJobOwner
	}

	// Re-read under the lock; the first read raced against other transitions.
	a, err = s.repo.GetAssignmentTx(ctx, tx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != from {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateAssignmentStatusTx(ctx, tx, assignmentID, to, nil); err != nil {
		return nil, err
	}
	a.Status = to

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message: message,
		UserID:  &teacherID,
		Metadata: map[string]interface{}{
			"job_id":        j.ID.String(),
			"assignment_id": assignmentID.String(),
			"student_id":    a.StudentID.String(),
		},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return a, nil
}

// Close transitions the job to CLOSED and pays every APPROVED student an
// identical floor-division share of both rewards. The status change, the
// ledger writes and the assignment completions commit atomically; the
// floor-division remainder is never distributed, only logged.
func (s *Service) Close(ctx context.Context, teacherID, jobID uuid.UUID) (*CloseResult, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	j, err := s.repo.GetForUpdateTx(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	if j.TeacherID != teacherID {
		return nil, ErrNotJobOwner
	}
	if !j.Closeable() {
		return nil, ErrJobNotCloseable
	}

	now := time.Now()
	if err := s.repo.CloseTx(ctx, tx, jobID, now); err != nil {
		return nil, err
	}
	j.Status = StatusClosed
	j.ClosedAt = &now

	assignments, err := s.repo.ListAssignmentsWithStudentTx(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}

	approved := make([]AssignmentWithStudent, 0, len(assignments))
	for _, a := range assignments {
		if a.Status == AssignmentApproved {
			approved = append(approved, a)
		}
	}

	split := SplitReward(j.XPReward, j.MoneyReward, len(approved))
	reason := fmt.Sprintf("Job completion: %s", j.Title)

	payouts := make([]Payout, 0, len(approved))
	for _, a := range approved {
		studentID := a.StudentID

		xpAudit := &xp.Audit{
			ID:     uuid.New(),
			UserID: studentID,
			Amount: split.XPPerStudent,
			Reason: reason,
		}
		if err := s.xpRepo.InsertTx(ctx, tx, xpAudit); err != nil {
			return nil, err
		}

		earned := &shop.MoneyTx{
			ID:     uuid.New(),
			UserID: studentID,
			Amount: split.MoneyPerStudent,
			TxType: shop.TxTypeEarned,
			Reason: reason,
		}
		if err := s.shopRepo.InsertMoneyTxTx(ctx, tx, earned); err != nil {
			return nil, err
		}

		if err := s.repo.UpdateAssignmentStatusTx(ctx, tx, a.ID, AssignmentCompleted, &now); err != nil {
			return nil, err
		}

		payouts = append(payouts, Payout{
			StudentID:   studentID,
			StudentName: a.StudentName,
			XPAmount:    split.XPPerStudent,
			MoneyAmount: split.MoneyPerStudent,
		})
	}

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message: "Job closed",
		UserID:  &teacherID,
		Metadata: map[string]interface{}{
			"job_id":            jobID.String(),
			"approved_count":    len(approved),
			"xp_per_student":    split.XPPerStudent,
			"money_per_student": split.MoneyPerStudent,
		},
	}); err != nil {
		return nil, err
	}

	// The remainder is dropped from the ledger, not rounded onto a student;
	// it is surfaced to operators here.
	if split.XPRemainder != 0 || split.MoneyRemainder != 0 {
		if err := s.sink.AppendTx(ctx, tx, audit.Entry{
			Level:   audit.LevelWarn,
			Message: "Job close left an undistributed remainder",
			UserID:  &teacherID,
			Metadata: map[string]interface{}{
				"job_id":          jobID.String(),
				"xp_remainder":    split.XPRemainder,
				"money_remainder": split.MoneyRemainder,
			},
		}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	if s.feed != nil {
		s.feed.Publish(ctx, feed.Event{
			Type:    feed.EventJobClosed,
			UserID:  teacherID,
			Message: j.Title,
			Data: map[string]interface{}{
				"payouts":   len(payouts),
				"xp_reward": j.XPReward,
			},
		})
	}

	return &CloseResult{
		Job:     j,
		Payouts: payouts,
		Remainder: Remainder{
			XP:    split.XPRemainder,
			Money: split.MoneyRemainder,
		},
	}, nil
}

// GetJob returns a job with its assignments and student names.
func (s *Service) GetJob(ctx context.Context, jobID uuid.UUID) (*JobWithAssignments, error) {
	j, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListAssignmentsWithStudent(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &JobWithAssignments{Job: j, Assignments: assignments}, nil
}

// ListJobs returns jobs filtered by status.
func (s *Service) ListJobs(ctx context.Context, status Status, limit, offset int) ([]Job, error) {
	return s.repo.List(ctx, status, limit, offset)
}

// ListMyAssignments returns the student's applications.
func (s *Service) ListMyAssignments(ctx context.Context, studentID uuid.UUID) ([]Assignment, error) {
	return s.repo.ListByStudent(ctx, studentID)
}
