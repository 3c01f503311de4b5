package xp

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduquest/eduquest-api/internal/domain/feed"
	"github.com/eduquest/eduquest-api/internal/domain/leveling"
	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/pkg/audit"
)

const recentGrantLimit = 10

// Service implements the XP grant engine: role check, daily budget
// enforcement, requestId idempotency and the audit insert all inside one
// transaction.
type Service struct {
	db          *sqlx.DB
	repo        Repository
	users       user.Repository
	sink        audit.Sink
	feed        feed.Publisher
	dailyBudget int
}

// NewService creates the XP service
func NewService(db *sqlx.DB, repo Repository, users user.Repository, sink audit.Sink, dailyBudget int) *Service {
	if dailyBudget <= 0 {
		dailyBudget = 1000
	}
	return &Service{db: db, repo: repo, users: users, sink: sink, dailyBudget: dailyBudget}
}

// SetFeedPublisher sets the live feed publisher (optional)
func (s *Service) SetFeedPublisher(p feed.Publisher) {
	s.feed = p
}

// Grant awards XP to a student. Operators bypass the budget entirely;
// teachers debit their (teacher, subject, day) budget in the same
// transaction as the audit insert, so neither can exist without the other.
func (s *Service) Grant(ctx context.Context, granterID uuid.UUID, req *GrantRequest) (*Audit, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	granter, err := s.users.GetByIDTx(ctx, tx, granterID)
	if err != nil {
		if err == user.ErrUserNotFound {
			return nil, ErrGranterNotFound
		}
		return nil, err
	}
	if !granter.Role.AtLeast(user.RoleTeacher) {
		return nil, ErrNotTeacher
	}

	if _, err := s.users.GetByIDTx(ctx, tx, req.StudentID); err != nil {
		if err == user.ErrUserNotFound {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	// Retried request: return the prior audit without touching the budget.
	if req.RequestID != "" {
		existing, err := s.repo.GetByRequestIDTx(ctx, tx, req.StudentID, req.Reason, req.RequestID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	if granter.Role == user.RoleTeacher {
		day := today()
		budget, err := s.repo.GetBudgetForUpdateTx(ctx, tx, granterID, req.SubjectID, day, s.dailyBudget)
		if err != nil {
			return nil, err
		}
		if budget.Used+req.Amount > budget.Budget {
			return nil, &BudgetExceededError{Remaining: budget.Remaining()}
		}
		if err := s.repo.AddBudgetUsageTx(ctx, tx, granterID, req.SubjectID, day, req.Amount); err != nil {
			return nil, err
		}
	}

	a := &Audit{
		ID:     uuid.New(),
		UserID: req.StudentID,
		Amount: req.Amount,
		Reason: req.Reason,
	}
	if req.RequestID != "" {
		a.RequestID = &req.RequestID
	}

	if err := s.repo.InsertTx(ctx, tx, a); err != nil {
		return nil, err
	}

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message:   "XP granted",
		UserID:    &req.StudentID,
		RequestID: req.RequestID,
		Metadata: map[string]interface{}{
			"granter_id": granterID.String(),
			"subject_id": req.SubjectID.String(),
			"amount":     req.Amount,
			"reason":     req.Reason,
		},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	if s.feed != nil {
		s.feed.Publish(ctx, feed.Event{
			Type:    feed.EventXPGranted,
			UserID:  req.StudentID,
			Message: req.Reason,
			Data:    map[string]interface{}{"amount": req.Amount},
		})
	}

	return a, nil
}

// GetStudentXP replays the student's full audit log into a total, derives
// level info and returns the ten most recent grants alongside the log.
func (s *Service) GetStudentXP(ctx context.Context, studentID uuid.UUID) (*StudentXP, error) {
	if _, err := s.users.GetByID(ctx, studentID); err != nil {
		if err == user.ErrUserNotFound {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	audits, err := s.repo.ListByUser(ctx, studentID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, a := range audits {
		total += a.Amount
	}

	recent := audits
	if len(recent) > recentGrantLimit {
		recent = recent[:recentGrantLimit]
	}

	return &StudentXP{
		StudentID: studentID,
		TotalXP:   total,
		Level:     leveling.LevelInfo(total),
		Progress:  leveling.ProgressToNextLevel(total),
		Recent:    recent,
		Audits:    audits,
	}, nil
}

// ListBudgets returns the caller's remaining headroom for today.
func (s *Service) ListBudgets(ctx context.Context, teacherID uuid.UUID) ([]DailyBudget, error) {
	return s.repo.ListBudgets(ctx, teacherID, today())
}

func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
