package xp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository persists XP audits and teacher daily budgets. All Tx methods
// run inside the caller's transaction and never commit or roll back.
type Repository interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, a *Audit) error
	GetByRequestIDTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, reason, requestID string) (*Audit, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Audit, error)

	GetBudgetForUpdateTx(ctx context.Context, tx *sqlx.Tx, teacherID, subjectID uuid.UUID, day time.Time, defaultBudget int) (*DailyBudget, error)
	AddBudgetUsageTx(ctx context.Context, tx *sqlx.Tx, teacherID, subjectID uuid.UUID, day time.Time, amount int) error
	ListBudgets(ctx context.Context, teacherID uuid.UUID, day time.Time) ([]DailyBudget, error)
}

type repositoryImpl struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{db: db}
}

// InsertTx appends one audit row. The ledger is append-only; there is no
// update or delete anywhere in this repository.
func (r *repositoryImpl) InsertTx(ctx context.Context, tx *sqlx.Tx, a *Audit) error {
	query := `INSERT INTO xp_audits (id, user_id, amount, reason, request_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`

	if err := tx.QueryRowContext(ctx, query, a.ID, a.UserID, a.Amount, a.Reason, a.RequestID).Scan(&a.CreatedAt); err != nil {
		return fmt.Errorf("insert xp audit: %w", err)
	}
	return nil
}

// GetByRequestIDTx finds a prior grant with the same (user, reason,
// request id). Returns (nil, nil) when no duplicate exists.
func (r *repositoryImpl) GetByRequestIDTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, reason, requestID string) (*Audit, error) {
	var a Audit
	err := tx.GetContext(ctx, &a, `
		SELECT * FROM xp_audits
		WHERE user_id = $1 AND reason = $2 AND request_id = $3
		ORDER BY created_at
		LIMIT 1
	`, userID, reason, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup xp audit by request id: %w", err)
	}
	return &a, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]Audit, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	audits := make([]Audit, 0)
	err := r.db.SelectContext(ctx2, &audits, `
		SELECT * FROM xp_audits
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list xp audits: %w", err)
	}
	return audits, nil
}

// GetBudgetForUpdateTx reads today's budget row under a FOR UPDATE lock,
// creating it lazily on the first grant attempt of the day. The lock
// serializes concurrent grants against the same (teacher, subject, day).
func (r *repositoryImpl) GetBudgetForUpdateTx(ctx context.Context, tx *sqlx.Tx, teacherID, subjectID uuid.UUID, day time.Time, defaultBudget int) (*DailyBudget, error) {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO teacher_daily_budgets (teacher_id, subject_id, day, budget, used)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (teacher_id, subject_id, day) DO NOTHING
	`, teacherID, subjectID, day, defaultBudget)
	if err != nil {
		return nil, fmt.Errorf("create daily budget: %w", err)
	}

	var b DailyBudget
	err = tx.GetContext(ctx, &b, `
		SELECT teacher_id, subject_id, day, budget, used
		FROM teacher_daily_budgets
		WHERE teacher_id = $1 AND subject_id = $2 AND day = $3
		FOR UPDATE
	`, teacherID, subjectID, day)
	if err != nil {
		return nil, fmt.Errorf("lock daily budget: %w", err)
	}
	return &b, nil
}

func (r *repositoryImpl) AddBudgetUsageTx(ctx context.Context, tx *sqlx.Tx, teacherID, subjectID uuid.UUID, day time.Time, amount int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE teacher_daily_budgets
		SET used = used + $4
		WHERE teacher_id = $1 AND subject_id = $2 AND day = $3
	`, teacherID, subjectID, day, amount)
	if err != nil {
		return fmt.Errorf("update daily budget usage: %w", err)
	}
	return nil
}

func (r *repositoryImpl) ListBudgets(ctx context.Context, teacherID uuid.UUID, day time.Time) ([]DailyBudget, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	budgets := make([]DailyBudget, 0)
	err := r.db.SelectContext(ctx2, &budgets, `
		SELECT teacher_id, subject_id, day, budget, used
		FROM teacher_daily_budgets
		WHERE teacher_id = $1 AND day = $2
		ORDER BY subject_id
	`, teacherID, day)
	if err != nil {
		return nil, fmt.Errorf("list daily budgets: %w", err)
	}
	return budgets, nil
}
