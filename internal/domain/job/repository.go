package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

const sqlStateUniqueViolation = "23505"

// Repository persists jobs and assignments. Tx methods run inside the
// caller's transaction; GetForUpdateTx takes a row lock on the job so
// concurrent applies and closes against the same job serialize.
type Repository interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, j *Job) error
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Job, error)
	CloseTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, closedAt time.Time) error

	InsertAssignmentTx(ctx context.Context, tx *sqlx.Tx, a *Assignment) error
	GetAssignmentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Assignment, error)
	ListAssignmentsTx(ctx context.Context, tx *sqlx.Tx, jobID uuid.UUID) ([]Assignment, error)
	ListAssignmentsWithStudentTx(ctx context.Context, tx *sqlx.Tx, jobID uuid.UUID) ([]AssignmentWithStudent, error)
	UpdateAssignmentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status AssignmentStatus, completedAt *time.Time) error

	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	List(ctx context.Context, status Status, limit, offset int) ([]Job, error)
	ListAssignmentsWithStudent(ctx context.Context, jobID uuid.UUID) ([]AssignmentWithStudent, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Assignment, error)
}

type repositoryImpl struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertTx(ctx context.Context, tx *sqlx.Tx, j *Job) error {
	query := `INSERT INTO jobs (id, title, description, subject_id, teacher_id, xp_reward, money_reward, max_students, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at`

	err := tx.QueryRowContext(ctx, query,
		j.ID, j.Title, j.Description, j.SubjectID, j.TeacherID,
		j.XPReward, j.MoneyReward, j.MaxStudents, j.Status).
		Scan(&j.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetForUpdateTx loads a job under a FOR UPDATE lock. Every mutation of the
// job or its assignments goes through this lock first.
func (r *repositoryImpl) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Job, error) {
	var j Job
	err := tx.GetContext(ctx, &j, `SELECT * FROM jobs WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("lock job: %w", err)
	}
	return &j, nil
}

func (r *repositoryImpl) CloseTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, closedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE jobs SET status = $2, closed_at = $3 WHERE id = $1
	`, id, StatusClosed, closedAt)
	if err != nil {
		return fmt.Errorf("close job: %w", err)
	}
	return nil
}

func (r *repositoryImpl) InsertAssignmentTx(ctx context.Context, tx *sqlx.Tx, a *Assignment) error {
	query := `INSERT INTO job_assignments (id, job_id, student_id, status, request_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`

	err := tx.QueryRowContext(ctx, query, a.ID, a.JobID, a.StudentID, a.Status, a.RequestID).Scan(&a.CreatedAt)
	if err != nil {
		// The unique (job_id, student_id) index backstops the in-transaction
		// duplicate check.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateUniqueViolation {
			return ErrAlreadyApplied
		}
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetAssignmentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Assignment, error) {
	var a Assignment
	err := tx.GetContext(ctx, &a, `SELECT * FROM job_assignments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

func (r *repositoryImpl) ListAssignmentsTx(ctx context.Context, tx *sqlx.Tx, jobID uuid.UUID) ([]Assignment, error) {
	assignments := make([]Assignment, 0)
	err := tx.SelectContext(ctx, &assignments, `
		SELECT * FROM job_assignments WHERE job_id = $1 ORDER BY created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

func (r *repositoryImpl) ListAssignmentsWithStudentTx(ctx context.Context, tx *sqlx.Tx, jobID uuid.UUID) ([]AssignmentWithStudent, error) {
	assignments := make([]AssignmentWithStudent, 0)
	err := tx.SelectContext(ctx, &assignments, `
		SELECT a.*, u.name AS student_name
		FROM job_assignments a
		JOIN users u ON u.id = a.student_id
		WHERE a.job_id = $1
		ORDER BY a.created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list assignments with students: %w", err)
	}
	return assignments, nil
}

func (r *repositoryImpl) UpdateAssignmentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status AssignmentStatus, completedAt *time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE job_assignments SET status = $2, completed_at = $3 WHERE id = $1
	`, id, status, completedAt)
	if err != nil {
		return fmt.Errorf("update assignment status: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var j Job
	err := r.db.GetContext(ctx2, &j, `SELECT * FROM jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *repositoryImpl) List(ctx context.Context, status Status, limit, offset int) ([]Job, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	jobs := make([]Job, 0)
	if status != "" {
		err := r.db.SelectContext(ctx2, &jobs, `
			SELECT * FROM jobs WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return jobs, err
	}

	err := r.db.SelectContext(ctx2, &jobs, `
		SELECT * FROM jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return jobs, err
}

func (r *repositoryImpl) ListAssignmentsWithStudent(ctx context.Context, jobID uuid.UUID) ([]AssignmentWithStudent, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	assignments := make([]AssignmentWithStudent, 0)
	err := r.db.SelectContext(ctx2, &assignments, `
		SELECT a.*, u.name AS student_name
		FROM job_assignments a
		JOIN users u ON u.id = a.student_id
		WHERE a.job_id = $1
		ORDER BY a.created_at
	`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list assignments with students: %w", err)
	}
	return assignments, nil
}

func (r *repositoryImpl) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]Assignment, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	assignments := make([]Assignment, 0)
	err := r.db.SelectContext(ctx2, &assignments, `
		SELECT * FROM job_assignments WHERE student_id = $1 ORDER BY created_at DESC
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student assignments: %w", err)
	}
	return assignments, nil
}
