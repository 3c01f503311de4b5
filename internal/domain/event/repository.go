package event

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

// Repository persists events and participations
type Repository interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, e *Event) error
	GetByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Event, error)

	InsertParticipationTx(ctx context.Context, tx *sqlx.Tx, p *Participation) error
	FindParticipationTx(ctx context.Context, tx *sqlx.Tx, eventID, userID uuid.UUID) (*Participation, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	List(ctx context.Context, activeAt *time.Time) ([]Event, error)
	ListParticipations(ctx context.Context, eventID uuid.UUID) ([]Participation, error)
}

type repositoryImpl struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertTx(ctx context.Context, tx *sqlx.Tx, e *Event) error {
	query := `INSERT INTO events (id, title, description, xp_bonus, starts_at, ends_at, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at`

	if err := tx.QueryRowContext(ctx, query,
		e.ID, e.Title, e.Description, e.XPBonus, e.StartsAt, e.EndsAt, e.CreatedBy,
	).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Event, error) {
	var e Event
	err := tx.GetContext(ctx, &e, `SELECT * FROM events WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// InsertParticipationTx appends one participation. The UNIQUE(event_id,
// user_id) constraint is the last line of defense against double claims.
func (r *repositoryImpl) InsertParticipationTx(ctx context.Context, tx *sqlx.Tx, p *Participation) error {
	query := `INSERT INTO event_participations (id, event_id, user_id, request_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at`

	err := tx.QueryRowContext(ctx, query, p.ID, p.EventID, p.UserID, p.RequestID).Scan(&p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyParticipated
		}
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

// FindParticipationTx returns (nil, nil) when the user has not participated.
func (r *repositoryImpl) FindParticipationTx(ctx context.Context, tx *sqlx.Tx, eventID, userID uuid.UUID) (*Participation, error) {
	var p Participation
	err := tx.GetContext(ctx, &p, `
		SELECT * FROM event_participations
		WHERE event_id = $1 AND user_id = $2
	`, eventID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup participation: %w", err)
	}
	return &p, nil
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var e Event
	err := r.db.GetContext(ctx2, &e, `SELECT * FROM events WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// List returns events, optionally only those whose window contains activeAt.
func (r *repositoryImpl) List(ctx context.Context, activeAt *time.Time) ([]Event, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	events := make([]Event, 0)

	if activeAt != nil {
		err := r.db.SelectContext(ctx2, &events, `
			SELECT * FROM events
			WHERE starts_at <= $1 AND ends_at > $1
			ORDER BY starts_at DESC
		`, *activeAt)
		if err != nil {
			return nil, fmt.Errorf("list active events: %w", err)
		}
		return events, nil
	}

	err := r.db.SelectContext(ctx2, &events, `SELECT * FROM events ORDER BY starts_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *repositoryImpl) ListParticipations(ctx context.Context, eventID uuid.UUID) ([]Participation, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	participations := make([]Participation, 0)
	err := r.db.SelectContext(ctx2, &participations, `
		SELECT * FROM event_participations
		WHERE event_id = $1
		ORDER BY created_at
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	return participations, nil
}
