package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const queryTimeout = 3 * time.Second

const sqlStateUniqueViolation = "23505"

// Repository provides user lookups and account creation.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	List(ctx context.Context, role Role, limit, offset int) ([]*User, error)
}

type repositoryImpl struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u User
	err := r.db.GetContext(ctx2, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByIDTx reads a user inside the caller's transaction. Engines use this
// for role checks so authorization and writes share one consistent snapshot.
func (r *repositoryImpl) GetByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*User, error) {
	var u User
	err := tx.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u User
	err := r.db.GetContext(ctx2, &u, `SELECT * FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) Create(ctx context.Context, u *User) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `INSERT INTO users (id, bakalari_id, email, password_hash, name, role, class_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx2, query,
		u.ID, u.BakalariID, u.Email, u.PasswordHash, u.Name, u.Role, u.ClassID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateUniqueViolation {
			return ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (r *repositoryImpl) List(ctx context.Context, role Role, limit, offset int) ([]*User, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	users := make([]*User, 0)
	if role != "" {
		err := r.db.SelectContext(ctx2, &users, `
			SELECT * FROM users WHERE role = $1 ORDER BY name LIMIT $2 OFFSET $3
		`, role, limit, offset)
		return users, err
	}

	err := r.db.SelectContext(ctx2, &users, `
		SELECT * FROM users ORDER BY name LIMIT $1 OFFSET $2
	`, limit, offset)
	return users, err
}
