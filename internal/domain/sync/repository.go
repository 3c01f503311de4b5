package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduquest/eduquest-api/internal/domain/user"
)

// Repository reconciles roster data into local tables. Every external
// identity maps to exactly one internal row through external_refs, so a
// re-run updates instead of duplicating.
type Repository interface {
	ResolveRefTx(ctx context.Context, tx *sqlx.Tx, entityType, externalID string) (*uuid.UUID, error)
	InsertRefTx(ctx context.Context, tx *sqlx.Tx, entityType, externalID string, internalID uuid.UUID) error

	UpsertClassTx(ctx context.Context, tx *sqlx.Tx, c *user.Class) error
	UpsertSubjectTx(ctx context.Context, tx *sqlx.Tx, s *user.Subject) error
	InsertStudentTx(ctx context.Context, tx *sqlx.Tx, u *user.User) error
	UpdateStudentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, name string, classID *uuid.UUID) error
}

type repositoryImpl struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{db: db}
}

// ResolveRefTx returns the internal id mapped to an external identity, or
// (nil, nil) when the entity has never been seen.
func (r *repositoryImpl) ResolveRefTx(ctx context.Context, tx *sqlx.Tx, entityType, externalID string) (*uuid.UUID, error) {
	var internalID uuid.UUID
	err := tx.GetContext(ctx, &internalID, `
		SELECT internal_id FROM external_refs
		WHERE entity_type = $1 AND external_id = $2
	`, entityType, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve external ref: %w", err)
	}
	return &internalID, nil
}

func (r *repositoryImpl) InsertRefTx(ctx context.Context, tx *sqlx.Tx, entityType, externalID string, internalID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO external_refs (entity_type, external_id, internal_id)
		VALUES ($1, $2, $3)
	`, entityType, externalID, internalID)
	if err != nil {
		return fmt.Errorf("insert external ref: %w", err)
	}
	return nil
}

func (r *repositoryImpl) UpsertClassTx(ctx context.Context, tx *sqlx.Tx, c *user.Class) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO classes (id, name, grade)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, grade = EXCLUDED.grade
	`, c.ID, c.Name, c.Grade)
	if err != nil {
		return fmt.Errorf("upsert class: %w", err)
	}
	return nil
}

func (r *repositoryImpl) UpsertSubjectTx(ctx context.Context, tx *sqlx.Tx, s *user.Subject) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO subjects (id, name, abbreviation)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, abbreviation = EXCLUDED.abbreviation
	`, s.ID, s.Name, s.Abbreviation)
	if err != nil {
		return fmt.Errorf("upsert subject: %w", err)
	}
	return nil
}

func (r *repositoryImpl) InsertStudentTx(ctx context.Context, tx *sqlx.Tx, u *user.User) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, bakalari_id, email, password_hash, name, role, class_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.BakalariID, u.Email, u.PasswordHash, u.Name, u.Role, u.ClassID)
	if err != nil {
		return fmt.Errorf("insert synced student: %w", err)
	}
	return nil
}

func (r *repositoryImpl) UpdateStudentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, name string, classID *uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET name = $2, class_id = $3, updated_at = now()
		WHERE id = $1
	`, id, name, classID)
	if err != nil {
		return fmt.Errorf("update synced student: %w", err)
	}
	return nil
}
