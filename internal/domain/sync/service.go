package sync

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/pkg/audit"
	"github.com/eduquest/eduquest-api/internal/pkg/bakalari"
)

// RosterSource is the school-system API the sync pulls from.
type RosterSource interface {
	FetchClasses(ctx context.Context) ([]bakalari.ClassRecord, error)
	FetchSubjects(ctx context.Context) ([]bakalari.SubjectRecord, error)
	FetchStudents(ctx context.Context) ([]bakalari.StudentRecord, error)
}

// Service reconciles the external roster into local classes, subjects and
// student accounts. Fetches happen before the transaction opens; the
// reconciliation itself commits atomically.
type Service struct {
	db     *sqlx.DB
	repo   Repository
	users  user.Repository
	source RosterSource
	sink   audit.Sink
}

// NewService creates the sync service
func NewService(db *sqlx.DB, repo Repository, users user.Repository, source RosterSource, sink audit.Sink) *Service {
	return &Service{db: db, repo: repo, users: users, source: source, sink: sink}
}

// SyncRoster pulls classes, subjects and students and upserts them in that
// order, so student rows can reference the classes created in the same run.
// Operator only.
func (s *Service) SyncRoster(ctx context.Context, operatorID uuid.UUID) (*Result, error) {
	operator, err := s.users.GetByID(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	if !operator.Role.AtLeast(user.RoleOperator) {
		return nil, ErrNotOperator
	}

	classes, err := s.source.FetchClasses(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch classes: %w", err)
	}
	subjects, err := s.source.FetchSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch subjects: %w", err)
	}
	students, err := s.source.FetchStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch students: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result := &Result{}

	// External class id -> internal id, for student class references below.
	classIDs := make(map[string]uuid.UUID, len(classes))

	for _, c := range classes {
		internalID, err := s.resolveOrCreateRef(ctx, tx, EntityClass, c.ID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpsertClassTx(ctx, tx, &user.Class{ID: internalID, Name: c.Name, Grade: c.Grade}); err != nil {
			return nil, err
		}
		classIDs[c.ID] = internalID
		result.ClassesSynced++
	}

	for _, sub := range subjects {
		internalID, err := s.resolveOrCreateRef(ctx, tx, EntitySubject, sub.ID)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpsertSubjectTx(ctx, tx, &user.Subject{ID: internalID, Name: sub.Name, Abbreviation: sub.Abbreviation}); err != nil {
			return nil, err
		}
		result.SubjectsSynced++
	}

	for _, st := range students {
		var classID *uuid.UUID
		if id, ok := classIDs[st.ClassID]; ok {
			classID = &id
		} else if st.ClassID != "" {
			log.Warn().Str("bakalari_id", st.ID).Str("class_id", st.ClassID).
				Msg("Synced student references an unknown class")
		}

		existing, err := s.repo.ResolveRefTx(ctx, tx, EntityStudent, st.ID)
		if err != nil {
			return nil, err
		}

		if existing != nil {
			if err := s.repo.UpdateStudentTx(ctx, tx, *existing, st.Name, classID); err != nil {
				return nil, err
			}
			result.StudentsUpdated++
			continue
		}

		u := &user.User{
			ID:         uuid.New(),
			BakalariID: sql.NullString{String: st.ID, Valid: true},
			Email:      st.Email,
			Name:       st.Name,
			Role:       user.RoleStudent,
			ClassID:    classID,
		}
		if err := s.repo.InsertStudentTx(ctx, tx, u); err != nil {
			return nil, err
		}
		if err := s.repo.InsertRefTx(ctx, tx, EntityStudent, st.ID, u.ID); err != nil {
			return nil, err
		}
		result.StudentsCreated++
	}

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message: "Roster sync completed",
		UserID:  &operatorID,
		Metadata: map[string]interface{}{
			"classes_synced":   result.ClassesSynced,
			"subjects_synced":  result.SubjectsSynced,
			"students_created": result.StudentsCreated,
			"students_updated": result.StudentsUpdated,
		},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return result, nil
}

// resolveOrCreateRef returns the internal id for an external identity,
// minting a new one on first sight.
func (s *Service) resolveOrCreateRef(ctx context.Context, tx *sqlx.Tx, entityType, externalID string) (uuid.UUID, error) {
	existing, err := s.repo.ResolveRefTx(ctx, tx, entityType, externalID)
	if err != nil {
		return uuid.Nil, err
	}
	if existing != nil {
		return *existing, nil
	}

	internalID := uuid.New()
	if err := s.repo.InsertRefTx(ctx, tx, entityType, externalID, internalID); err != nil {
		return uuid.Nil, err
	}
	return internalID, nil
}
