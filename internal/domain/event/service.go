package event

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduquest/eduquest-api/internal/domain/feed"
	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/domain/xp"
	"github.com/eduquest/eduquest-api/internal/pkg/audit"
)

// Service implements bonus events. Participation and the resulting XP grant
// commit in one transaction so a claimed bonus is always backed by a ledger
// row.
type Service struct {
	db     *sqlx.DB
	repo   Repository
	xpRepo xp.Repository
	users  user.Repository
	sink   audit.Sink
	feed   feed.Publisher
}

// NewService creates the events service
func NewService(db *sqlx.DB, repo Repository, xpRepo xp.Repository, users user.Repository, sink audit.Sink) *Service {
	return &Service{db: db, repo: repo, xpRepo: xpRepo, users: users, sink: sink}
}

// SetFeedPublisher sets the live feed publisher (optional)
func (s *Service) SetFeedPublisher(p feed.Publisher) {
	s.feed = p
}

// Create defines a new bonus event. Operator only.
func (s *Service) Create(ctx context.Context, operatorID uuid.UUID, req *CreateRequest) (*Event, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, ErrInvalidWindow
	}

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	creator, err := s.users.GetByIDTx(ctx, tx, operatorID)
	if err != nil {
		return nil, err
	}
	if !creator.Role.AtLeast(user.RoleOperator) {
		return nil, ErrNotOperator
	}

	e := &Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		XPBonus:     req.XPBonus,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   operatorID,
	}
	if err := s.repo.InsertTx(ctx, tx, e); err != nil {
		return nil, err
	}

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message: "Event created",
		UserID:  &operatorID,
		Metadata: map[string]interface{}{
			"event_id": e.ID.String(),
			"title":    e.Title,
			"xp_bonus": e.XPBonus,
		},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return e, nil
}

// Participate claims the event bonus for the caller. Retrying with the same
// requestId returns the original participation; any other repeat is a
// conflict.
func (s *Service) Participate(ctx context.Context, userID, eventID uuid.UUID, requestID string) (*Participation, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	e, err := s.repo.GetByIDTx(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if !e.Active(time.Now()) {
		return nil, ErrEventNotActive
	}

	existing, err := s.repo.FindParticipationTx(ctx, tx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if requestID != "" && existing.RequestID != nil && *existing.RequestID == requestID {
			return existing, nil
		}
		return nil, ErrAlreadyParticipated
	}

	p := &Participation{
		ID:      uuid.New(),
		EventID: eventID,
		UserID:  userID,
	}
	if requestID != "" {
		p.RequestID = &requestID
	}
	if err := s.repo.InsertParticipationTx(ctx, tx, p); err != nil {
		return nil, err
	}

	bonus := &xp.Audit{
		ID:     uuid.New(),
		UserID: userID,
		Amount: e.XPBonus,
		Reason: fmt.Sprintf("Event bonus: %s", e.Title),
	}
	if requestID != "" {
		bonus.RequestID = &requestID
	}
	if err := s.xpRepo.InsertTx(ctx, tx, bonus); err != nil {
		return nil, err
	}

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message:   "Event bonus claimed",
		UserID:    &userID,
		RequestID: requestID,
		Metadata: map[string]interface{}{
			"event_id": eventID.String(),
			"xp_bonus": e.XPBonus,
		},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	if s.feed != nil {
		s.feed.Publish(ctx, feed.Event{
			Type:    feed.EventEventBonus,
			UserID:  userID,
			Message: e.Title,
			Data:    map[string]interface{}{"xp_bonus": e.XPBonus},
		})
	}

	return p, nil
}

// Get returns one event
func (s *Service) Get(ctx context.Context, eventID uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, eventID)
}

// List returns events; with activeOnly set, only currently open windows.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]Event, error) {
	if activeOnly {
		now := time.Now()
		return s.repo.List(ctx, &now)
	}
	return s.repo.List(ctx, nil)
}

// ListParticipations returns everyone who claimed the event bonus.
func (s *Service) ListParticipations(ctx context.Context, eventID uuid.UUID) ([]Participation, error) {
	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListParticipations(ctx, eventID)
}
