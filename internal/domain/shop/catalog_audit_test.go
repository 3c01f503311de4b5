package shop

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/pkg/audit"
)

type stubCatalogRepo struct {
	Repository
	item *Item
}

func (s *stubCatalogRepo) CreateItem(ctx context.Context, item *Item) error {
	s.item = item
	return nil
}

func (s *stubCatalogRepo) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.item, nil
}

func (s *stubCatalogRepo) SetItemActive(ctx context.Context, id uuid.UUID, active bool) (*Item, error) {
	s.item.IsActive = active
	return s.item, nil
}

type stubUserRepo struct {
	user.Repository
	u *user.User
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.u, nil
}

type failingSink struct{}

func (failingSink) Append(ctx context.Context, e audit.Entry) error {
	return errors.New("sink down")
}

func (failingSink) AppendTx(ctx context.Context, tx *sqlx.Tx, e audit.Entry) error {
	return errors.New("sink down")
}

// Catalog writes are already committed when the audit entry is appended;
// a failing sink must not turn them into errors.
func TestCatalogWritesSurviveAuditFailure(t *testing.T) {
	operator := &user.User{ID: uuid.New(), Role: user.RoleOperator}
	repo := &stubCatalogRepo{}
	service := NewService(nil, repo, &stubUserRepo{u: operator}, failingSink{}, 0)

	item, err := service.CreateItem(context.Background(), operator.ID, &CreateItemRequest{
		Name:  "Sticker pack",
		Price: 10,
	})
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if repo.item == nil || repo.item.ID != item.ID {
		t.Fatal("expected the item to be persisted")
	}

	toggled, err := service.ToggleItem(context.Background(), operator.ID, item.ID)
	if err != nil {
		t.Fatalf("expected toggle to succeed, got %v", err)
	}
	if toggled.IsActive {
		t.Fatal("expected item to be inactive after toggle")
	}
}
