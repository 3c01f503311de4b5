package shop

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/eduquest/eduquest-api/internal/domain/feed"
	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/pkg/audit"
)

// Service implements the shop engine: balance by replay, affordability check
// and the purchase + debit pair written in one transaction.
type Service struct {
	db          *sqlx.DB
	repo        Repository
	users       user.Repository
	sink        audit.Sink
	feed        feed.Publisher
	dedupWindow time.Duration
}

// NewService creates the shop service
func NewService(db *sqlx.DB, repo Repository, users user.Repository, sink audit.Sink, dedupWindow time.Duration) *Service {
	if dedupWindow <= 0 {
		dedupWindow = 60 * time.Second
	}
	return &Service{db: db, repo: repo, users: users, sink: sink, dedupWindow: dedupWindow}
}

// SetFeedPublisher sets the live feed publisher (optional)
func (s *Service) SetFeedPublisher(p feed.Publisher) {
	s.feed = p
}

// GetBalance replays the user's full money transaction log.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	txs, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return 0, err
	}
	return ReplayBalance(txs), nil
}

// ListTransactions returns the user's money ledger, newest first.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID) ([]MoneyTx, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// BuyItem purchases an item. Balance is replayed inside the transaction for
// a consistent snapshot; the purchase row and the SPENT debit commit
// together or not at all. Retried requests dedupe by request id, or by a
// short same-item-same-price window when no request id was supplied.
func (s *Service) BuyItem(ctx context.Context, userID uuid.UUID, req *BuyRequest) (*Purchase, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	item, err := s.repo.GetItemTx(ctx, tx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.IsActive {
		return nil, ErrItemInactive
	}

	txs, err := s.repo.ListTransactionsTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	balance := ReplayBalance(txs)
	if balance < item.Price {
		return nil, &InsufficientFundsError{Balance: balance, Price: item.Price}
	}

	var existing *Purchase
	if req.RequestID != "" {
		existing, err = s.repo.FindPurchaseByRequestIDTx(ctx, tx, userID, req.RequestID)
	} else {
		existing, err = s.repo.FindRecentPurchaseTx(ctx, tx, userID, item.ID, item.Price, s.dedupWindow)
	}
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	p := &Purchase{
		ID:     uuid.New(),
		UserID: userID,
		ItemID: item.ID,
		Price:  item.Price,
	}
	if req.RequestID != "" {
		p.RequestID = &req.RequestID
	}

	if err := s.repo.InsertPurchaseTx(ctx, tx, p); err != nil {
		return nil, err
	}

	debit := &MoneyTx{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    item.Price,
		TxType:    TxTypeSpent,
		Reason:    fmt.Sprintf("Purchase: %s", item.Name),
		RequestID: p.RequestID,
	}
	if err := s.repo.InsertMoneyTxTx(ctx, tx, debit); err != nil {
		return nil, err
	}

	if err := s.sink.AppendTx(ctx, tx, audit.Entry{
		Message:   "Item purchased",
		UserID:    &userID,
		RequestID: req.RequestID,
		Metadata: map[string]interface{}{
			"item_id": item.ID.String(),
			"price":   item.Price,
		},
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	if s.feed != nil {
		s.feed.Publish(ctx, feed.Event{
			Type:    feed.EventPurchase,
			UserID:  userID,
			Message: item.Name,
			Data:    map[string]interface{}{"price": item.Price},
		})
	}

	return p, nil
}

// CreateItem adds a catalog item. Operator only.
func (s *Service) CreateItem(ctx context.Context, operatorID uuid.UUID, req *CreateItemRequest) (*Item, error) {
	if err := s.requireOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	rarity := req.Rarity
	if rarity == "" {
		rarity = "common"
	}

	item := &Item{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Rarity:      rarity,
		IsActive:    true,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	// The item is already committed; a failed audit write must not undo it.
	if err := s.sink.Append(ctx, audit.Entry{
		Message: "Item created",
		UserID:  &operatorID,
		Metadata: map[string]interface{}{
			"item_id": item.ID.String(),
			"name":    item.Name,
			"price":   item.Price,
		},
	}); err != nil {
		log.Error().Err(err).Str("item_id", item.ID.String()).Msg("Failed to audit item creation")
	}

	return item, nil
}

// ToggleItem flips an item's active flag. Operator only.
func (s *Service) ToggleItem(ctx context.Context, operatorID, itemID uuid.UUID) (*Item, error) {
	if err := s.requireOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SetItemActive(ctx, itemID, !item.IsActive)
	if err != nil {
		return nil, err
	}

	if err := s.sink.Append(ctx, audit.Entry{
		Message: "Item toggled",
		UserID:  &operatorID,
		Metadata: map[string]interface{}{
			"item_id":   updated.ID.String(),
			"is_active": updated.IsActive,
		},
	}); err != nil {
		log.Error().Err(err).Str("item_id", updated.ID.String()).Msg("Failed to audit item toggle")
	}

	return updated, nil
}

// ListItems returns the catalog; students see active items only.
func (s *Service) ListItems(ctx context.Context, activeOnly bool) ([]Item, error) {
	return s.repo.ListItems(ctx, activeOnly)
}

// ListPurchases returns the user's purchase history.
func (s *Service) ListPurchases(ctx context.Context, userID uuid.UUID) ([]Purchase, error) {
	return s.repo.ListPurchases(ctx, userID)
}

func (s *Service) requireOperator(ctx context.Context, operatorID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, operatorID)
	if err != nil {
		return err
	}
	if !u.Role.AtLeast(user.RoleOperator) {
		return ErrNotOperator
	}
	return nil
}
