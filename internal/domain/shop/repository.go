package shop

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

// Repository persists the money ledger, catalog and purchases. Ledger and
// purchase tables are append-only; Tx methods run inside the caller's
// transaction and never commit or roll back.
type Repository interface {
	InsertMoneyTxTx(ctx context.Context, tx *sqlx.Tx, m *MoneyTx) error
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]MoneyTx, error)
	ListTransactionsTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) ([]MoneyTx, error)

	GetItem(ctx context.Context, id uuid.UUID) (*Item, error)
	GetItemTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Item, error)
	CreateItem(ctx context.Context, item *Item) error
	SetItemActive(ctx context.Context, id uuid.UUID, active bool) (*Item, error)
	ListItems(ctx context.Context, activeOnly bool) ([]Item, error)

	InsertPurchaseTx(ctx context.Context, tx *sqlx.Tx, p *Purchase) error
	FindPurchaseByRequestIDTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, requestID string) (*Purchase, error)
	FindRecentPurchaseTx(ctx context.Context, tx *sqlx.Tx, userID, itemID uuid.UUID, price int, window time.Duration) (*Purchase, error)
	ListPurchases(ctx context.Context, userID uuid.UUID) ([]Purchase, error)
}

type repositoryImpl struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertMoneyTxTx(ctx context.Context, tx *sqlx.Tx, m *MoneyTx) error {
	query := `INSERT INTO money_transactions (id, user_id, amount, tx_type, reason, request_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`

	if err := tx.QueryRowContext(ctx, query, m.ID, m.UserID, m.Amount, m.TxType, m.Reason, m.RequestID).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("insert money transaction: %w", err)
	}
	return nil
}

func (r *repositoryImpl) ListTransactions(ctx context.Context, userID uuid.UUID) ([]MoneyTx, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	txs := make([]MoneyTx, 0)
	err := r.db.SelectContext(ctx2, &txs, `
		SELECT * FROM money_transactions
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list money transactions: %w", err)
	}
	return txs, nil
}

// ListTransactionsTx reads the ledger inside the purchase transaction so the
// affordability check sees a consistent snapshot.
func (r *repositoryImpl) ListTransactionsTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) ([]MoneyTx, error) {
	txs := make([]MoneyTx, 0)
	err := tx.SelectContext(ctx, &txs, `
		SELECT * FROM money_transactions
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list money transactions: %w", err)
	}
	return txs, nil
}

func (r *repositoryImpl) GetItem(ctx context.Context, id uuid.UUID) (*Item, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var item Item
	err := r.db.GetContext(ctx2, &item, `SELECT * FROM items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) GetItemTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Item, error) {
	var item Item
	err := tx.GetContext(ctx, &item, `SELECT * FROM items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) CreateItem(ctx context.Context, item *Item) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `INSERT INTO items (id, name, description, price, rarity, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`

	return r.db.QueryRowContext(ctx2, query,
		item.ID, item.Name, item.Description, item.Price, item.Rarity, item.IsActive).
		Scan(&item.CreatedAt)
}

func (r *repositoryImpl) SetItemActive(ctx context.Context, id uuid.UUID, active bool) (*Item, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var item Item
	err := r.db.GetContext(ctx2, &item, `
		UPDATE items SET is_active = $2 WHERE id = $1
		RETURNING *
	`, id, active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *repositoryImpl) ListItems(ctx context.Context, activeOnly bool) ([]Item, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	items := make([]Item, 0)
	if activeOnly {
		err := r.db.SelectContext(ctx2, &items, `SELECT * FROM items WHERE is_active ORDER BY price`)
		return items, err
	}
	err := r.db.SelectContext(ctx2, &items, `SELECT * FROM items ORDER BY price`)
	return items, err
}

func (r *repositoryImpl) InsertPurchaseTx(ctx context.Context, tx *sqlx.Tx, p *Purchase) error {
	query := `INSERT INTO purchases (id, user_id, item_id, price, request_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at`

	if err := tx.QueryRowContext(ctx, query, p.ID, p.UserID, p.ItemID, p.Price, p.RequestID).Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// FindPurchaseByRequestIDTx finds a prior purchase with the same request id.
// Returns (nil, nil) when no duplicate exists.
func (r *repositoryImpl) FindPurchaseByRequestIDTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, requestID string) (*Purchase, error) {
	var p Purchase
	err := tx.GetContext(ctx, &p, `
		SELECT * FROM purchases
		WHERE user_id = $1 AND request_id = $2
		ORDER BY created_at
		LIMIT 1
	`, userID, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup purchase by request id: %w", err)
	}
	return &p, nil
}

// FindRecentPurchaseTx finds a purchase of the same item at the same price
// within the dedup window. Fallback idempotency for clients that send no
// request id. Returns (nil, nil) when none exists.
func (r *repositoryImpl) FindRecentPurchaseTx(ctx context.Context, tx *sqlx.Tx, userID, itemID uuid.UUID, price int, window time.Duration) (*Purchase, error) {
	var p Purchase
	err := tx.GetContext(ctx, &p, `
		SELECT * FROM purchases
		WHERE user_id = $1 AND item_id = $2 AND price = $3 AND created_at > $4
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, itemID, price, time.Now().Add(-window))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup recent purchase: %w", err)
	}
	return &p, nil
}

func (r *repositoryImpl) ListPurchases(ctx context.Context, userID uuid.UUID) ([]Purchase, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	purchases := make([]Purchase, 0)
	err := r.db.SelectContext(ctx2, &purchases, `
		SELECT * FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}
