package shop

import (
	"time"

	"github.com/google/uuid"
)

// TxType defines supported money transaction types.
type TxType string

const (
	TxTypeEarned TxType = "earned"
	TxTypeSpent  TxType = "spent"
	TxTypeRefund TxType = "refund"
	TxTypeGrant  TxType = "grant"
)

// MoneyTx is one immutable money ledger row. Amounts are stored positive;
// the type decides the sign during balance replay.
type MoneyTx struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Amount    int       `db:"amount" json:"amount"`
	TxType    TxType    `db:"tx_type" json:"tx_type"`
	Reason    string    `db:"reason" json:"reason"`
	RequestID *string   `db:"request_id" json:"request_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReplayBalance derives a spendable balance from the full transaction log.
// EARNED, REFUND and GRANT add; SPENT subtracts. No floor at zero: a
// negative result signals inconsistent history, it is not corrected here.
func ReplayBalance(txs []MoneyTx) int {
	balance := 0
	for _, t := range txs {
		switch t.TxType {
		case TxTypeEarned, TxTypeRefund, TxTypeGrant:
			balance += t.Amount
		case TxTypeSpent:
			balance -= t.Amount
		}
	}
	return balance
}

// Item is a shop catalog entry.
type Item struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       int       `db:"price" json:"price"`
	Rarity      string    `db:"rarity" json:"rarity"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Purchase links a user to an item with the price copied at purchase time,
// so later catalog price changes never alter history.
type Purchase struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	ItemID    uuid.UUID `db:"item_id" json:"item_id"`
	Price     int       `db:"price" json:"price"`
	RequestID *string   `db:"request_id" json:"request_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
