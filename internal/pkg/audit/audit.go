package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level classifies an audit entry.
type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Entry is one structured audit record. Every mutating domain operation
// appends one as a side effect; payout remainders are appended at warn level.
type Entry struct {
	Level     Level
	Message   string
	UserID    *uuid.UUID
	RequestID string
	Metadata  map[string]interface{}
}

// Sink appends audit records. The domain services depend only on this
// interface, not on a particular log transport.
type Sink interface {
	Append(ctx context.Context, e Entry) error
	AppendTx(ctx context.Context, tx *sqlx.Tx, e Entry) error
}

// DBSink persists audit records to the audit_logs table and mirrors them
// to the structured logger.
type DBSink struct {
	db *sqlx.DB
}

func NewDBSink(db *sqlx.DB) *DBSink {
	return &DBSink{db: db}
}

const queryTimeout = 3 * time.Second

// Append writes an audit record using its own short-lived statement.
func (s *DBSink) Append(ctx context.Context, e Entry) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	meta, err := marshalMetadata(e.Metadata)
	if err != nil {
		return err
	}

	mirror(e)

	_, err = s.db.ExecContext(ctx2, insertQuery, string(defaultLevel(e.Level)), e.Message, e.UserID, nullable(e.RequestID), meta)
	if err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	return nil
}

// AppendTx writes an audit record within the caller's transaction, so the
// record commits or rolls back together with the domain writes.
func (s *DBSink) AppendTx(ctx context.Context, tx *sqlx.Tx, e Entry) error {
	meta, err := marshalMetadata(e.Metadata)
	if err != nil {
		return err
	}

	mirror(e)

	_, err = tx.ExecContext(ctx, insertQuery, string(defaultLevel(e.Level)), e.Message, e.UserID, nullable(e.RequestID), meta)
	if err != nil {
		return fmt.Errorf("audit append: %w", err)
	}
	return nil
}

const insertQuery = `
	INSERT INTO audit_logs (id, level, message, user_id, request_id, metadata)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)`

func defaultLevel(l Level) Level {
	if l == "" {
		return LevelInfo
	}
	return l
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func marshalMetadata(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("audit metadata: %w", err)
	}
	return data, nil
}

func mirror(e Entry) {
	var ev *zerolog.Event
	if defaultLevel(e.Level) == LevelWarn {
		ev = log.Warn()
	} else {
		ev = log.Info()
	}
	if e.UserID != nil {
		ev = ev.Str("user_id", e.UserID.String())
	}
	if e.RequestID != "" {
		ev = ev.Str("request_id", e.RequestID)
	}
	if e.Metadata != nil {
		ev = ev.Interface("metadata", e.Metadata)
	}
	ev.Msg(e.Message)
}
