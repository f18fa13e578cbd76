package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dogschool-admin/internal/eventing"
)

const defaultOutboxTable = "event_outbox"

// OutboxStore persists envelopes in the event_outbox table.
type OutboxStore struct {
	db    *sql.DB
	table string
}

// OutboxOption configures the outbox store.
type OutboxOption func(*OutboxStore)

// WithOutboxTable overrides the table name.
func WithOutboxTable(table string) OutboxOption {
	return func(store *OutboxStore) {
		if table != "" {
			store.table = table
		}
	}
}

// NewOutboxStore constructs an outbox store.
func NewOutboxStore(db *sql.DB, opts ...OutboxOption) *OutboxStore {
	store := &OutboxStore{db: db, table: defaultOutboxTable}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Insert writes an envelope as a pending row. A repeated event id keeps the
// first row.
func (s *OutboxStore) Insert(ctx context.Context, env eventing.Envelope) (string, error) {
	if s == nil || s.db == nil {
		return "", errors.New("outbox store: nil db")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	id, event_id, event_type, subject_id, correlation_id,
	schema_version, payload, occurred_at, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
ON CONFLICT (event_id) DO NOTHING`, s.table)

	id := eventing.NewEventID()
	_, err := s.db.ExecContext(ctx, query,
		id,
		env.EventID,
		env.EventType,
		nullable(env.SubjectID),
		nullable(env.CorrelationID),
		env.SchemaVersion,
		[]byte(env.Payload),
		env.OccurredAt.UTC(),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("outbox store: insert %s: %w", env.EventType, err)
	}
	return id, nil
}

// ListPending returns pending rows, oldest first.
func (s *OutboxStore) ListPending(ctx context.Context, limit int) ([]eventing.OutboxRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("outbox store: nil db")
	}
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
SELECT id, event_id, event_type, COALESCE(subject_id, ''), COALESCE(correlation_id, ''),
	schema_version, payload, occurred_at
FROM %s
WHERE status = 'pending'
ORDER BY created_at ASC
LIMIT $1`, s.table)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []eventing.OutboxRecord
	for rows.Next() {
		var record eventing.OutboxRecord
		var payload []byte
		env := &record.Envelope
		if err := rows.Scan(&record.ID, &env.EventID, &env.EventType, &env.SubjectID, &env.CorrelationID,
			&env.SchemaVersion, &payload, &env.OccurredAt); err != nil {
			return nil, err
		}
		env.Payload = payload
		env.OccurredAt = env.OccurredAt.UTC()
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkSent flags a row as delivered.
func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return errors.New("outbox store: nil db")
	}
	query := fmt.Sprintf(`UPDATE %s SET status = 'sent', sent_at = $1 WHERE id = $2`, s.table)
	_, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	return err
}

func nullable(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
