package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	training "dogschool-admin/internal/training/domain"
)

// SessionRepository persists sessions.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository constructs a repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// GetSession returns nil when the session does not exist.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*training.Session, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("session repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, client_id, session_number, date, completed, COALESCE(comments, '')
FROM sessions
WHERE id = $1
LIMIT 1`, id)
	return scanSession(row)
}

// ListByClient lists sessions ordered by number.
func (r *SessionRepository) ListByClient(ctx context.Context, clientID string) ([]training.Session, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("session repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, client_id, session_number, date, completed, COALESCE(comments, '')
FROM sessions
WHERE client_id = $1
ORDER BY session_number ASC, date ASC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []training.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		if session != nil {
			result = append(result, *session)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateSession inserts a session. A number the client already uses yields
// ErrSessionNumberTaken.
func (r *SessionRepository) CreateSession(ctx context.Context, session training.Session) error {
	if r == nil || r.db == nil {
		return errors.New("session repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, client_id, session_number, date, completed, comments)
VALUES ($1,$2,$3,$4,$5,$6)`,
		session.ID, session.ClientID, session.SessionNumber, session.Date.UTC(), session.Completed, nullString(session.Comments))
	return mapInsertError(err)
}

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return training.ErrSessionNumberTaken
	}
	return err
}

// MarkSessionCompleted flips the completed flag.
func (r *SessionRepository) MarkSessionCompleted(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("session repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET completed = TRUE
WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return training.ErrSessionNotFound
	}
	return nil
}

func scanSession(row rowScanner) (*training.Session, error) {
	var session training.Session
	if err := row.Scan(&session.ID, &session.ClientID, &session.SessionNumber, &session.Date, &session.Completed, &session.Comments); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	session.Date = session.Date.UTC()
	return &session, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
