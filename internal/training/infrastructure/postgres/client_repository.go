package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	training "dogschool-admin/internal/training/domain"
)

const clientSelect = `
SELECT c.id, c.name, COALESCE(c.breed, ''), c.status, COALESCE(c.city_id, ''),
	(SELECT json_agg(json_build_object(
		'id', s.id, 'client_id', s.client_id, 'session_number', s.session_number,
		'date', s.date, 'completed', s.completed, 'comments', COALESCE(s.comments, ''))
		ORDER BY s.session_number)
	FROM sessions s WHERE s.client_id = c.id),
	(SELECT json_agg(json_build_object(
		'id', e.id, 'client_id', e.client_id, 'adiestrador_id', e.adiestrador_id,
		'result', e.result, 'created_at', e.created_at)
		ORDER BY e.created_at)
	FROM evaluations e WHERE e.client_id = c.id)
FROM clients c`

// ClientRepository reads clients with their sessions and evaluations embedded.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository constructs a repository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// GetClient returns nil when the client does not exist.
func (r *ClientRepository) GetClient(ctx context.Context, id string) (*training.Client, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("client repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, clientSelect+`
WHERE c.id = $1
LIMIT 1`, id)
	return scanClient(row)
}

// ListClientsEvaluatedBy lists clients with at least one evaluation by the trainer.
func (r *ClientRepository) ListClientsEvaluatedBy(ctx context.Context, trainerID string) ([]training.Client, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("client repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, clientSelect+`
WHERE EXISTS (SELECT 1 FROM evaluations ev WHERE ev.client_id = c.id AND ev.adiestrador_id = $1)
ORDER BY c.name ASC, c.id ASC`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []training.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		if client != nil {
			result = append(result, *client)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateClientStatus sets the client status.
func (r *ClientRepository) UpdateClientStatus(ctx context.Context, id, status string) error {
	if r == nil || r.db == nil {
		return errors.New("client repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE clients
SET status = $2, updated_at = NOW()
WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return training.ErrClientNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*training.Client, error) {
	var (
		client      training.Client
		sessionsRaw []byte
		evalsRaw    []byte
	)
	if err := row.Scan(&client.ID, &client.Name, &client.Breed, &client.Status, &client.CityID, &sessionsRaw, &evalsRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sessions, err := decodeEmbedded[training.Session](sessionsRaw)
	if err != nil {
		return nil, fmt.Errorf("client repo: decode sessions of %s: %w", client.ID, err)
	}
	evaluations, err := decodeEmbedded[training.Evaluation](evalsRaw)
	if err != nil {
		return nil, fmt.Errorf("client repo: decode evaluations of %s: %w", client.ID, err)
	}
	for i := range sessions {
		sessions[i].Date = sessions[i].Date.UTC()
	}
	for i := range evaluations {
		evaluations[i].CreatedAt = evaluations[i].CreatedAt.UTC()
	}
	client.Sessions = sessions
	client.Evaluations = evaluations
	return &client, nil
}
