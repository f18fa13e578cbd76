package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	settlement "dogschool-admin/internal/settlement/domain"
)

const (
	defaultSettlementTable = "trainer_settlements"

	uniqueViolation = "23505"
)

// SettlementRepository persists trainer settlements in Postgres.
type SettlementRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*SettlementRepository)

// WithTable overrides the default table.
func WithTable(table string) RepositoryOption {
	return func(repo *SettlementRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewSettlementRepository constructs a repository with defaults.
func NewSettlementRepository(db *sql.DB, opts ...RepositoryOption) *SettlementRepository {
	repo := &SettlementRepository{db: db, table: defaultSettlementTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Find returns nil when the month was not recorded.
func (r *SettlementRepository) Find(ctx context.Context, trainerID, month string) (*settlement.Settlement, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`
SELECT id, adiestrador_id, month, base_imponible, evaluations_deducted_amount,
	iva_amount, total_amount, status, created_at, updated_at, paid_at
FROM %s
WHERE adiestrador_id = $1 AND month = $2
LIMIT 1`, r.table), trainerID, month)
	return scanSettlement(row)
}

// Create inserts a snapshot; an existing (trainer, month) row yields ErrSettlementExists.
func (r *SettlementRepository) Create(ctx context.Context, s *settlement.Settlement) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if s == nil {
		return settlement.ErrNilSettlement
	}
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
INSERT INTO %s (
	id, adiestrador_id, month, base_imponible, evaluations_deducted_amount,
	iva_amount, total_amount, status, created_at, updated_at, paid_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`, r.table),
		s.ID, s.TrainerID, s.Month, s.BaseImponible, s.EvaluationsDeducted,
		s.IVA, s.Total, s.Status, s.CreatedAt, s.UpdatedAt, nullTime(s),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return settlement.ErrSettlementExists
		}
		return err
	}
	return nil
}

// Save updates status fields. Money figures are never rewritten.
func (r *SettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if s == nil {
		return settlement.ErrNilSettlement
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
UPDATE %s
SET status = $2, updated_at = $3, paid_at = $4
WHERE id = $1`, r.table), s.ID, s.Status, s.UpdatedAt, nullTime(s))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return settlement.ErrSettlementNotFound
	}
	return nil
}

// ListByTrainer lists snapshots, newest month first.
func (r *SettlementRepository) ListByTrainer(ctx context.Context, trainerID string) ([]settlement.Settlement, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, adiestrador_id, month, base_imponible, evaluations_deducted_amount,
	iva_amount, total_amount, status, created_at, updated_at, paid_at
FROM %s
WHERE adiestrador_id = $1
ORDER BY month DESC`, r.table), trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []settlement.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		if s != nil {
			result = append(result, *s)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row rowScanner) (*settlement.Settlement, error) {
	var (
		s      settlement.Settlement
		paidAt sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.TrainerID, &s.Month, &s.BaseImponible, &s.EvaluationsDeducted,
		&s.IVA, &s.Total, &s.Status, &s.CreatedAt, &s.UpdatedAt, &paidAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		s.PaidAt = &t
	}
	return &s, nil
}

func nullTime(s *settlement.Settlement) sql.NullTime {
	if s.PaidAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: s.PaidAt.UTC(), Valid: true}
}
