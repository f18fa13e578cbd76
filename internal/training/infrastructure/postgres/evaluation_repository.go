package postgres

import (
	"context"
	"database/sql"
	"errors"

	training "dogschool-admin/internal/training/domain"
)

// EvaluationRepository reads evaluations.
type EvaluationRepository struct {
	db *sql.DB
}

// NewEvaluationRepository constructs a repository.
func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// ListByTrainer lists a trainer's evaluations, oldest first.
func (r *EvaluationRepository) ListByTrainer(ctx context.Context, trainerID string) ([]training.Evaluation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("evaluation repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, client_id, adiestrador_id, result, created_at
FROM evaluations
WHERE adiestrador_id = $1
ORDER BY created_at ASC, id ASC`, trainerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []training.Evaluation
	for rows.Next() {
		var eval training.Evaluation
		if err := rows.Scan(&eval.ID, &eval.ClientID, &eval.TrainerID, &eval.Result, &eval.CreatedAt); err != nil {
			return nil, err
		}
		eval.CreatedAt = eval.CreatedAt.UTC()
		result = append(result, eval)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

