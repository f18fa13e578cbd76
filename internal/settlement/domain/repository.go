package settlement

import "context"

// Repository persists recorded settlements.
type Repository interface {
	Find(ctx context.Context, trainerID, month string) (*Settlement, error)
	Create(ctx context.Context, settlement *Settlement) error
	Save(ctx context.Context, settlement *Settlement) error
	ListByTrainer(ctx context.Context, trainerID string) ([]Settlement, error)
}
