package training

import "context"

// ClientRepository loads clients together with their sessions and evaluations.
type ClientRepository interface {
	GetClient(ctx context.Context, id string) (*Client, error)
	// ListClientsEvaluatedBy returns clients holding at least one evaluation by the trainer.
	ListClientsEvaluatedBy(ctx context.Context, trainerID string) ([]Client, error)
	UpdateClientStatus(ctx context.Context, id, status string) error
}

// SessionRepository persists sessions.
type SessionRepository interface {
	GetSession(ctx context.Context, id string) (*Session, error)
	ListByClient(ctx context.Context, clientID string) ([]Session, error)
	CreateSession(ctx context.Context, session Session) error
	MarkSessionCompleted(ctx context.Context, id string) error
}

// EvaluationRepository reads evaluations.
type EvaluationRepository interface {
	ListByTrainer(ctx context.Context, trainerID string) ([]Evaluation, error)
}
