package training

import (
	"context"
	"errors"

	settlement "dogschool-admin/internal/settlement/domain"
	trainingdomain "dogschool-admin/internal/training/domain"
)

// RosterReader maps training clients and evaluations to billing records.
type RosterReader struct {
	clients     trainingdomain.ClientRepository
	evaluations trainingdomain.EvaluationRepository
}

// NewRosterReader constructs a reader.
func NewRosterReader(clients trainingdomain.ClientRepository, evaluations trainingdomain.EvaluationRepository) (*RosterReader, error) {
	if clients == nil {
		return nil, errors.New("roster reader: nil client repository")
	}
	if evaluations == nil {
		return nil, errors.New("roster reader: nil evaluation repository")
	}
	return &RosterReader{clients: clients, evaluations: evaluations}, nil
}

// TrainerEvaluations returns every evaluation the trainer performed.
func (r *RosterReader) TrainerEvaluations(ctx context.Context, trainerID string) ([]settlement.EvaluationRecord, error) {
	evals, err := r.evaluations.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	out := make([]settlement.EvaluationRecord, 0, len(evals))
	for _, eval := range evals {
		out = append(out, toEvaluationRecord(eval))
	}
	return out, nil
}

// TrainerClients returns clients the trainer evaluated, with sessions and evaluations.
func (r *RosterReader) TrainerClients(ctx context.Context, trainerID string) ([]settlement.ClientRecord, error) {
	clients, err := r.clients.ListClientsEvaluatedBy(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	out := make([]settlement.ClientRecord, 0, len(clients))
	for _, client := range clients {
		record := settlement.ClientRecord{
			ID:          client.ID,
			Name:        client.Name,
			Sessions:    make([]settlement.SessionRecord, 0, len(client.Sessions)),
			Evaluations: make([]settlement.EvaluationRecord, 0, len(client.Evaluations)),
		}
		for _, s := range client.Sessions {
			record.Sessions = append(record.Sessions, settlement.SessionRecord{
				Number:    s.SessionNumber,
				Date:      s.Date,
				Completed: s.Completed,
			})
		}
		for _, eval := range client.Evaluations {
			record.Evaluations = append(record.Evaluations, toEvaluationRecord(eval))
		}
		out = append(out, record)
	}
	return out, nil
}

func toEvaluationRecord(eval trainingdomain.Evaluation) settlement.EvaluationRecord {
	return settlement.EvaluationRecord{
		ID:        eval.ID,
		ClientID:  eval.ClientID,
		TrainerID: eval.TrainerID,
		Result:    eval.Result,
		CreatedAt: eval.CreatedAt,
	}
}
