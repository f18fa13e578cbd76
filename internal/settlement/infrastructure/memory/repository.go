package memory

import (
	"context"
	"sort"
	"sync"

	settlement "dogschool-admin/internal/settlement/domain"
)

// SettlementRepository is an in-memory repository for settlements.
type SettlementRepository struct {
	mu   sync.RWMutex
	data map[string]*settlement.Settlement
}

// NewSettlementRepository constructs a repository.
func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{data: make(map[string]*settlement.Settlement)}
}

func key(trainerID, month string) string { return trainerID + "|" + month }

// Find loads a trainer month.
func (r *SettlementRepository) Find(ctx context.Context, trainerID, month string) (*settlement.Settlement, error) {
	_ = ctx
	r.mu.RLock()
	s := r.data[key(trainerID, month)]
	r.mu.RUnlock()
	return s.Clone(), nil
}

// Create inserts a snapshot.
func (r *SettlementRepository) Create(ctx context.Context, s *settlement.Settlement) error {
	_ = ctx
	if s == nil {
		return settlement.ErrNilSettlement
	}
	k := key(s.TrainerID, s.Month)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[k]; ok {
		return settlement.ErrSettlementExists
	}
	r.data[k] = s.Clone()
	return nil
}

// Save overwrites an existing snapshot.
func (r *SettlementRepository) Save(ctx context.Context, s *settlement.Settlement) error {
	_ = ctx
	if s == nil {
		return settlement.ErrNilSettlement
	}
	k := key(s.TrainerID, s.Month)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[k]; !ok {
		return settlement.ErrSettlementNotFound
	}
	r.data[k] = s.Clone()
	return nil
}

// ListByTrainer lists snapshots, newest month first.
func (r *SettlementRepository) ListByTrainer(ctx context.Context, trainerID string) ([]settlement.Settlement, error) {
	_ = ctx
	r.mu.RLock()
	var result []settlement.Settlement
	for _, s := range r.data {
		if s.TrainerID == trainerID {
			result = append(result, *s.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].Month > result[j].Month })
	return result, nil
}
