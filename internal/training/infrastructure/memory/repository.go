package memory

import (
	"context"
	"sort"
	"sync"

	training "dogschool-admin/internal/training/domain"
)

// Store is an in-memory client, session and evaluation store.
type Store struct {
	mu          sync.RWMutex
	clients     map[string]training.Client
	sessions    map[string]training.Session
	evaluations []training.Evaluation
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		clients:  make(map[string]training.Client),
		sessions: make(map[string]training.Session),
	}
}

// PutClient stores a client; embedded sessions and evaluations are ignored.
func (s *Store) PutClient(client training.Client) {
	client.Sessions = nil
	client.Evaluations = nil
	s.mu.Lock()
	s.clients[client.ID] = client
	s.mu.Unlock()
}

// PutEvaluation appends an evaluation.
func (s *Store) PutEvaluation(eval training.Evaluation) {
	s.mu.Lock()
	s.evaluations = append(s.evaluations, eval)
	s.mu.Unlock()
}

// GetClient returns nil when the client does not exist.
func (s *Store) GetClient(ctx context.Context, id string) (*training.Client, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[id]
	if !ok {
		return nil, nil
	}
	out := s.assembleLocked(client)
	return &out, nil
}

// ListClientsEvaluatedBy lists clients with at least one evaluation by the trainer.
func (s *Store) ListClientsEvaluatedBy(ctx context.Context, trainerID string) ([]training.Client, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var result []training.Client
	for _, eval := range s.evaluations {
		if eval.TrainerID != trainerID {
			continue
		}
		if _, ok := seen[eval.ClientID]; ok {
			continue
		}
		client, ok := s.clients[eval.ClientID]
		if !ok {
			continue
		}
		seen[eval.ClientID] = struct{}{}
		result = append(result, s.assembleLocked(client))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// UpdateClientStatus sets the client status.
func (s *Store) UpdateClientStatus(ctx context.Context, id, status string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[id]
	if !ok {
		return training.ErrClientNotFound
	}
	client.Status = status
	s.clients[id] = client
	return nil
}

// GetSession returns nil when the session does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*training.Session, error) {
	_ = ctx
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// ListByClient lists sessions ordered by number.
func (s *Store) ListByClient(ctx context.Context, clientID string) ([]training.Session, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionsOfLocked(clientID), nil
}

// CreateSession inserts a session. A number the client already uses yields
// ErrSessionNumberTaken.
func (s *Store) CreateSession(ctx context.Context, session training.Session) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.sessions {
		if existing.ClientID == session.ClientID && existing.SessionNumber == session.SessionNumber {
			return training.ErrSessionNumberTaken
		}
	}
	s.sessions[session.ID] = session
	return nil
}

// MarkSessionCompleted flips the completed flag.
func (s *Store) MarkSessionCompleted(ctx context.Context, id string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return training.ErrSessionNotFound
	}
	session.Completed = true
	s.sessions[id] = session
	return nil
}

// ListByTrainer lists a trainer's evaluations, oldest first.
func (s *Store) ListByTrainer(ctx context.Context, trainerID string) ([]training.Evaluation, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []training.Evaluation
	for _, eval := range s.evaluations {
		if eval.TrainerID == trainerID {
			result = append(result, eval)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) assembleLocked(client training.Client) training.Client {
	client.Sessions = s.sessionsOfLocked(client.ID)
	var evals []training.Evaluation
	for _, eval := range s.evaluations {
		if eval.ClientID == client.ID {
			evals = append(evals, eval)
		}
	}
	client.Evaluations = evals
	return client
}

func (s *Store) sessionsOfLocked(clientID string) []training.Session {
	var result []training.Session
	for _, session := range s.sessions {
		if session.ClientID == clientID {
			result = append(result, session)
		}
	}
	training.SortByNumber(result)
	return result
}

var (
	_ training.ClientRepository     = (*Store)(nil)
	_ training.SessionRepository    = (*Store)(nil)
	_ training.EvaluationRepository = (*Store)(nil)
)
