package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"dogschool-admin/internal/observability/metrics"
	settlement "dogschool-admin/internal/settlement/domain"
)

// RosterReader supplies the trainer's evaluations and billable candidates.
type RosterReader interface {
	TrainerEvaluations(ctx context.Context, trainerID string) ([]settlement.EvaluationRecord, error)
	TrainerClients(ctx context.Context, trainerID string) ([]settlement.ClientRecord, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SettlementService previews, records and pays trainer settlements.
type SettlementService struct {
	roster   RosterReader
	repo     settlement.Repository
	calc     *settlement.Calculator
	clock    Clock
	location *time.Location
}

// Option configures the service.
type Option func(*SettlementService)

// WithClock overrides the clock.
func WithClock(clock Clock) Option {
	return func(s *SettlementService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the location months are evaluated in.
func WithLocation(loc *time.Location) Option {
	return func(s *SettlementService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewSettlementService constructs a service.
func NewSettlementService(roster RosterReader, repo settlement.Repository, calc *settlement.Calculator, opts ...Option) (*SettlementService, error) {
	if roster == nil {
		return nil, errors.New("settlement service: nil roster reader")
	}
	if repo == nil {
		return nil, errors.New("settlement service: nil repo")
	}
	if calc == nil {
		return nil, errors.New("settlement service: nil calculator")
	}
	s := &SettlementService{
		roster:   roster,
		repo:     repo,
		calc:     calc,
		clock:    systemClock{},
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Preview computes the statement of a trainer month. A recorded snapshot overrides
// the displayed totals. Any read failure aborts with a FetchError.
func (s *SettlementService) Preview(ctx context.Context, trainerID, month string) (*settlement.Statement, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSettlementPreview(result, time.Since(start))
	}()

	stmt, err := s.compute(ctx, trainerID, month)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if stmt.Drift {
		metrics.IncSettlementDrift()
	}
	return stmt, nil
}

// Record stores the live totals as a pending snapshot. Snapshots are never overwritten.
func (s *SettlementService) Record(ctx context.Context, trainerID, month string) (*settlement.Settlement, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSettlementRecord("record", result, time.Since(start))
	}()

	stmt, err := s.compute(ctx, trainerID, month)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if stmt.Recorded() {
		result = metrics.ResultError
		return nil, settlement.ErrSettlementExists
	}
	m, err := settlement.ParseMonth(stmt.Month, s.location)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	snap, err := settlement.NewSettlement(stmt.TrainerID, m, stmt.Live, s.clock.Now())
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.repo.Create(ctx, snap); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return snap, nil
}

// MarkPaid moves a recorded settlement to paid. Paying twice is a no-op.
func (s *SettlementService) MarkPaid(ctx context.Context, trainerID, month string) (*settlement.Settlement, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSettlementRecord("paid", result, time.Since(start))
	}()

	trainerID, m, err := s.parseQuery(trainerID, month)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	snap, err := s.repo.Find(ctx, trainerID, m.String())
	if err != nil {
		result = metrics.ResultError
		return nil, &settlement.FetchError{Source: "settlement", Err: err}
	}
	if snap == nil {
		result = metrics.ResultError
		return nil, settlement.ErrSettlementNotFound
	}
	if snap.Status == settlement.SettlementStatusPaid {
		return snap, nil
	}
	if err := snap.MarkPaid(s.clock.Now()); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := s.repo.Save(ctx, snap); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return snap, nil
}

// List returns the recorded settlements of a trainer, newest month first.
func (s *SettlementService) List(ctx context.Context, trainerID string) ([]settlement.Settlement, error) {
	trainerID = strings.TrimSpace(trainerID)
	if trainerID == "" {
		return nil, &settlement.ValidationError{Field: "trainer_id", Err: settlement.ErrEmptyTrainerID}
	}
	list, err := s.repo.ListByTrainer(ctx, trainerID)
	if err != nil {
		return nil, &settlement.FetchError{Source: "settlements", Err: err}
	}
	return list, nil
}

func (s *SettlementService) compute(ctx context.Context, trainerID, month string) (*settlement.Statement, error) {
	trainerID, m, err := s.parseQuery(trainerID, month)
	if err != nil {
		return nil, err
	}

	evaluations, err := s.roster.TrainerEvaluations(ctx, trainerID)
	if err != nil {
		return nil, &settlement.FetchError{Source: "evaluations", Err: err}
	}
	clients, err := s.roster.TrainerClients(ctx, trainerID)
	if err != nil {
		return nil, &settlement.FetchError{Source: "clients", Err: err}
	}
	snapshot, err := s.repo.Find(ctx, trainerID, m.String())
	if err != nil {
		return nil, &settlement.FetchError{Source: "settlement", Err: err}
	}

	return s.calc.Calculate(settlement.CalculationInput{
		TrainerID:   trainerID,
		Month:       m,
		Evaluations: evaluations,
		Clients:     clients,
		Snapshot:    snapshot,
	})
}

func (s *SettlementService) parseQuery(trainerID, month string) (string, settlement.Month, error) {
	trainerID = strings.TrimSpace(trainerID)
	if trainerID == "" {
		return "", settlement.Month{}, &settlement.ValidationError{Field: "trainer_id", Err: settlement.ErrEmptyTrainerID}
	}
	m, err := settlement.ParseMonth(month, s.location)
	if err != nil {
		return "", settlement.Month{}, err
	}
	return trainerID, m, nil
}
