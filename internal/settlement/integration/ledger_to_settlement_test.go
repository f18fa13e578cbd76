package integration_test

import (
	"context"
	"testing"
	"time"

	settlementadapters "dogschool-admin/internal/settlement/adapters/training"
	settlementapp "dogschool-admin/internal/settlement/application"
	settlement "dogschool-admin/internal/settlement/domain"
	settlementmemory "dogschool-admin/internal/settlement/infrastructure/memory"
	ledgerapp "dogschool-admin/internal/training/application"
	training "dogschool-admin/internal/training/domain"
	trainingmemory "dogschool-admin/internal/training/infrastructure/memory"
)

func TestLedgerToSettlement_InMemory(t *testing.T) {
	ctx := context.Background()
	store := trainingmemory.NewStore()
	store.PutClient(training.Client{ID: "c-1", Name: "Luna", Status: training.ClientStatusEvaluated})
	store.PutClient(training.Client{ID: "c-2", Name: "Rocky", Status: training.ClientStatusEvaluated})
	store.PutEvaluation(training.Evaluation{ID: "e-1", ClientID: "c-1", TrainerID: "t-1", Result: training.EvaluationApproved, CreatedAt: time.Date(2024, time.February, 20, 9, 0, 0, 0, time.UTC)})
	// approved by another trainer only: never billable to t-1.
	store.PutEvaluation(training.Evaluation{ID: "e-2", ClientID: "c-2", TrainerID: "t-2", Result: training.EvaluationApproved, CreatedAt: time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC)})
	store.PutEvaluation(training.Evaluation{ID: "e-3", ClientID: "c-2", TrainerID: "t-1", Result: training.EvaluationPending, CreatedAt: time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)})

	ledger := newLedger(t, store)
	for i, date := range []string{"2024-03-01", "2024-03-05", "2024-03-08", "2024-03-12", "2024-03-15"} {
		session, err := ledger.ScheduleSession(ctx, ledgerapp.ScheduleSessionInput{ClientID: "c-1", Date: date})
		if err != nil {
			t.Fatalf("schedule %d: %v", i+1, err)
		}
		if _, err := ledger.MarkCompleted(ctx, session.ID); err != nil {
			t.Fatalf("complete %d: %v", i+1, err)
		}
	}
	for i := 0; i < 4; i++ {
		session, err := ledger.ScheduleSession(ctx, ledgerapp.ScheduleSessionInput{ClientID: "c-2", Date: "2024-03-20"})
		if err != nil {
			t.Fatalf("schedule c-2: %v", err)
		}
		if _, err := ledger.MarkCompleted(ctx, session.ID); err != nil {
			t.Fatalf("complete c-2: %v", err)
		}
	}

	roster, err := settlementadapters.NewRosterReader(store, store)
	if err != nil {
		t.Fatalf("new roster reader: %v", err)
	}
	calc, err := settlement.NewCalculator(settlement.DefaultPricing())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	svc, err := settlementapp.NewSettlementService(roster, settlementmemory.NewSettlementRepository(), calc)
	if err != nil {
		t.Fatalf("new settlement service: %v", err)
	}

	stmt, err := svc.Preview(ctx, "t-1", "2024-03")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	// c-1: one block closed on 03-12, one session pending. c-2 is not billable.
	// e-3 is a March evaluation by t-1 and is deducted.
	want := settlement.Totals{Blocks: 1, Evaluations: 1, BaseBlocks: 99.17, EvaluationsDeducted: 20, ReducedBase: 79.17, VAT: 16.63, Total: 95.80}
	if stmt.Totals != want {
		t.Fatalf("totals mismatch: got %+v want %+v", stmt.Totals, want)
	}
	if len(stmt.InProgress) != 1 || stmt.InProgress[0].ClientID != "c-1" || stmt.InProgress[0].Completed != 1 {
		t.Fatalf("unexpected in-progress %+v", stmt.InProgress)
	}
	if len(stmt.Concepts) != 2 || stmt.Concepts[0].Kind != settlement.ConceptBlock {
		t.Fatalf("unexpected concepts %+v", stmt.Concepts)
	}
}

func newLedger(t *testing.T, store *trainingmemory.Store) *ledgerapp.LedgerService {
	t.Helper()
	svc, err := ledgerapp.NewLedgerService(store, store)
	if err != nil {
		t.Fatalf("new ledger service: %v", err)
	}
	return svc
}
