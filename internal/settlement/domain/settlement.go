package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SettlementStatusPending = "pending"
	SettlementStatusPaid    = "paid"
)

// Settlement is the recorded snapshot of one trainer month. Once stored it is
// authoritative over live recomputation.
type Settlement struct {
	ID                  string     `json:"id"`
	TrainerID           string     `json:"adiestrador_id"`
	Month               string     `json:"month"`
	BaseImponible       float64    `json:"base_imponible"`
	EvaluationsDeducted float64    `json:"evaluations_deducted_amount"`
	IVA                 float64    `json:"iva_amount"`
	Total               float64    `json:"total_amount"`
	Status              string     `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
}

// NewSettlement freezes live totals into a pending snapshot.
func NewSettlement(trainerID string, month Month, totals Totals, now time.Time) (*Settlement, error) {
	if trainerID == "" {
		return nil, ErrEmptyTrainerID
	}
	if month.IsZero() {
		return nil, ErrInvalidMonth
	}
	now = now.UTC()
	return &Settlement{
		ID:                  uuid.NewString(),
		TrainerID:           trainerID,
		Month:               month.String(),
		BaseImponible:       totals.BaseBlocks,
		EvaluationsDeducted: totals.EvaluationsDeducted,
		IVA:                 totals.VAT,
		Total:               totals.Total,
		Status:              SettlementStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// MarkPaid moves a pending settlement to paid. Paid settlements are left as is.
func (s *Settlement) MarkPaid(now time.Time) error {
	switch s.Status {
	case SettlementStatusPaid:
		return nil
	case SettlementStatusPending:
		now = now.UTC()
		s.Status = SettlementStatusPaid
		s.UpdatedAt = now
		s.PaidAt = &now
		return nil
	default:
		return ErrInvalidStatus
	}
}

// ReducedBase derives the base after evaluation deductions, floored at zero.
func (s Settlement) ReducedBase() float64 {
	reduced := decimal.NewFromFloat(s.BaseImponible).Sub(decimal.NewFromFloat(s.EvaluationsDeducted))
	if reduced.IsNegative() {
		return 0
	}
	return roundCents(reduced)
}

// Totals returns the stored figures in display form.
func (s Settlement) Totals() Totals {
	return Totals{
		BaseBlocks:          s.BaseImponible,
		EvaluationsDeducted: s.EvaluationsDeducted,
		ReducedBase:         s.ReducedBase(),
		VAT:                 s.IVA,
		Total:               s.Total,
	}
}

// Clone returns a deep copy.
func (s *Settlement) Clone() *Settlement {
	if s == nil {
		return nil
	}
	copy := *s
	if s.PaidAt != nil {
		paid := *s.PaidAt
		copy.PaidAt = &paid
	}
	return &copy
}
