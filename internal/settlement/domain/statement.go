package settlement

import "time"

// ConceptKind distinguishes billed blocks from evaluation deductions.
type ConceptKind string

const (
	ConceptBlock      ConceptKind = "block"
	ConceptEvaluation ConceptKind = "evaluation"
)

// StatementStatusLive marks a statement with no recorded snapshot.
const StatementStatusLive = "live"

// Concept is one invoice line.
type Concept struct {
	Kind        ConceptKind `json:"kind"`
	Date        time.Time   `json:"date"`
	ClientID    string      `json:"client_id"`
	ClientName  string      `json:"client_name,omitempty"`
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
}

// InProgress reports completed sessions of a billable client that do not yet form a block.
type InProgress struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name,omitempty"`
	Completed  int    `json:"completed"`
	Needed     int    `json:"needed"`
}

// Totals are the money figures of a month, rounded to cents.
type Totals struct {
	Blocks              int     `json:"blocks"`
	Evaluations         int     `json:"evaluations"`
	BaseBlocks          float64 `json:"base_imponible"`
	EvaluationsDeducted float64 `json:"evaluations_deducted_amount"`
	ReducedBase         float64 `json:"reduced_base"`
	VAT                 float64 `json:"iva_amount"`
	Total               float64 `json:"total_amount"`
}

// sameMoney compares the money figures only.
func (t Totals) sameMoney(other Totals) bool {
	return t.BaseBlocks == other.BaseBlocks &&
		t.EvaluationsDeducted == other.EvaluationsDeducted &&
		t.VAT == other.VAT &&
		t.Total == other.Total
}

// Statement is the monthly view of a trainer. Totals shows the snapshot when one
// is recorded, Live always holds the fresh computation.
type Statement struct {
	TrainerID  string       `json:"trainer_id"`
	Month      string       `json:"month"`
	Status     string       `json:"status"`
	Concepts   []Concept    `json:"concepts"`
	InProgress []InProgress `json:"in_progress"`
	Totals     Totals       `json:"totals"`
	Live       Totals       `json:"live_totals"`
	Drift      bool         `json:"drift"`
	Snapshot   *Settlement  `json:"snapshot,omitempty"`
}

// Recorded reports whether a snapshot backs the displayed totals.
func (s Statement) Recorded() bool { return s.Snapshot != nil }
