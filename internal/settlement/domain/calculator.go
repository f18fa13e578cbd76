package settlement

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// CalculationInput is everything needed to bill one trainer month.
type CalculationInput struct {
	TrainerID   string
	Month       Month
	Evaluations []EvaluationRecord
	Clients     []ClientRecord
	Snapshot    *Settlement
}

// Calculator computes trainer statements.
type Calculator struct {
	pricing Pricing
}

// NewCalculator validates pricing and constructs a calculator.
func NewCalculator(pricing Pricing) (*Calculator, error) {
	if err := pricing.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{pricing: pricing}, nil
}

// Calculate builds the statement. It performs no I/O.
func (c *Calculator) Calculate(in CalculationInput) (*Statement, error) {
	if in.TrainerID == "" {
		return nil, &ValidationError{Field: "trainer_id", Err: ErrEmptyTrainerID}
	}
	if in.Month.IsZero() {
		return nil, &ValidationError{Field: "month", Err: ErrInvalidMonth}
	}

	var monthEvals []EvaluationRecord
	for _, eval := range in.Evaluations {
		if eval.TrainerID == in.TrainerID && in.Month.Contains(eval.CreatedAt) {
			monthEvals = append(monthEvals, eval)
		}
	}

	size := c.pricing.SessionsPerBlock
	var (
		concepts   []Concept
		inProgress []InProgress
		numBlocks  int
	)
	for _, client := range in.Clients {
		if !client.BillableTo(in.TrainerID) {
			continue
		}
		blocks, pending := PartitionBlocks(client.Sessions, size)
		for i, block := range blocks {
			last := block[len(block)-1]
			if !in.Month.Contains(last.Date) {
				continue
			}
			numBlocks++
			concepts = append(concepts, Concept{
				Kind:        ConceptBlock,
				Date:        last.Date,
				ClientID:    client.ID,
				ClientName:  client.Name,
				Description: fmt.Sprintf("Block %d (sessions %d-%d)", i+1, block[0].Number, last.Number),
				Amount:      roundCents(decimal.NewFromFloat(c.pricing.BlockPriceVATInclusive)),
			})
		}
		if len(pending) > 0 {
			inProgress = append(inProgress, InProgress{
				ClientID:   client.ID,
				ClientName: client.Name,
				Completed:  len(pending),
				Needed:     size,
			})
		}
	}

	names := make(map[string]string, len(in.Clients))
	for _, client := range in.Clients {
		names[client.ID] = client.Name
	}
	deduction := roundCents(decimal.NewFromFloat(c.pricing.EvaluationDeduction))
	for _, eval := range monthEvals {
		concepts = append(concepts, Concept{
			Kind:        ConceptEvaluation,
			Date:        eval.CreatedAt,
			ClientID:    eval.ClientID,
			ClientName:  names[eval.ClientID],
			Description: "Evaluation deduction",
			Amount:      -deduction,
		})
	}

	sort.SliceStable(concepts, func(i, j int) bool {
		return concepts[i].Date.After(concepts[j].Date)
	})

	live := c.totals(numBlocks, len(monthEvals))
	stmt := &Statement{
		TrainerID:  in.TrainerID,
		Month:      in.Month.String(),
		Status:     StatementStatusLive,
		Concepts:   concepts,
		InProgress: inProgress,
		Totals:     live,
		Live:       live,
	}
	if in.Snapshot != nil {
		snap := in.Snapshot.Clone()
		displayed := snap.Totals()
		displayed.Blocks = live.Blocks
		displayed.Evaluations = live.Evaluations
		stmt.Totals = displayed
		stmt.Status = snap.Status
		stmt.Snapshot = snap
		stmt.Drift = !live.sameMoney(displayed)
	}
	return stmt, nil
}

func (c *Calculator) totals(numBlocks, numEvals int) Totals {
	price := decimal.NewFromFloat(c.pricing.BlockPriceVATInclusive)
	vat := decimal.NewFromFloat(c.pricing.VATRate)
	deduction := decimal.NewFromFloat(c.pricing.EvaluationDeduction)

	baseBlocks := decimal.NewFromInt(int64(numBlocks)).Mul(price).Div(decimal.NewFromInt(1).Add(vat))
	deducted := decimal.NewFromInt(int64(numEvals)).Mul(deduction)
	reduced := baseBlocks.Sub(deducted)
	if reduced.IsNegative() {
		reduced = decimal.Zero
	}
	iva := reduced.Mul(vat)
	total := reduced.Add(iva)

	return Totals{
		Blocks:              numBlocks,
		Evaluations:         numEvals,
		BaseBlocks:          roundCents(baseBlocks),
		EvaluationsDeducted: roundCents(deducted),
		ReducedBase:         roundCents(reduced),
		VAT:                 roundCents(iva),
		Total:               roundCents(total),
	}
}

// roundCents rounds half away from zero to two decimals.
func roundCents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
