package settlement

import (
	"fmt"
	"math"
)

const (
	DefaultBlockPriceVATInclusive = 120.0
	DefaultEvaluationDeduction    = 20.0
	DefaultVATRate                = 0.21
	DefaultSessionsPerBlock       = 4
)

// Pricing holds the tariff used to bill trainers.
type Pricing struct {
	BlockPriceVATInclusive float64
	EvaluationDeduction    float64
	VATRate                float64
	SessionsPerBlock       int
}

// DefaultPricing returns the school tariff.
func DefaultPricing() Pricing {
	return Pricing{
		BlockPriceVATInclusive: DefaultBlockPriceVATInclusive,
		EvaluationDeduction:    DefaultEvaluationDeduction,
		VATRate:                DefaultVATRate,
		SessionsPerBlock:       DefaultSessionsPerBlock,
	}
}

// Validate rejects negative, NaN or infinite values.
func (p Pricing) Validate() error {
	values := map[string]float64{
		"block_price_vat_inclusive": p.BlockPriceVATInclusive,
		"evaluation_deduction":      p.EvaluationDeduction,
		"vat_rate":                  p.VATRate,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a finite non-negative number", ErrComputation, name)
		}
	}
	if p.SessionsPerBlock <= 0 {
		return fmt.Errorf("%w: sessions_per_block must be positive", ErrComputation)
	}
	return nil
}
