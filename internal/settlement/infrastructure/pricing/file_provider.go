package pricing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	settlement "dogschool-admin/internal/settlement/domain"
)

// pricingFile mirrors the YAML document. Missing keys keep the defaults.
type pricingFile struct {
	BlockPriceVATInclusive *float64 `yaml:"block_price_vat_inclusive"`
	EvaluationDeduction    *float64 `yaml:"evaluation_deduction"`
	VATRate                *float64 `yaml:"vat_rate"`
	SessionsPerBlock       *int     `yaml:"sessions_per_block"`
}

// Load reads pricing from path. An empty path returns the defaults.
func Load(path string) (settlement.Pricing, error) {
	if path == "" {
		return settlement.DefaultPricing(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return settlement.Pricing{}, fmt.Errorf("pricing: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML pricing document over the defaults and validates it.
func Parse(data []byte) (settlement.Pricing, error) {
	p := settlement.DefaultPricing()
	var file pricingFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return settlement.Pricing{}, fmt.Errorf("pricing: decode: %w", err)
	}
	if file.BlockPriceVATInclusive != nil {
		p.BlockPriceVATInclusive = *file.BlockPriceVATInclusive
	}
	if file.EvaluationDeduction != nil {
		p.EvaluationDeduction = *file.EvaluationDeduction
	}
	if file.VATRate != nil {
		p.VATRate = *file.VATRate
	}
	if file.SessionsPerBlock != nil {
		p.SessionsPerBlock = *file.SessionsPerBlock
	}
	if err := p.Validate(); err != nil {
		return settlement.Pricing{}, err
	}
	return p, nil
}
