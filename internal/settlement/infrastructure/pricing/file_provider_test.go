package pricing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	settlement "dogschool-admin/internal/settlement/domain"
)

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	p, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p != settlement.DefaultPricing() {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestParse_PartialOverride(t *testing.T) {
	p, err := Parse([]byte("block_price_vat_inclusive: 150\nvat_rate: 0.10\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.BlockPriceVATInclusive != 150 || p.VATRate != 0.10 {
		t.Fatalf("override not applied: %+v", p)
	}
	if p.EvaluationDeduction != settlement.DefaultEvaluationDeduction || p.SessionsPerBlock != settlement.DefaultSessionsPerBlock {
		t.Fatalf("defaults not kept: %+v", p)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	p, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p != settlement.DefaultPricing() {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("vat_rate: -0.2\n")); !errors.Is(err, settlement.ErrComputation) {
		t.Fatalf("expected ErrComputation, got %v", err)
	}
	if _, err := Parse([]byte("unknown_key: 1\n")); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	if err := os.WriteFile(path, []byte("sessions_per_block: 5\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.SessionsPerBlock != 5 {
		t.Fatalf("expected 5 sessions per block, got %d", p.SessionsPerBlock)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
