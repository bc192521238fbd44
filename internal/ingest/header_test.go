package ingest

import (
	"errors"
	"testing"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

func TestMapHeadersNormalizesAliases(t *testing.T) {
	headers := []string{" Peptide Name ", " Price (USD) ", "SIZE_MG", "Shipping"}
	mapped, err := MapHeaders(headers, enums.TierResearch)
	if err != nil {
		t.Fatalf("MapHeaders: %v", err)
	}

	want := map[string]int{
		FieldPeptideName: 0,
		FieldPriceUSD:    1,
		FieldSizeMG:      2,
		FieldShippingUSD: 3,
	}
	for field, idx := range want {
		got, ok := mapped[field]
		if !ok {
			t.Fatalf("field %s not mapped", field)
		}
		if got != idx {
			t.Errorf("field %s mapped to column %d, want %d", field, got, idx)
		}
	}
}

func TestMapHeadersFirstDuplicateWins(t *testing.T) {
	mapped, err := MapHeaders([]string{"peptide", "price", "Price (USD)", "size"}, enums.TierResearch)
	if err != nil {
		t.Fatalf("MapHeaders: %v", err)
	}
	if mapped[FieldPriceUSD] != 1 {
		t.Errorf("price_usd mapped to column %d, want 1", mapped[FieldPriceUSD])
	}
}

func TestMapHeadersMissingRequiredColumn(t *testing.T) {
	_, err := MapHeaders([]string{"peptide", "size_mg"}, enums.TierResearch)
	if err == nil {
		t.Fatal("expected mapping error")
	}
	var hmErr *HeaderMappingError
	if !errors.As(err, &hmErr) {
		t.Fatalf("expected HeaderMappingError, got %T", err)
	}
	if len(hmErr.Missing) != 1 || hmErr.Missing[0] != FieldPriceUSD {
		t.Errorf("missing = %v, want [price_usd]", hmErr.Missing)
	}
}

func TestMapHeadersTierAliasesDoNotLeak(t *testing.T) {
	// dose_count belongs to the brand tier and must not map for research.
	mapped, err := MapHeaders([]string{"peptide", "price", "size", "dose count"}, enums.TierResearch)
	if err != nil {
		t.Fatalf("MapHeaders: %v", err)
	}
	if _, ok := mapped[FieldDoseCount]; ok {
		t.Error("brand field dose_count mapped under research tier")
	}
}
