package ingest

import (
	"fmt"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

// Validate applies the tier's bound checks and, only when every check
// passes, derives the tier's computed metric. Each tier derives exclusively
// from its own fields; no value ever crosses tiers.
func Validate(rec *Record) (map[string]float64, []FieldError) {
	errs := checkBounds(rec)
	if len(errs) > 0 {
		return nil, errs
	}

	computed := make(map[string]float64)
	switch rec.Tier {
	case enums.TierResearch:
		price := rec.numbers[FieldPriceUSD]
		size := rec.numbers[FieldSizeMG]
		computed[ComputedPricePerMG] = price / size
	case enums.TierTelehealth:
		computed[ComputedTotalMG] = rec.numbers[FieldMGPerVisit] * rec.numbers[FieldVisitCount]
	case enums.TierBrand:
		computed[ComputedTotalPriceUSD] = rec.numbers[FieldPricePerDoseUSD] * rec.numbers[FieldDoseCount]
	}
	return computed, nil
}

func checkBounds(rec *Record) []FieldError {
	var errs []FieldError
	for _, rule := range ruleSets[rec.Tier] {
		if rule.Type != FieldTypeNumber {
			continue
		}
		v, ok := rec.numbers[rule.Field]
		if !ok {
			continue
		}
		if rule.Min != nil && v <= *rule.Min {
			errs = append(errs, FieldError{
				Field:   rule.Field,
				Message: fmt.Sprintf("%s must be > %s", rule.Field, trimFloat(*rule.Min)),
			})
		}
		if rule.Max != nil && v > *rule.Max {
			errs = append(errs, FieldError{
				Field:   rule.Field,
				Message: fmt.Sprintf("%s must be <= %s", rule.Field, trimFloat(*rule.Max)),
			})
		}
	}
	return errs
}

func trimFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
