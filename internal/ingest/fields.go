package ingest

import (
	"strings"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

// FieldType declares how a raw CSV cell is coerced.
type FieldType string

const (
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeString  FieldType = "string"
)

// Canonical field names. Each tier's rule table references only its own
// fields plus the shared peptide_name.
const (
	FieldPeptideName = "peptide_name"

	FieldPriceUSD    = "price_usd"
	FieldSizeMG      = "size_mg"
	FieldShippingUSD = "shipping_usd"
	FieldLabTestURL  = "lab_test_url"

	FieldMonthlyPriceUSD = "monthly_price_usd"
	FieldMGPerVisit      = "mg_per_visit"
	FieldVisitCount      = "visit_count"
	FieldIncludesConsult = "includes_consult"

	FieldPricePerDoseUSD = "price_per_dose_usd"
	FieldDoseCount       = "dose_count"
)

// Computed metric names attached to valid rows.
const (
	ComputedPricePerMG    = "price_per_mg"
	ComputedTotalPriceUSD = "total_price_usd"
	ComputedTotalMG       = "total_mg"
)

// FieldRule is one entry in a tier's declarative rule table. Min is an
// exclusive lower bound ("must be > min"); Max is an inclusive upper bound.
// Bounds apply to number fields only.
type FieldRule struct {
	Field    string
	Required bool
	Type     FieldType
	Min      *float64
	Max      *float64
}

func bound(v float64) *float64 { return &v }

var ruleSets = map[enums.Tier][]FieldRule{
	enums.TierResearch: {
		{Field: FieldPeptideName, Required: true, Type: FieldTypeString},
		{Field: FieldPriceUSD, Required: true, Type: FieldTypeNumber, Min: bound(0)},
		{Field: FieldSizeMG, Required: true, Type: FieldTypeNumber, Min: bound(0), Max: bound(10000)},
		{Field: FieldShippingUSD, Required: false, Type: FieldTypeNumber},
		{Field: FieldLabTestURL, Required: false, Type: FieldTypeString},
	},
	enums.TierTelehealth: {
		{Field: FieldPeptideName, Required: true, Type: FieldTypeString},
		{Field: FieldMonthlyPriceUSD, Required: true, Type: FieldTypeNumber, Min: bound(0)},
		{Field: FieldMGPerVisit, Required: true, Type: FieldTypeNumber, Min: bound(0)},
		{Field: FieldVisitCount, Required: true, Type: FieldTypeNumber, Min: bound(0)},
		{Field: FieldIncludesConsult, Required: false, Type: FieldTypeBoolean},
	},
	enums.TierBrand: {
		{Field: FieldPeptideName, Required: true, Type: FieldTypeString},
		{Field: FieldPricePerDoseUSD, Required: true, Type: FieldTypeNumber, Min: bound(0)},
		{Field: FieldDoseCount, Required: true, Type: FieldTypeNumber, Min: bound(0)},
	},
}

// RulesForTier returns a copy of the tier's rule table.
func RulesForTier(tier enums.Tier) []FieldRule {
	rules := ruleSets[tier]
	out := make([]FieldRule, len(rules))
	copy(out, rules)
	return out
}

// fieldAliases maps each canonical field to the header spellings vendors
// actually use. Entries are stored in normalized form (see normalizeHeader).
var fieldAliases = map[string][]string{
	FieldPeptideName:     {"peptide name", "peptide", "product", "compound", "name"},
	FieldPriceUSD:        {"price usd", "price", "price (usd)", "usd price"},
	FieldSizeMG:          {"size mg", "size", "size (mg)", "mg", "vial size"},
	FieldShippingUSD:     {"shipping usd", "shipping", "shipping (usd)"},
	FieldLabTestURL:      {"lab test url", "lab test", "coa", "coa url"},
	FieldMonthlyPriceUSD: {"monthly price usd", "monthly price", "subscription price", "price per month"},
	FieldMGPerVisit:      {"mg per visit", "mg/visit"},
	FieldVisitCount:      {"visit count", "visits", "visits per plan"},
	FieldIncludesConsult: {"includes consult", "consult included", "consult"},
	FieldPricePerDoseUSD: {"price per dose usd", "price per dose", "dose price"},
	FieldDoseCount:       {"dose count", "doses", "doses per pack"},
}

// aliasLookupForTier builds normalized-header -> canonical-field for exactly
// the fields the tier declares, so one tier's spellings never leak into
// another's mapping.
func aliasLookupForTier(tier enums.Tier) map[string]string {
	lookup := make(map[string]string)
	for _, rule := range ruleSets[tier] {
		lookup[normalizeHeader(rule.Field)] = rule.Field
		for _, alias := range fieldAliases[rule.Field] {
			lookup[alias] = rule.Field
		}
	}
	return lookup
}

// normalizeHeader lowercases, trims, and folds underscores plus repeated
// whitespace so "  Price_USD " and "price usd" compare equal.
func normalizeHeader(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "_", " ")
	return strings.Join(strings.Fields(lowered), " ")
}
