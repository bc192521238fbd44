package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

// HeaderMap resolves a canonical field name to its column index in the
// uploaded file. Optional fields with no matching column are simply absent.
type HeaderMap map[string]int

// HeaderMappingError reports required fields that could not be matched to
// any column. It fails the whole batch before a single row is read.
type HeaderMappingError struct {
	Tier    enums.Tier
	Missing []string
}

func (e *HeaderMappingError) Error() string {
	return fmt.Sprintf("header mapping failed for tier %s: missing required columns %s",
		e.Tier, strings.Join(e.Missing, ", "))
}

// MapHeaders matches the raw header row against the tier's alias table.
// Matching is case and whitespace insensitive. When two columns resolve to
// the same field the first occurrence wins.
func MapHeaders(headers []string, tier enums.Tier) (HeaderMap, error) {
	lookup := aliasLookupForTier(tier)
	mapped := make(HeaderMap)
	for idx, raw := range headers {
		field, ok := lookup[normalizeHeader(raw)]
		if !ok {
			continue
		}
		if _, seen := mapped[field]; seen {
			continue
		}
		mapped[field] = idx
	}

	var missing []string
	for _, rule := range ruleSets[tier] {
		if !rule.Required {
			continue
		}
		if _, ok := mapped[rule.Field]; !ok {
			missing = append(missing, rule.Field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &HeaderMappingError{Tier: tier, Missing: missing}
	}
	return mapped, nil
}
