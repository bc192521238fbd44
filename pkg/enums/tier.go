package enums

import "fmt"

// Tier maps to the pricing_tier enum in Postgres. Tiers are mutually
// exclusive pricing models; no metric is ever compared across them.
type Tier string

const (
	TierResearch   Tier = "research"
	TierTelehealth Tier = "telehealth"
	TierBrand      Tier = "brand"
)

var validTiers = []Tier{
	TierResearch,
	TierTelehealth,
	TierBrand,
}

// String implements fmt.Stringer.
func (t Tier) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical pricing_tier enum.
func (t Tier) IsValid() bool {
	for _, candidate := range validTiers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTier converts raw input into Tier.
func ParseTier(value string) (Tier, error) {
	for _, candidate := range validTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tier %q", value)
}

// Tiers returns every canonical tier in declaration order.
func Tiers() []Tier {
	out := make([]Tier, len(validTiers))
	copy(out, validTiers)
	return out
}
