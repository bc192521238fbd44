package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

// PeptidePriceStat is a pre-computed per-peptide, per-tier aggregate refreshed
// by the stats job. Aggregates never mix tiers; each row summarizes exactly
// one tier's own metric.
type PeptidePriceStat struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PeptideName string          `gorm:"column:peptide_name;not null;uniqueIndex:idx_peptide_price_stats_key,priority:1"`
	Tier        enums.Tier      `gorm:"column:tier;type:pricing_tier;not null;uniqueIndex:idx_peptide_price_stats_key,priority:2"`
	OfferCount  int             `gorm:"column:offer_count;not null"`
	LowestUSD   decimal.Decimal `gorm:"column:lowest_usd;type:numeric(12,4);not null"`
	MedianUSD   decimal.Decimal `gorm:"column:median_usd;type:numeric(12,4);not null"`
	RefreshedAt time.Time       `gorm:"column:refreshed_at;not null"`
}
