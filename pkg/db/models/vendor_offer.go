package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/types"
)

// VendorOffer is one vendor's priced listing for one peptide under one tier.
// Exactly one pricing payload is populated, matching Tier; the unique index on
// (vendor_id, peptide_name, tier) makes it the upsert key for re-uploads.
type VendorOffer struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID           uuid.UUID                `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:idx_vendor_offers_key,priority:1"`
	PeptideName        string                   `gorm:"column:peptide_name;not null;uniqueIndex:idx_vendor_offers_key,priority:2"`
	Tier               enums.Tier               `gorm:"column:tier;type:pricing_tier;not null;uniqueIndex:idx_vendor_offers_key,priority:3"`
	ResearchPricing    *types.ResearchPricing   `gorm:"column:research_pricing;type:jsonb"`
	TelehealthPricing  *types.TelehealthPricing `gorm:"column:telehealth_pricing;type:jsonb"`
	BrandPricing       *types.BrandPricing      `gorm:"column:brand_pricing;type:jsonb"`
	VerificationStatus enums.VerificationStatus `gorm:"column:verification_status;type:verification_status;not null;default:'pending'"`
	UploadBatchID      *uuid.UUID               `gorm:"column:upload_batch_id;type:uuid"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// PayloadMatchesTier reports whether exactly the tier's payload is set and the
// other two are absent.
func (o VendorOffer) PayloadMatchesTier() bool {
	switch o.Tier {
	case enums.TierResearch:
		return o.ResearchPricing != nil && o.TelehealthPricing == nil && o.BrandPricing == nil
	case enums.TierTelehealth:
		return o.TelehealthPricing != nil && o.ResearchPricing == nil && o.BrandPricing == nil
	case enums.TierBrand:
		return o.BrandPricing != nil && o.ResearchPricing == nil && o.TelehealthPricing == nil
	default:
		return false
	}
}
