package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/peptracker/peptracker-backend/pkg/enums"
)

// Vendor is a master directory entry. Vendors are created and edited only
// through admin flows; TierSupport limits which tiers they may submit for.
type Vendor struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string         `gorm:"column:name;not null;unique"`
	WebsiteURL  string         `gorm:"column:website_url;not null"`
	Verified    bool           `gorm:"column:verified;not null;default:false"`
	TierSupport pq.StringArray `gorm:"column:tier_support;type:text[];not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// SupportsTier reports whether the vendor may submit uploads for the tier.
func (v Vendor) SupportsTier(tier enums.Tier) bool {
	for _, supported := range v.TierSupport {
		if supported == tier.String() {
			return true
		}
	}
	return false
}
