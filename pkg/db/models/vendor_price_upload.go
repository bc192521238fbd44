package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/types"
)

// VendorPriceUpload is one CSV submission batch. It is immutable after
// creation except for Status.
type VendorPriceUpload struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID     uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null;index"`
	Tier         enums.Tier         `gorm:"column:tier;type:pricing_tier;not null"`
	RowCount     int                `gorm:"column:row_count;not null"`
	SuccessCount int                `gorm:"column:success_count;not null"`
	FailureCount int                `gorm:"column:failure_count;not null"`
	Errors       types.RowErrorList `gorm:"column:errors;type:jsonb;not null"`
	Status       enums.UploadStatus `gorm:"column:status;type:upload_status;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}
