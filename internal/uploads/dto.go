package uploads

import (
	"time"

	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/internal/ingest"
	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/types"
)

// UploadDTO is the wire shape for one batch record.
type UploadDTO struct {
	ID           uuid.UUID          `json:"id"`
	VendorID     uuid.UUID          `json:"vendor_id"`
	Tier         enums.Tier         `json:"tier"`
	RowCount     int                `json:"row_count"`
	SuccessCount int                `json:"success_count"`
	FailureCount int                `json:"failure_count"`
	Errors       types.RowErrorList `json:"errors"`
	Status       enums.UploadStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}

// UploadResultDTO is returned from a synchronous upload run.
type UploadResultDTO struct {
	UploadDTO
}

// UploadListResult is one page of batch records.
type UploadListResult struct {
	Uploads    []UploadDTO `json:"uploads"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toUploadDTO(upload *models.VendorPriceUpload) UploadDTO {
	errs := upload.Errors
	if errs == nil {
		errs = types.RowErrorList{}
	}
	return UploadDTO{
		ID:           upload.ID,
		VendorID:     upload.VendorID,
		Tier:         upload.Tier,
		RowCount:     upload.RowCount,
		SuccessCount: upload.SuccessCount,
		FailureCount: upload.FailureCount,
		Errors:       errs,
		Status:       upload.Status,
		CreatedAt:    upload.CreatedAt,
	}
}

// offerFromRow maps a validated row onto the offer model, populating exactly
// the payload column matching the tier.
func offerFromRow(vendorID, batchID uuid.UUID, row ingest.ValidRow) *models.VendorOffer {
	rec := row.Record
	offer := &models.VendorOffer{
		VendorID:           vendorID,
		PeptideName:        rec.String(ingest.FieldPeptideName),
		Tier:               rec.Tier,
		VerificationStatus: enums.VerificationStatusPending,
		UploadBatchID:      &batchID,
	}

	switch rec.Tier {
	case enums.TierResearch:
		offer.ResearchPricing = &types.ResearchPricing{
			PriceUSD:    derefNumber(rec.Number(ingest.FieldPriceUSD)),
			SizeMG:      derefNumber(rec.Number(ingest.FieldSizeMG)),
			ShippingUSD: rec.Number(ingest.FieldShippingUSD),
			PricePerMG:  row.Computed[ingest.ComputedPricePerMG],
		}
		if url := rec.String(ingest.FieldLabTestURL); url != "" {
			offer.ResearchPricing.LabTestURL = &url
		}
	case enums.TierTelehealth:
		offer.TelehealthPricing = &types.TelehealthPricing{
			MonthlyPriceUSD: derefNumber(rec.Number(ingest.FieldMonthlyPriceUSD)),
			MGPerVisit:      derefNumber(rec.Number(ingest.FieldMGPerVisit)),
			VisitCount:      derefNumber(rec.Number(ingest.FieldVisitCount)),
			IncludesConsult: rec.Bool(ingest.FieldIncludesConsult),
			TotalMG:         row.Computed[ingest.ComputedTotalMG],
		}
	case enums.TierBrand:
		offer.BrandPricing = &types.BrandPricing{
			PricePerDoseUSD: derefNumber(rec.Number(ingest.FieldPricePerDoseUSD)),
			DoseCount:       derefNumber(rec.Number(ingest.FieldDoseCount)),
			TotalPriceUSD:   row.Computed[ingest.ComputedTotalPriceUSD],
		}
	}
	return offer
}

func derefNumber(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
