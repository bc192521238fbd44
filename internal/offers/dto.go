package offers

import (
	"time"

	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/types"
)

// OfferDTO is the wire shape for a vendor offer. The pricing payload renders
// under the key matching the tier name; the other two keys are always absent.
type OfferDTO struct {
	ID                 uuid.UUID                `json:"id"`
	VendorID           uuid.UUID                `json:"vendor_id"`
	PeptideName        string                   `json:"peptide_name"`
	Tier               enums.Tier               `json:"tier"`
	Research           *types.ResearchPricing   `json:"research,omitempty"`
	Telehealth         *types.TelehealthPricing `json:"telehealth,omitempty"`
	Brand              *types.BrandPricing      `json:"brand,omitempty"`
	VerificationStatus enums.VerificationStatus `json:"verification_status"`
	UploadBatchID      *uuid.UUID               `json:"upload_batch_id,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

func toOfferDTO(offer *models.VendorOffer) *OfferDTO {
	return &OfferDTO{
		ID:                 offer.ID,
		VendorID:           offer.VendorID,
		PeptideName:        offer.PeptideName,
		Tier:               offer.Tier,
		Research:           offer.ResearchPricing,
		Telehealth:         offer.TelehealthPricing,
		Brand:              offer.BrandPricing,
		VerificationStatus: offer.VerificationStatus,
		UploadBatchID:      offer.UploadBatchID,
		CreatedAt:          offer.CreatedAt,
		UpdatedAt:          offer.UpdatedAt,
	}
}

func toOfferDTOs(rows []models.VendorOffer) []OfferDTO {
	out := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toOfferDTO(&rows[i]))
	}
	return out
}
