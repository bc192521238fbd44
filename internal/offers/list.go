package offers

import (
	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
)

// OfferListFilters describe the filter knobs on the browse endpoint.
type OfferListFilters struct {
	Tier               *enums.Tier               `json:"tier,omitempty"`
	VendorID           *uuid.UUID                `json:"vendor_id,omitempty"`
	VerificationStatus *enums.VerificationStatus `json:"verification_status,omitempty"`
	UploadBatchID      *uuid.UUID                `json:"upload_batch_id,omitempty"`
	Query              string                    `json:"q,omitempty"`
}

// ListOffersInput captures pagination plus filters for offer browsing.
type ListOffersInput struct {
	Filters    OfferListFilters
	Pagination pagination.Params
	// PublicOnly restricts results to verified offers regardless of any
	// status filter. Set by unauthenticated read paths.
	PublicOnly bool
}

// OfferListResult is one page of offers plus the cursor for the next page.
type OfferListResult struct {
	Offers     []OfferDTO `json:"offers"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
