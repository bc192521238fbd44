package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/api/responses"
	"github.com/peptracker/peptracker-backend/api/validators"
	offersvc "github.com/peptracker/peptracker-backend/internal/offers"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
)

// AdminListOffers serves the moderation queue with full status visibility.
func AdminListOffers(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := offerListInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOffers(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminVerifyOffer marks a pending offer verified.
func AdminVerifyOffer(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return decideOffer(svc, logg, enums.VerificationStatusVerified)
}

// AdminRejectOffer marks a pending offer rejected.
func AdminRejectOffer(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return decideOffer(svc, logg, enums.VerificationStatusRejected)
}

func decideOffer(svc offersvc.Service, logg *logger.Logger, status enums.VerificationStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "offerID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid offer id"))
			return
		}

		var offer *offersvc.OfferDTO
		if status == enums.VerificationStatusVerified {
			offer, err = svc.Verify(r.Context(), id)
		} else {
			offer, err = svc.Reject(r.Context(), id)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// AdminDeleteOffer removes one offer.
func AdminDeleteOffer(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "offerID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid offer id"))
			return
		}
		if err := svc.DeleteOffer(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": id.String()})
	}
}

type bulkOfferRequest struct {
	Tier          *string `json:"tier,omitempty" validate:"omitempty,oneof=research telehealth brand"`
	VendorID      *string `json:"vendor_id,omitempty" validate:"omitempty,uuid"`
	UploadBatchID *string `json:"upload_batch_id,omitempty" validate:"omitempty,uuid"`
	Query         string  `json:"q,omitempty"`
}

func (b bulkOfferRequest) toFilters() (offersvc.OfferListFilters, error) {
	filters := offersvc.OfferListFilters{Query: b.Query}
	if b.Tier != nil {
		tier, err := enums.ParseTier(*b.Tier)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier")
		}
		filters.Tier = &tier
	}
	if b.VendorID != nil {
		id, err := uuid.Parse(*b.VendorID)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id")
		}
		filters.VendorID = &id
	}
	if b.UploadBatchID != nil {
		id, err := uuid.Parse(*b.UploadBatchID)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload batch id")
		}
		filters.UploadBatchID = &id
	}
	return filters, nil
}

// AdminBulkVerifyOffers verifies every pending offer matching the filters.
func AdminBulkVerifyOffers(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return bulkDecide(svc, logg, enums.VerificationStatusVerified)
}

// AdminBulkRejectOffers rejects every pending offer matching the filters.
func AdminBulkRejectOffers(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return bulkDecide(svc, logg, enums.VerificationStatusRejected)
}

func bulkDecide(svc offersvc.Service, logg *logger.Logger, status enums.VerificationStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bulkOfferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := payload.toFilters()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkDecide(r.Context(), filters, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminBulkDeleteOffers removes every offer matching the filters.
func AdminBulkDeleteOffers(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bulkOfferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := payload.toFilters()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BulkDelete(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
