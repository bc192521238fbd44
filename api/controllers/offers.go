package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/api/responses"
	"github.com/peptracker/peptracker-backend/api/validators"
	offersvc "github.com/peptracker/peptracker-backend/internal/offers"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
)

// ListPublicOffers serves the open price comparison feed. Only verified
// offers are visible here.
func ListPublicOffers(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := offerListInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.PublicOnly = true

		result, err := svc.ListOffers(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListPeptideOffers serves the per-peptide compare view: verified offers for
// the named peptide, cheapest first within each tier. An optional tier query
// narrows the result to one pricing model.
func ListPeptideOffers(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		peptide := strings.TrimSpace(chi.URLParam(r, "peptide"))
		tier, err := validators.ParseQueryTier(r, "tier")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offers, err := svc.ListPeptideOffers(r.Context(), peptide, tier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers)
	}
}

// GetOffer returns one offer by id.
func GetOffer(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "offerID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid offer id"))
			return
		}
		offer, err := svc.GetOffer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

func offerListInputFromQuery(r *http.Request) (*offersvc.ListOffersInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	tier, err := validators.ParseQueryTier(r, "tier")
	if err != nil {
		return nil, err
	}
	vendorID, err := validators.ParseQueryUUID(r, "vendor_id")
	if err != nil {
		return nil, err
	}
	status, err := validators.ParseQueryVerificationStatus(r, "status")
	if err != nil {
		return nil, err
	}
	batchID, err := validators.ParseQueryUUID(r, "upload_batch_id")
	if err != nil {
		return nil, err
	}

	return &offersvc.ListOffersInput{
		Filters: offersvc.OfferListFilters{
			Tier:               tier,
			VendorID:           vendorID,
			VerificationStatus: status,
			UploadBatchID:      batchID,
			Query:              strings.TrimSpace(r.URL.Query().Get("q")),
		},
		Pagination: pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		},
	}, nil
}
