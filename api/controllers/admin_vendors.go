package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/api/responses"
	"github.com/peptracker/peptracker-backend/api/validators"
	vendorsvc "github.com/peptracker/peptracker-backend/internal/vendors"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
)

type createVendorRequest struct {
	Name        string   `json:"name" validate:"required"`
	WebsiteURL  string   `json:"website_url" validate:"omitempty,url"`
	Verified    bool     `json:"verified"`
	TierSupport []string `json:"tier_support" validate:"dive,oneof=research telehealth brand"`
}

type updateVendorRequest struct {
	Name        *string   `json:"name,omitempty"`
	WebsiteURL  *string   `json:"website_url,omitempty" validate:"omitempty,url"`
	Verified    *bool     `json:"verified,omitempty"`
	TierSupport *[]string `json:"tier_support,omitempty" validate:"omitempty,dive,oneof=research telehealth brand"`
}

func parseTierList(raw []string) ([]enums.Tier, error) {
	tiers := make([]enums.Tier, 0, len(raw))
	for _, value := range raw {
		tier, err := enums.ParseTier(strings.TrimSpace(value))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier")
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

// AdminCreateVendor adds a vendor to the directory.
func AdminCreateVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tiers, err := parseTierList(payload.TierSupport)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vendor, err := svc.CreateVendor(r.Context(), vendorsvc.CreateVendorInput{
			Name:        payload.Name,
			WebsiteURL:  payload.WebsiteURL,
			Verified:    payload.Verified,
			TierSupport: tiers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vendor)
	}
}

// AdminUpdateVendor edits a vendor directory entry.
func AdminUpdateVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "vendorID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id"))
			return
		}

		var payload updateVendorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vendorsvc.UpdateVendorInput{
			Name:       payload.Name,
			WebsiteURL: payload.WebsiteURL,
			Verified:   payload.Verified,
		}
		if payload.TierSupport != nil {
			tiers, err := parseTierList(*payload.TierSupport)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.TierSupport = &tiers
		}

		vendor, err := svc.UpdateVendor(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vendor)
	}
}

// AdminDeleteVendor removes a vendor from the directory.
func AdminDeleteVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "vendorID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id"))
			return
		}
		if err := svc.DeleteVendor(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": id.String()})
	}
}

// AdminGetVendor returns one vendor. Same shape as the public read, kept as
// its own handler so the admin surface stays stable if the payloads diverge.
func AdminGetVendor(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return GetVendor(svc, logg)
}

// AdminListVendors pages through the directory.
func AdminListVendors(svc vendorsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return ListVendors(svc, logg)
}
