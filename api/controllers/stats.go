package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/peptracker/peptracker-backend/api/responses"
	"github.com/peptracker/peptracker-backend/api/validators"
	statsvc "github.com/peptracker/peptracker-backend/internal/stats"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
)

// GetPeptideStats serves the pre-computed lowest/median aggregates,
// optionally narrowed by tier or peptide name.
func GetPeptideStats(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tier, err := validators.ParseQueryTier(r, "tier")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.GetStats(r.Context(), tier, strings.TrimSpace(r.URL.Query().Get("peptide")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// GetStatsForPeptide narrows the aggregates to the peptide in the path.
func GetStatsForPeptide(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		peptide := strings.TrimSpace(chi.URLParam(r, "peptide"))
		if peptide == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "peptide name is required"))
			return
		}
		tier, err := validators.ParseQueryTier(r, "tier")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.GetStats(r.Context(), tier, peptide)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
