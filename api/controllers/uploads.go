package controllers

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/api/middleware"
	"github.com/peptracker/peptracker-backend/api/responses"
	"github.com/peptracker/peptracker-backend/api/validators"
	uploadsvc "github.com/peptracker/peptracker-backend/internal/uploads"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
)

// UploadPriceCSV ingests one price file for the authenticated vendor. The
// file arrives either as a multipart "file" part or as a raw text/csv body;
// tier comes from the query string. Admins may upload on a vendor's behalf
// with an explicit vendor_id.
func UploadPriceCSV(svc uploadsvc.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "upload service unavailable"))
			return
		}

		tier, err := enums.ParseTier(strings.TrimSpace(r.URL.Query().Get("tier")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier"))
			return
		}

		vendorID, err := resolveUploadVendor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, err := openUploadFile(r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		result, err := svc.ProcessCSV(r.Context(), vendorID, tier, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// resolveUploadVendor prefers the token's vendor binding; an explicit
// vendor_id query is honored only for admin or moderator actors.
func resolveUploadVendor(r *http.Request) (uuid.UUID, error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("vendor_id")); raw != "" {
		role := middleware.RoleFromContext(r.Context())
		if role != enums.UserRoleAdmin.String() && role != enums.UserRoleModerator.String() {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor_id override requires an admin role")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id")
		}
		return id, nil
	}

	raw := middleware.VendorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "no vendor bound to this token")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vendor id")
	}
	return id, nil
}

func openUploadFile(r *http.Request, maxBytes int64) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload")
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, `multipart part "file" required`)
		}
		return file, nil
	}
	return r.Body, nil
}

// GetUpload returns one batch record. Non-admin callers only ever see their
// own vendor's batches; a foreign batch id reads as not found.
func GetUpload(svc uploadsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "uploadID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload id"))
			return
		}
		upload, err := svc.GetUpload(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if role := middleware.RoleFromContext(r.Context()); role != enums.UserRoleAdmin.String() && role != enums.UserRoleModerator.String() {
			callerVendor, err := uuid.Parse(middleware.VendorIDFromContext(r.Context()))
			if err != nil || upload.VendorID != callerVendor {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "upload not found"))
				return
			}
		}
		responses.WriteSuccess(w, upload)
	}
}

// ListUploads pages through the vendor's batch history.
func ListUploads(svc uploadsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := resolveUploadVendor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListUploads(r.Context(), vendorID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
