package offers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
)

// Repository wires together vendor offer persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// conflictColumns mirror idx_vendor_offers_key, the natural key for re-uploads.
var conflictColumns = []clause.Column{
	{Name: "vendor_id"},
	{Name: "peptide_name"},
	{Name: "tier"},
}

// Upsert writes one offer keyed on (vendor_id, peptide_name, tier). An
// overwrite replaces the pricing payload, re-stamps the batch, and resets
// verification_status to pending so a changed price gets re-reviewed.
func (r *Repository) Upsert(ctx context.Context, offer *models.VendorOffer) (*models.VendorOffer, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: conflictColumns,
			DoUpdates: clause.Assignments(map[string]any{
				"research_pricing":    offer.ResearchPricing,
				"telehealth_pricing":  offer.TelehealthPricing,
				"brand_pricing":       offer.BrandPricing,
				"upload_batch_id":     offer.UploadBatchID,
				"verification_status": enums.VerificationStatusPending,
				"updated_at":          time.Now().UTC(),
			}),
		}).
		Create(offer).Error
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// FindByID loads the offer without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOffer, error) {
	var offer models.VendorOffer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// SetVerificationStatus writes the new status and returns the updated row
// count so callers can detect a missing offer.
func (r *Repository) SetVerificationStatus(ctx context.Context, id uuid.UUID, status enums.VerificationStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.VendorOffer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"verification_status": status,
			"updated_at":          time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

// Delete removes the offer permanently.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.VendorOffer{}, "id = ?", id).Error
}

// ListIDsByFilter returns offer ids matching the filters, for bulk admin
// operations that fan out per-document writes.
func (r *Repository) ListIDsByFilter(ctx context.Context, filters OfferListFilters) ([]uuid.UUID, error) {
	qb := applyOfferFilters(r.db.WithContext(ctx).Model(&models.VendorOffer{}), filters)
	var ids []uuid.UUID
	if err := qb.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListOffers returns one cursor page of offers, newest first.
func (r *Repository) ListOffers(ctx context.Context, input ListOffersInput) (*OfferListResult, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(input.Pagination.Limit)

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := applyOfferFilters(r.db.WithContext(ctx).Model(&models.VendorOffer{}), input.Filters)
	if input.PublicOnly {
		qb = qb.Where("verification_status = ?", enums.VerificationStatusVerified)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.VendorOffer
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &OfferListResult{Offers: toOfferDTOs(rows), NextCursor: nextCursor}, nil
}

// ListVerifiedByPeptide loads the verified offers for one peptide, across
// tiers or narrowed to one. Name matching is case-insensitive.
func (r *Repository) ListVerifiedByPeptide(ctx context.Context, peptide string, tier *enums.Tier) ([]models.VendorOffer, error) {
	qb := r.db.WithContext(ctx).
		Where("LOWER(peptide_name) = ?", strings.ToLower(strings.TrimSpace(peptide))).
		Where("verification_status = ?", enums.VerificationStatusVerified)
	if tier != nil {
		qb = qb.Where("tier = ?", *tier)
	}
	var rows []models.VendorOffer
	if err := qb.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListVerifiedByTier streams all verified offers for one tier. Used by the
// stats aggregation job; unverified prices never feed aggregates.
func (r *Repository) ListVerifiedByTier(ctx context.Context, tier enums.Tier) ([]models.VendorOffer, error) {
	var rows []models.VendorOffer
	err := r.db.WithContext(ctx).
		Where("tier = ? AND verification_status = ?", tier, enums.VerificationStatusVerified).
		Order("peptide_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func applyOfferFilters(qb *gorm.DB, filters OfferListFilters) *gorm.DB {
	if filters.Tier != nil {
		qb = qb.Where("tier = ?", *filters.Tier)
	}
	if filters.VendorID != nil {
		qb = qb.Where("vendor_id = ?", *filters.VendorID)
	}
	if filters.VerificationStatus != nil {
		qb = qb.Where("verification_status = ?", *filters.VerificationStatus)
	}
	if filters.UploadBatchID != nil {
		qb = qb.Where("upload_batch_id = ?", *filters.UploadBatchID)
	}
	if search := strings.TrimSpace(filters.Query); search != "" {
		qb = qb.Where("LOWER(peptide_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return qb
}
