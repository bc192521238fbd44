package stats

import (
	"context"

	"gorm.io/gorm"

	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
)

// Repository persists pre-computed price aggregates.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceForTier swaps the tier's aggregate rows in one transaction so
// readers never see a half-refreshed tier.
func (r *Repository) ReplaceForTier(ctx context.Context, tier enums.Tier, rows []models.PeptidePriceStat) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tier = ?", tier).Delete(&models.PeptidePriceStat{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// List returns aggregates, optionally narrowed to one tier or one peptide.
func (r *Repository) List(ctx context.Context, tier *enums.Tier, peptideName string) ([]models.PeptidePriceStat, error) {
	qb := r.db.WithContext(ctx).Model(&models.PeptidePriceStat{})
	if tier != nil {
		qb = qb.Where("tier = ?", *tier)
	}
	if peptideName != "" {
		qb = qb.Where("LOWER(peptide_name) = LOWER(?)", peptideName)
	}

	var rows []models.PeptidePriceStat
	if err := qb.Order("peptide_name ASC").Order("tier ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
