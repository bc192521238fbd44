package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/peptracker/peptracker-backend/pkg/db"
	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
)

// Service exposes admin vendor directory management.
type Service interface {
	CreateVendor(ctx context.Context, input CreateVendorInput) (*VendorDTO, error)
	UpdateVendor(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*VendorDTO, error)
	DeleteVendor(ctx context.Context, id uuid.UUID) error
	GetVendor(ctx context.Context, id uuid.UUID) (*VendorDTO, error)
	ListVendors(ctx context.Context, params pagination.Params) (*VendorListResult, error)
}

// CreateVendorInput holds the validated payload to create a vendor.
type CreateVendorInput struct {
	Name        string
	WebsiteURL  string
	Verified    bool
	TierSupport []enums.Tier
}

// UpdateVendorInput holds optional mutation values for a vendor.
type UpdateVendorInput struct {
	Name        *string
	WebsiteURL  *string
	Verified    *bool
	TierSupport *[]enums.Tier
}

// VendorDTO is the wire shape for a vendor directory entry.
type VendorDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	WebsiteURL  string       `json:"website_url"`
	Verified    bool         `json:"verified"`
	TierSupport []enums.Tier `json:"tier_support"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// VendorListResult is one page of vendors.
type VendorListResult struct {
	Vendors    []VendorDTO `json:"vendors"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

type vendorRepository interface {
	Create(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) (*models.Vendor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context, params pagination.Params) ([]models.Vendor, string, error)
}

type service struct {
	repo vendorRepository
}

// NewService constructs a vendor service instance.
func NewService(repo vendorRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateVendor(ctx context.Context, input CreateVendorInput) (*VendorDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name is required")
	}
	support, err := tierSupportColumn(input.TierSupport)
	if err != nil {
		return nil, err
	}

	vendor := &models.Vendor{
		Name:        name,
		WebsiteURL:  strings.TrimSpace(input.WebsiteURL),
		Verified:    input.Verified,
		TierSupport: support,
	}
	created, err := s.repo.Create(ctx, vendor)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("vendor %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create vendor")
	}
	return toVendorDTO(created), nil
}

func (s *service) UpdateVendor(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*VendorDTO, error) {
	vendor, err := s.loadVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name cannot be blank")
		}
		vendor.Name = name
	}
	if input.WebsiteURL != nil {
		vendor.WebsiteURL = strings.TrimSpace(*input.WebsiteURL)
	}
	if input.Verified != nil {
		vendor.Verified = *input.Verified
	}
	if input.TierSupport != nil {
		support, err := tierSupportColumn(*input.TierSupport)
		if err != nil {
			return nil, err
		}
		vendor.TierSupport = support
	}

	updated, err := s.repo.Update(ctx, vendor)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("vendor %q already exists", vendor.Name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update vendor")
	}
	return toVendorDTO(updated), nil
}

func (s *service) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadVendor(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete vendor")
	}
	return nil
}

func (s *service) GetVendor(ctx context.Context, id uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.loadVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVendorDTO(vendor), nil
}

func (s *service) ListVendors(ctx context.Context, params pagination.Params) (*VendorListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vendors")
	}
	dtos := make([]VendorDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toVendorDTO(&rows[i]))
	}
	return &VendorListResult{Vendors: dtos, NextCursor: nextCursor}, nil
}

func (s *service) loadVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vendor")
	}
	return vendor, nil
}

// tierSupportColumn validates and deduplicates the tier set. An empty set is
// legal; such a vendor exists in the directory but cannot upload.
func tierSupportColumn(tiers []enums.Tier) (pq.StringArray, error) {
	seen := make(map[enums.Tier]bool, len(tiers))
	out := make(pq.StringArray, 0, len(tiers))
	for _, tier := range tiers {
		if !tier.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid tier %q", tier))
		}
		if seen[tier] {
			continue
		}
		seen[tier] = true
		out = append(out, tier.String())
	}
	return out, nil
}

func toVendorDTO(vendor *models.Vendor) *VendorDTO {
	tiers := make([]enums.Tier, 0, len(vendor.TierSupport))
	for _, raw := range vendor.TierSupport {
		if tier, err := enums.ParseTier(raw); err == nil {
			tiers = append(tiers, tier)
		}
	}
	return &VendorDTO{
		ID:          vendor.ID,
		Name:        vendor.Name,
		WebsiteURL:  vendor.WebsiteURL,
		Verified:    vendor.Verified,
		TierSupport: tiers,
		CreatedAt:   vendor.CreatedAt,
		UpdatedAt:   vendor.UpdatedAt,
	}
}
