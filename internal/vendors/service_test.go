package vendors

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
)

type stubVendorRepo struct {
	vendors   map[uuid.UUID]*models.Vendor
	createErr error
}

func newStubVendorRepo() *stubVendorRepo {
	return &stubVendorRepo{vendors: make(map[uuid.UUID]*models.Vendor)}
}

func (s *stubVendorRepo) Create(_ context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	vendor.ID = uuid.New()
	s.vendors[vendor.ID] = vendor
	return vendor, nil
}

func (s *stubVendorRepo) Update(_ context.Context, vendor *models.Vendor) (*models.Vendor, error) {
	s.vendors[vendor.ID] = vendor
	return vendor, nil
}

func (s *stubVendorRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.vendors, id)
	return nil
}

func (s *stubVendorRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, ok := s.vendors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *vendor
	return &copied, nil
}

func (s *stubVendorRepo) List(_ context.Context, _ pagination.Params) ([]models.Vendor, string, error) {
	var rows []models.Vendor
	for _, vendor := range s.vendors {
		rows = append(rows, *vendor)
	}
	return rows, "", nil
}

func TestCreateVendorDeduplicatesTiers(t *testing.T) {
	repo := newStubVendorRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	dto, err := svc.CreateVendor(context.Background(), CreateVendorInput{
		Name:        "  Apex Peptides  ",
		WebsiteURL:  "https://apex.example",
		TierSupport: []enums.Tier{enums.TierResearch, enums.TierResearch, enums.TierBrand},
	})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	if dto.Name != "Apex Peptides" {
		t.Errorf("name = %q, want trimmed", dto.Name)
	}
	if len(dto.TierSupport) != 2 {
		t.Errorf("tier_support = %v, want deduplicated pair", dto.TierSupport)
	}
}

func TestCreateVendorInvalidTier(t *testing.T) {
	svc, _ := NewService(newStubVendorRepo())

	_, err := svc.CreateVendor(context.Background(), CreateVendorInput{
		Name:        "Apex",
		TierSupport: []enums.Tier{"wholesale"},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateVendorDuplicateName(t *testing.T) {
	repo := newStubVendorRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "vendors_name_key"`)
	svc, _ := NewService(repo)

	_, err := svc.CreateVendor(context.Background(), CreateVendorInput{Name: "Apex"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateVendorPartial(t *testing.T) {
	repo := newStubVendorRepo()
	svc, _ := NewService(repo)

	created, err := svc.CreateVendor(context.Background(), CreateVendorInput{
		Name:        "Apex",
		WebsiteURL:  "https://apex.example",
		TierSupport: []enums.Tier{enums.TierResearch},
	})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}

	verified := true
	updated, err := svc.UpdateVendor(context.Background(), created.ID, UpdateVendorInput{Verified: &verified})
	if err != nil {
		t.Fatalf("UpdateVendor: %v", err)
	}
	if !updated.Verified {
		t.Error("verified flag not applied")
	}
	if updated.Name != "Apex" || len(updated.TierSupport) != 1 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestDeleteVendorMissing(t *testing.T) {
	svc, _ := NewService(newStubVendorRepo())

	err := svc.DeleteVendor(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
