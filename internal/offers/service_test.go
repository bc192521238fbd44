package offers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/types"
)

type stubOfferRepo struct {
	mu     sync.Mutex
	offers map[uuid.UUID]*models.VendorOffer

	statusErr   map[uuid.UUID]error
	deleteErr   map[uuid.UUID]error
	listIDs     []uuid.UUID
	listErr     error
	peptideRows []models.VendorOffer
}

func newStubOfferRepo() *stubOfferRepo {
	return &stubOfferRepo{
		offers:    make(map[uuid.UUID]*models.VendorOffer),
		statusErr: make(map[uuid.UUID]error),
		deleteErr: make(map[uuid.UUID]error),
	}
}

func (s *stubOfferRepo) add(status enums.VerificationStatus) uuid.UUID {
	id := uuid.New()
	s.offers[id] = &models.VendorOffer{
		ID:                 id,
		VendorID:           uuid.New(),
		PeptideName:        "BPC-157",
		Tier:               enums.TierResearch,
		VerificationStatus: status,
	}
	s.listIDs = append(s.listIDs, id)
	return id
}

func (s *stubOfferRepo) FindByID(_ context.Context, id uuid.UUID) (*models.VendorOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	offer, ok := s.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *offer
	return &copied, nil
}

func (s *stubOfferRepo) SetVerificationStatus(_ context.Context, id uuid.UUID, status enums.VerificationStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.statusErr[id]; ok {
		return 0, err
	}
	offer, ok := s.offers[id]
	if !ok {
		return 0, nil
	}
	offer.VerificationStatus = status
	return 1, nil
}

func (s *stubOfferRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.deleteErr[id]; ok {
		return err
	}
	delete(s.offers, id)
	return nil
}

func (s *stubOfferRepo) ListIDsByFilter(_ context.Context, _ OfferListFilters) ([]uuid.UUID, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listIDs, nil
}

func (s *stubOfferRepo) ListOffers(_ context.Context, _ ListOffersInput) (*OfferListResult, error) {
	return &OfferListResult{}, nil
}

func (s *stubOfferRepo) ListVerifiedByPeptide(_ context.Context, _ string, tier *enums.Tier) ([]models.VendorOffer, error) {
	if tier == nil {
		return append([]models.VendorOffer(nil), s.peptideRows...), nil
	}
	var out []models.VendorOffer
	for _, row := range s.peptideRows {
		if row.Tier == *tier {
			out = append(out, row)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, repo offerRepository) Service {
	t.Helper()
	svc, err := NewService(repo, logger.New(logger.Options{Level: zerolog.ErrorLevel}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestVerifyPendingOffer(t *testing.T) {
	repo := newStubOfferRepo()
	id := repo.add(enums.VerificationStatusPending)
	svc := newTestService(t, repo)

	dto, err := svc.Verify(context.Background(), id)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if dto.VerificationStatus != enums.VerificationStatusVerified {
		t.Errorf("status = %s, want verified", dto.VerificationStatus)
	}
	if repo.offers[id].VerificationStatus != enums.VerificationStatusVerified {
		t.Error("status not persisted")
	}
}

func TestRejectVerifiedOfferBlocked(t *testing.T) {
	repo := newStubOfferRepo()
	id := repo.add(enums.VerificationStatusVerified)
	svc := newTestService(t, repo)

	_, err := svc.Reject(context.Background(), id)
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict code, got %v", err)
	}
	if repo.offers[id].VerificationStatus != enums.VerificationStatusVerified {
		t.Error("status must be untouched on a blocked transition")
	}
}

func TestVerifyRejectedOfferBlocked(t *testing.T) {
	repo := newStubOfferRepo()
	id := repo.add(enums.VerificationStatusRejected)
	svc := newTestService(t, repo)

	if _, err := svc.Verify(context.Background(), id); err == nil {
		t.Fatal("rejected offers must stay rejected")
	}
}

func TestVerifyMissingOffer(t *testing.T) {
	svc := newTestService(t, newStubOfferRepo())

	_, err := svc.Verify(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBulkDecideBestEffort(t *testing.T) {
	repo := newStubOfferRepo()
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		ids = append(ids, repo.add(enums.VerificationStatusPending))
	}
	repo.statusErr[ids[2]] = errors.New("write timeout")
	svc := newTestService(t, repo)

	result, err := svc.BulkDecide(context.Background(), OfferListFilters{}, enums.VerificationStatusVerified)
	if err != nil {
		t.Fatalf("BulkDecide: %v", err)
	}
	if result.Matched != 5 || result.Succeeded != 4 || result.Failed != 1 {
		t.Errorf("result = %+v, want 5/4/1", result)
	}
	for i, id := range ids {
		want := enums.VerificationStatusVerified
		if i == 2 {
			want = enums.VerificationStatusPending
		}
		if got := repo.offers[id].VerificationStatus; got != want {
			t.Errorf("offer %d status = %s, want %s", i, got, want)
		}
	}
}

func TestListPeptideOffersSortsWithinTier(t *testing.T) {
	repo := newStubOfferRepo()
	repo.peptideRows = []models.VendorOffer{
		{
			ID: uuid.New(), PeptideName: "BPC-157", Tier: enums.TierResearch,
			VerificationStatus: enums.VerificationStatusVerified,
			ResearchPricing:    &types.ResearchPricing{SizeMG: 10, PriceUSD: 60, PricePerMG: 6},
		},
		{
			ID: uuid.New(), PeptideName: "BPC-157", Tier: enums.TierResearch,
			VerificationStatus: enums.VerificationStatusVerified,
			ResearchPricing:    &types.ResearchPricing{SizeMG: 5, PriceUSD: 20, PricePerMG: 4},
		},
		{
			ID: uuid.New(), PeptideName: "BPC-157", Tier: enums.TierTelehealth,
			VerificationStatus: enums.VerificationStatusVerified,
			TelehealthPricing:  &types.TelehealthPricing{MonthlyPriceUSD: 149},
		},
	}
	svc := newTestService(t, repo)

	dtos, err := svc.ListPeptideOffers(context.Background(), "BPC-157", nil)
	if err != nil {
		t.Fatalf("ListPeptideOffers: %v", err)
	}
	if len(dtos) != 3 {
		t.Fatalf("got %d offers, want 3", len(dtos))
	}
	if dtos[0].Research == nil || dtos[0].Research.PricePerMG != 4 {
		t.Errorf("cheapest research offer must sort first, got %+v", dtos[0])
	}
	if dtos[1].Research == nil || dtos[1].Research.PricePerMG != 6 {
		t.Errorf("second research offer out of order, got %+v", dtos[1])
	}
	if dtos[2].Telehealth == nil {
		t.Errorf("telehealth offer must trail the research tier, got %+v", dtos[2])
	}
}

func TestListPeptideOffersTierFilter(t *testing.T) {
	repo := newStubOfferRepo()
	repo.peptideRows = []models.VendorOffer{
		{
			ID: uuid.New(), PeptideName: "Semaglutide", Tier: enums.TierBrand,
			VerificationStatus: enums.VerificationStatusVerified,
			BrandPricing:       &types.BrandPricing{TotalPriceUSD: 899, DoseCount: 4},
		},
		{
			ID: uuid.New(), PeptideName: "Semaglutide", Tier: enums.TierTelehealth,
			VerificationStatus: enums.VerificationStatusVerified,
			TelehealthPricing:  &types.TelehealthPricing{MonthlyPriceUSD: 299},
		},
	}
	svc := newTestService(t, repo)

	tier := enums.TierBrand
	dtos, err := svc.ListPeptideOffers(context.Background(), "Semaglutide", &tier)
	if err != nil {
		t.Fatalf("ListPeptideOffers: %v", err)
	}
	if len(dtos) != 1 || dtos[0].Brand == nil {
		t.Fatalf("expected one brand offer, got %+v", dtos)
	}
}

func TestListPeptideOffersEmptyName(t *testing.T) {
	svc := newTestService(t, newStubOfferRepo())

	_, err := svc.ListPeptideOffers(context.Background(), "  ", nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBulkDecideRejectsPendingTarget(t *testing.T) {
	svc := newTestService(t, newStubOfferRepo())

	_, err := svc.BulkDecide(context.Background(), OfferListFilters{}, enums.VerificationStatusPending)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBulkDeleteRemovesMatches(t *testing.T) {
	repo := newStubOfferRepo()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ids = append(ids, repo.add(enums.VerificationStatusPending))
	}
	repo.deleteErr[ids[0]] = fmt.Errorf("store unavailable")
	svc := newTestService(t, repo)

	result, err := svc.BulkDelete(context.Background(), OfferListFilters{})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if result.Matched != 3 || result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 3/2/1", result)
	}
	if _, ok := repo.offers[ids[0]]; !ok {
		t.Error("failed delete must leave the offer in place")
	}
	if _, ok := repo.offers[ids[1]]; ok {
		t.Error("successful delete must remove the offer")
	}
}
