package offers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
)

// Service exposes offer browsing and the admin verification workflow.
type Service interface {
	GetOffer(ctx context.Context, id uuid.UUID) (*OfferDTO, error)
	ListOffers(ctx context.Context, input ListOffersInput) (*OfferListResult, error)
	ListPeptideOffers(ctx context.Context, peptide string, tier *enums.Tier) ([]OfferDTO, error)
	Verify(ctx context.Context, id uuid.UUID) (*OfferDTO, error)
	Reject(ctx context.Context, id uuid.UUID) (*OfferDTO, error)
	DeleteOffer(ctx context.Context, id uuid.UUID) error
	BulkDecide(ctx context.Context, filters OfferListFilters, status enums.VerificationStatus) (*BulkResult, error)
	BulkDelete(ctx context.Context, filters OfferListFilters) (*BulkResult, error)
}

// BulkResult totals a best-effort fan-out. Failed writes are reported, never
// rolled back.
type BulkResult struct {
	Matched   int `json:"matched"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

type offerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOffer, error)
	SetVerificationStatus(ctx context.Context, id uuid.UUID, status enums.VerificationStatus) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListIDsByFilter(ctx context.Context, filters OfferListFilters) ([]uuid.UUID, error)
	ListOffers(ctx context.Context, input ListOffersInput) (*OfferListResult, error)
	ListVerifiedByPeptide(ctx context.Context, peptide string, tier *enums.Tier) ([]models.VendorOffer, error)
}

type service struct {
	repo offerRepository
	logg *logger.Logger
}

// NewService constructs an offer service instance.
func NewService(repo offerRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetOffer(ctx context.Context, id uuid.UUID) (*OfferDTO, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load offer")
	}
	return toOfferDTO(offer), nil
}

func (s *service) ListOffers(ctx context.Context, input ListOffersInput) (*OfferListResult, error) {
	result, err := s.repo.ListOffers(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list offers")
	}
	return result, nil
}

// ListPeptideOffers serves the public compare feed for one peptide: verified
// offers only, cheapest first within each tier by that tier's own metric.
// Tiers are never ranked against each other.
func (s *service) ListPeptideOffers(ctx context.Context, peptide string, tier *enums.Tier) ([]OfferDTO, error) {
	if strings.TrimSpace(peptide) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "peptide name is required")
	}
	rows, err := s.repo.ListVerifiedByPeptide(ctx, peptide, tier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list peptide offers")
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Tier != rows[j].Tier {
			return tierRank(rows[i].Tier) < tierRank(rows[j].Tier)
		}
		return compareMetric(rows[i]) < compareMetric(rows[j])
	})
	return toOfferDTOs(rows), nil
}

func tierRank(tier enums.Tier) int {
	for i, candidate := range enums.Tiers() {
		if candidate == tier {
			return i
		}
	}
	return len(enums.Tiers())
}

// compareMetric is the per-tier sort key: $/mg for research, monthly price for
// telehealth, total course price for brand. Offers with a mismatched payload
// sort last.
func compareMetric(offer models.VendorOffer) float64 {
	if !offer.PayloadMatchesTier() {
		return math.MaxFloat64
	}
	switch offer.Tier {
	case enums.TierResearch:
		return offer.ResearchPricing.PricePerMG
	case enums.TierTelehealth:
		return offer.TelehealthPricing.MonthlyPriceUSD
	case enums.TierBrand:
		return offer.BrandPricing.TotalPriceUSD
	default:
		return math.MaxFloat64
	}
}

// Verify moves a pending offer to verified.
func (s *service) Verify(ctx context.Context, id uuid.UUID) (*OfferDTO, error) {
	return s.decide(ctx, id, enums.VerificationStatusVerified)
}

// Reject moves a pending offer to rejected.
func (s *service) Reject(ctx context.Context, id uuid.UUID) (*OfferDTO, error) {
	return s.decide(ctx, id, enums.VerificationStatusRejected)
}

func (s *service) decide(ctx context.Context, id uuid.UUID, next enums.VerificationStatus) (*OfferDTO, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load offer")
	}
	if !offer.VerificationStatus.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("offer is %s; only pending offers can be %s", offer.VerificationStatus, next))
	}
	if _, err := s.repo.SetVerificationStatus(ctx, id, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update verification status")
	}
	offer.VerificationStatus = next
	return toOfferDTO(offer), nil
}

func (s *service) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load offer")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete offer")
	}
	return nil
}

// BulkDecide reads the matching set once, then issues independent status
// writes in parallel. Offers no longer pending at write time count as failed.
func (s *service) BulkDecide(ctx context.Context, filters OfferListFilters, status enums.VerificationStatus) (*BulkResult, error) {
	if status != enums.VerificationStatusVerified && status != enums.VerificationStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("bulk decision cannot target %s", status))
	}
	pending := enums.VerificationStatusPending
	filters.VerificationStatus = &pending
	return s.fanOut(ctx, filters, func(ctx context.Context, id uuid.UUID) error {
		affected, err := s.repo.SetVerificationStatus(ctx, id, status)
		if err != nil {
			return fmt.Errorf("offer %s: %w", id, err)
		}
		if affected == 0 {
			return fmt.Errorf("offer %s: no longer present", id)
		}
		return nil
	})
}

// BulkDelete removes every matching offer, best effort.
func (s *service) BulkDelete(ctx context.Context, filters OfferListFilters) (*BulkResult, error) {
	return s.fanOut(ctx, filters, func(ctx context.Context, id uuid.UUID) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("offer %s: %w", id, err)
		}
		return nil
	})
}

func (s *service) fanOut(ctx context.Context, filters OfferListFilters, write func(context.Context, uuid.UUID) error) (*BulkResult, error) {
	ids, err := s.repo.ListIDsByFilter(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list offers for bulk operation")
	}

	var (
		mu       sync.Mutex
		combined error
		wg       sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if err := write(ctx, id); err != nil {
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	failed := len(multierr.Errors(combined))
	result := &BulkResult{Matched: len(ids), Succeeded: len(ids) - failed, Failed: failed}
	if combined != nil {
		s.logg.Error(s.logg.WithField(ctx, "failed_writes", failed), "bulk offer operation completed with failures", combined)
	}
	return result, nil
}
