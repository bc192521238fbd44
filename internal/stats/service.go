package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
)

// Service refreshes and serves per-peptide price aggregates. Only verified
// offers feed aggregates, and each tier is summarized on its own comparable
// metric: research on price_per_mg, telehealth on monthly_price_usd, brand
// on total_price_usd. Values never cross tiers.
type Service interface {
	RefreshAll(ctx context.Context) error
	GetStats(ctx context.Context, tier *enums.Tier, peptideName string) ([]StatDTO, error)
}

// StatDTO is the wire shape for one aggregate row.
type StatDTO struct {
	PeptideName string     `json:"peptide_name"`
	Tier        enums.Tier `json:"tier"`
	OfferCount  int        `json:"offer_count"`
	LowestUSD   string     `json:"lowest_usd"`
	MedianUSD   string     `json:"median_usd"`
	RefreshedAt time.Time  `json:"refreshed_at"`
}

type verifiedOffersReader interface {
	ListVerifiedByTier(ctx context.Context, tier enums.Tier) ([]models.VendorOffer, error)
}

type statsRepository interface {
	ReplaceForTier(ctx context.Context, tier enums.Tier, rows []models.PeptidePriceStat) error
	List(ctx context.Context, tier *enums.Tier, peptideName string) ([]models.PeptidePriceStat, error)
}

type service struct {
	repo   statsRepository
	offers verifiedOffersReader
	logg   *logger.Logger
	now    func() time.Time
}

// NewService constructs a stats service instance.
func NewService(repo statsRepository, offers verifiedOffersReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stats repository required")
	}
	if offers == nil {
		return nil, fmt.Errorf("offer reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, offers: offers, logg: logg, now: time.Now}, nil
}

// RefreshAll recomputes every tier's aggregates. A tier that fails leaves
// its previous rows in place; the other tiers still refresh.
func (s *service) RefreshAll(ctx context.Context) error {
	var combined error
	for _, tier := range enums.Tiers() {
		if err := s.refreshTier(ctx, tier); err != nil {
			combined = multierr.Append(combined, fmt.Errorf("tier %s: %w", tier, err))
		}
	}
	return combined
}

func (s *service) refreshTier(ctx context.Context, tier enums.Tier) error {
	offers, err := s.offers.ListVerifiedByTier(ctx, tier)
	if err != nil {
		return fmt.Errorf("list verified offers: %w", err)
	}

	prices := make(map[string][]decimal.Decimal)
	for i := range offers {
		value, ok := comparablePrice(&offers[i])
		if !ok {
			continue
		}
		prices[offers[i].PeptideName] = append(prices[offers[i].PeptideName], value)
	}

	refreshedAt := s.now().UTC()
	rows := make([]models.PeptidePriceStat, 0, len(prices))
	for peptide, values := range prices {
		sort.Slice(values, func(i, j int) bool { return values[i].LessThan(values[j]) })
		rows = append(rows, models.PeptidePriceStat{
			PeptideName: peptide,
			Tier:        tier,
			OfferCount:  len(values),
			LowestUSD:   values[0].Round(4),
			MedianUSD:   median(values).Round(4),
			RefreshedAt: refreshedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PeptideName < rows[j].PeptideName })

	if err := s.repo.ReplaceForTier(ctx, tier, rows); err != nil {
		return fmt.Errorf("replace aggregates: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "tier", tier.String()),
		fmt.Sprintf("refreshed %d peptide aggregates", len(rows)))
	return nil
}

func (s *service) GetStats(ctx context.Context, tier *enums.Tier, peptideName string) ([]StatDTO, error) {
	rows, err := s.repo.List(ctx, tier, peptideName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list price stats")
	}
	dtos := make([]StatDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, StatDTO{
			PeptideName: row.PeptideName,
			Tier:        row.Tier,
			OfferCount:  row.OfferCount,
			LowestUSD:   row.LowestUSD.StringFixed(4),
			MedianUSD:   row.MedianUSD.StringFixed(4),
			RefreshedAt: row.RefreshedAt,
		})
	}
	return dtos, nil
}

// comparablePrice extracts the tier's own summary metric from the offer's
// payload. Offers whose payload is missing or mismatched are skipped.
func comparablePrice(offer *models.VendorOffer) (decimal.Decimal, bool) {
	if !offer.PayloadMatchesTier() {
		return decimal.Zero, false
	}
	switch offer.Tier {
	case enums.TierResearch:
		return decimal.NewFromFloat(offer.ResearchPricing.PricePerMG), true
	case enums.TierTelehealth:
		return decimal.NewFromFloat(offer.TelehealthPricing.MonthlyPriceUSD), true
	case enums.TierBrand:
		return decimal.NewFromFloat(offer.BrandPricing.TotalPriceUSD), true
	default:
		return decimal.Zero, false
	}
}

// median assumes values are sorted ascending and non-empty. Even-sized sets
// average the two middle values.
func median(values []decimal.Decimal) decimal.Decimal {
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return values[mid-1].Add(values[mid]).Div(decimal.NewFromInt(2))
}
