package uploads

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/metrics"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
)

type stubVendorRepo struct {
	vendors map[uuid.UUID]*models.Vendor
}

func (s *stubVendorRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, ok := s.vendors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return vendor, nil
}

type stubOfferUpserter struct {
	upserted    []*models.VendorOffer
	failPeptide string
}

func (s *stubOfferUpserter) Upsert(_ context.Context, offer *models.VendorOffer) (*models.VendorOffer, error) {
	if s.failPeptide != "" && offer.PeptideName == s.failPeptide {
		return nil, errors.New("connection reset")
	}
	s.upserted = append(s.upserted, offer)
	return offer, nil
}

type stubUploadRepo struct {
	created []*models.VendorPriceUpload
}

func (s *stubUploadRepo) Create(_ context.Context, upload *models.VendorPriceUpload) (*models.VendorPriceUpload, error) {
	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}
	s.created = append(s.created, upload)
	return upload, nil
}

func (s *stubUploadRepo) FindByID(_ context.Context, id uuid.UUID) (*models.VendorPriceUpload, error) {
	for _, u := range s.created {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUploadRepo) ListByVendor(_ context.Context, vendorID uuid.UUID, _ pagination.Params) ([]models.VendorPriceUpload, string, error) {
	var rows []models.VendorPriceUpload
	for _, u := range s.created {
		if u.VendorID == vendorID {
			rows = append(rows, *u)
		}
	}
	return rows, "", nil
}

type uploadFixture struct {
	svc      Service
	vendorID uuid.UUID
	vendors  *stubVendorRepo
	offers   *stubOfferUpserter
	repo     *stubUploadRepo
	samples  *metrics.SampleRing
}

func newUploadFixture(t *testing.T, tiers ...enums.Tier) *uploadFixture {
	t.Helper()
	vendorID := uuid.New()
	support := make(pq.StringArray, 0, len(tiers))
	for _, tier := range tiers {
		support = append(support, tier.String())
	}
	fixture := &uploadFixture{
		vendorID: vendorID,
		vendors: &stubVendorRepo{vendors: map[uuid.UUID]*models.Vendor{
			vendorID: {ID: vendorID, Name: "Apex Peptides", TierSupport: support},
		}},
		offers:  &stubOfferUpserter{},
		repo:    &stubUploadRepo{},
		samples: metrics.NewSampleRing(8),
	}

	svc, err := NewService(Params{
		Repo:    fixture.repo,
		Vendors: fixture.vendors,
		Offers:  fixture.offers,
		Metrics: metrics.NewIngestMetrics(prometheus.NewRegistry()),
		Samples: fixture.samples,
		Logger:  logger.New(logger.Options{Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	fixture.svc = svc
	return fixture
}

func TestProcessCSVHappyPath(t *testing.T) {
	fixture := newUploadFixture(t, enums.TierResearch)

	csvBody := strings.Join([]string{
		"Peptide Name,Price (USD),Size (MG),Shipping",
		"BPC-157,49.99,10,9.50",
		`"TB-500","$1,200.00",50,`,
	}, "\n")

	result, err := fixture.svc.ProcessCSV(context.Background(), fixture.vendorID, enums.TierResearch, strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("ProcessCSV: %v", err)
	}

	if result.RowCount != 2 || result.SuccessCount != 2 || result.FailureCount != 0 {
		t.Errorf("result = %+v, want 2/2/0", result.UploadDTO)
	}
	if result.Status != enums.UploadStatusCompleted {
		t.Errorf("status = %s, want completed", result.Status)
	}
	if len(fixture.offers.upserted) != 2 {
		t.Fatalf("upserted %d offers, want 2", len(fixture.offers.upserted))
	}

	first := fixture.offers.upserted[0]
	if first.PeptideName != "BPC-157" || first.Tier != enums.TierResearch {
		t.Errorf("offer = %+v", first)
	}
	if first.VerificationStatus != enums.VerificationStatusPending {
		t.Error("fresh offers must start pending")
	}
	if first.ResearchPricing == nil || !first.PayloadMatchesTier() {
		t.Fatal("research payload missing or cross-tier payload set")
	}
	if got := first.ResearchPricing.PricePerMG; math.Abs(got-49.99/10) > 1e-9 {
		t.Errorf("price_per_mg = %v", got)
	}
	if first.UploadBatchID == nil || *first.UploadBatchID != result.ID {
		t.Error("offer not stamped with the batch id")
	}

	second := fixture.offers.upserted[1]
	if second.ResearchPricing.PriceUSD != 1200 {
		t.Errorf("currency cell parsed as %v, want 1200", second.ResearchPricing.PriceUSD)
	}
	if second.ResearchPricing.ShippingUSD != nil {
		t.Error("blank shipping must stay absent")
	}

	if fixture.samples.Len() != 1 {
		t.Errorf("sample ring holds %d entries, want 1", fixture.samples.Len())
	}
}

func TestProcessCSVUnsupportedTier(t *testing.T) {
	fixture := newUploadFixture(t, enums.TierResearch)

	_, err := fixture.svc.ProcessCSV(context.Background(), fixture.vendorID, enums.TierBrand,
		strings.NewReader("peptide,price per dose,doses\nWegovy,12.5,28\n"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(fixture.offers.upserted) != 0 || len(fixture.repo.created) != 0 {
		t.Error("nothing may be written for an unsupported tier")
	}
}

func TestProcessCSVUnknownVendor(t *testing.T) {
	fixture := newUploadFixture(t, enums.TierResearch)

	_, err := fixture.svc.ProcessCSV(context.Background(), uuid.New(), enums.TierResearch,
		strings.NewReader("peptide,price,size\nBPC-157,49.99,10\n"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProcessCSVHeaderFailure(t *testing.T) {
	fixture := newUploadFixture(t, enums.TierResearch)

	csvBody := "peptide,size\nBPC-157,10\nTB-500,5\n"
	_, err := fixture.svc.ProcessCSV(context.Background(), fixture.vendorID, enums.TierResearch, strings.NewReader(csvBody))

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeHeaderMapping {
		t.Fatalf("expected header mapping error, got %v", err)
	}
	if len(fixture.offers.upserted) != 0 {
		t.Error("header failure must write zero offers")
	}
	if len(fixture.repo.created) != 1 {
		t.Fatalf("batch records = %d, want one failed record", len(fixture.repo.created))
	}
	record := fixture.repo.created[0]
	if record.Status != enums.UploadStatusFailed {
		t.Errorf("record status = %s, want failed", record.Status)
	}
	if record.RowCount != 2 || record.FailureCount != 2 {
		t.Errorf("record counts = %d/%d, want 2/2", record.RowCount, record.FailureCount)
	}
}

func TestProcessCSVRowPersistenceFailure(t *testing.T) {
	fixture := newUploadFixture(t, enums.TierResearch)
	fixture.offers.failPeptide = "TB-500"

	csvBody := strings.Join([]string{
		"peptide,price,size",
		"BPC-157,49.99,10",
		"TB-500,80,5",
		"GHK-Cu,35,50",
	}, "\n")

	result, err := fixture.svc.ProcessCSV(context.Background(), fixture.vendorID, enums.TierResearch, strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("ProcessCSV: %v", err)
	}

	if result.SuccessCount != 2 || result.FailureCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", result.SuccessCount, result.FailureCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].Line != 2 {
		t.Fatalf("errors = %v, want one line-2 error", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "persistence failed") {
		t.Errorf("message = %q", result.Errors[0].Message)
	}
	if result.Status != enums.UploadStatusCompleted {
		t.Error("partial persistence failure still completes the batch")
	}
}

func TestProcessCSVMixedBadRows(t *testing.T) {
	fixture := newUploadFixture(t, enums.TierTelehealth)

	csvBody := strings.Join([]string{
		"peptide,monthly price,mg per visit,visits,consult included",
		"Sema,299,2.5,4,yes",
		"Tirz,not-a-price,5,4,no",
		"Reta,399,0,4,",
	}, "\n")

	result, err := fixture.svc.ProcessCSV(context.Background(), fixture.vendorID, enums.TierTelehealth, strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("ProcessCSV: %v", err)
	}

	if result.SuccessCount != 1 || result.FailureCount != 2 {
		t.Fatalf("counts = %d/%d, want 1/2", result.SuccessCount, result.FailureCount)
	}
	if len(fixture.offers.upserted) != 1 {
		t.Fatalf("upserted = %d, want 1", len(fixture.offers.upserted))
	}
	offer := fixture.offers.upserted[0]
	if offer.TelehealthPricing == nil || offer.TelehealthPricing.TotalMG != 10 {
		t.Errorf("telehealth payload = %+v", offer.TelehealthPricing)
	}
	if !offer.TelehealthPricing.IncludesConsult {
		t.Error("consult flag lost")
	}
}

func TestProcessCSVEmptyFile(t *testing.T) {
	fixture := newUploadFixture(t, enums.TierResearch)

	_, err := fixture.svc.ProcessCSV(context.Background(), fixture.vendorID, enums.TierResearch, strings.NewReader(""))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessCSVRowCap(t *testing.T) {
	fixture := newUploadFixture(t, enums.TierResearch)

	svc, err := NewService(Params{
		Repo:    fixture.repo,
		Vendors: fixture.vendors,
		Offers:  fixture.offers,
		Metrics: metrics.NewIngestMetrics(prometheus.NewRegistry()),
		Samples: fixture.samples,
		Logger:  logger.New(logger.Options{Level: zerolog.ErrorLevel}),
		MaxRows: 2,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	csvBody := strings.Join([]string{
		"peptide,price,size",
		"BPC-157,49.99,10",
		"TB-500,120,50",
		"GHK-Cu,30,5",
	}, "\n")

	_, err = svc.ProcessCSV(context.Background(), fixture.vendorID, enums.TierResearch, strings.NewReader(csvBody))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for oversized file, got %v", err)
	}
	if len(fixture.offers.upserted) != 0 {
		t.Error("no rows may be written when the file exceeds the cap")
	}
}
