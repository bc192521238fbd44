package uploads

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/peptracker/peptracker-backend/internal/ingest"
	"github.com/peptracker/peptracker-backend/pkg/db/models"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	pkgerrors "github.com/peptracker/peptracker-backend/pkg/errors"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/metrics"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
)

// Service runs CSV price uploads end to end and exposes batch history.
type Service interface {
	ProcessCSV(ctx context.Context, vendorID uuid.UUID, tier enums.Tier, file io.Reader) (*UploadResultDTO, error)
	GetUpload(ctx context.Context, id uuid.UUID) (*UploadDTO, error)
	ListUploads(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*UploadListResult, error)
}

type vendorReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type offerUpserter interface {
	Upsert(ctx context.Context, offer *models.VendorOffer) (*models.VendorOffer, error)
}

type uploadRepository interface {
	Create(ctx context.Context, upload *models.VendorPriceUpload) (*models.VendorPriceUpload, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorPriceUpload, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.VendorPriceUpload, string, error)
}

const defaultMaxRows = 5000

type service struct {
	repo    uploadRepository
	vendors vendorReader
	offers  offerUpserter
	metrics *metrics.IngestMetrics
	samples *metrics.SampleRing
	logg    *logger.Logger
	maxRows int
	now     func() time.Time
}

// Params collects the dependencies for the upload service.
type Params struct {
	Repo    uploadRepository
	Vendors vendorReader
	Offers  offerUpserter
	Metrics *metrics.IngestMetrics
	Samples *metrics.SampleRing
	Logger  *logger.Logger
	MaxRows int
}

// NewService constructs an upload service instance.
func NewService(p Params) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("upload repository required")
	}
	if p.Vendors == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if p.Offers == nil {
		return nil, fmt.Errorf("offer repository required")
	}
	if p.Metrics == nil {
		return nil, fmt.Errorf("ingest metrics required")
	}
	if p.Samples == nil {
		return nil, fmt.Errorf("sample ring required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxRows := p.MaxRows
	if maxRows <= 0 {
		maxRows = defaultMaxRows
	}
	return &service{
		repo:    p.Repo,
		vendors: p.Vendors,
		offers:  p.Offers,
		metrics: p.Metrics,
		samples: p.Samples,
		logg:    p.Logger,
		maxRows: maxRows,
		now:     time.Now,
	}, nil
}

// ProcessCSV ingests one price file synchronously. Rows run in file order so
// error line numbers are deterministic; each surviving row is upserted on its
// own, and a write failure sinks only that row. The batch record is written
// last, whatever the outcome.
func (s *service) ProcessCSV(ctx context.Context, vendorID uuid.UUID, tier enums.Tier, file io.Reader) (*UploadResultDTO, error) {
	if !tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid tier %q", tier))
	}

	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vendor")
	}
	if !vendor.SupportsTier(tier) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("vendor does not submit prices for tier %s", tier))
	}

	headers, rows, err := readCSV(file)
	if err != nil {
		return nil, err
	}
	if len(rows) > s.maxRows {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("csv has %d data rows, limit is %d", len(rows), s.maxRows))
	}

	started := s.now()
	ctx = s.logg.WithVendorID(ctx, vendorID.String())

	result, err := ingest.Process(headers, rows, tier)
	if err != nil {
		var hmErr *ingest.HeaderMappingError
		if errors.As(err, &hmErr) {
			return nil, s.failBatch(ctx, vendorID, tier, len(rows), hmErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "process upload")
	}

	batchID := uuid.New()
	ctx = s.logg.WithBatchID(ctx, batchID.String())
	for _, row := range result.ValidRows {
		offer := offerFromRow(vendorID, batchID, row)
		if _, err := s.offers.Upsert(ctx, offer); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("offer upsert failed on line %d", row.Line), err)
			result.AppendRowError(row.Line, fmt.Sprintf("persistence failed: %v", err))
		}
	}

	upload := &models.VendorPriceUpload{
		ID:           batchID,
		VendorID:     vendorID,
		Tier:         tier,
		RowCount:     result.Summary.TotalRows,
		SuccessCount: result.Summary.SuccessCount,
		FailureCount: result.Summary.FailureCount,
		Errors:       result.Summary.Errors,
		Status:       enums.UploadStatusCompleted,
	}
	if _, err := s.repo.Create(ctx, upload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record upload batch")
	}

	duration := s.now().Sub(started)
	s.metrics.ObserveBatch(tier.String(), enums.UploadStatusCompleted.String(), duration)
	s.metrics.AddRows(tier.String(), "success", result.Summary.SuccessCount)
	s.metrics.AddRows(tier.String(), "failure", result.Summary.FailureCount)
	s.samples.Record(metrics.BatchSample{
		Tier:         tier.String(),
		RowCount:     result.Summary.TotalRows,
		FailureCount: result.Summary.FailureCount,
		Duration:     duration,
		At:           started,
	})

	s.logg.Info(ctx, fmt.Sprintf("upload processed: %d rows, %d ok, %d failed",
		result.Summary.TotalRows, result.Summary.SuccessCount, result.Summary.FailureCount))

	return &UploadResultDTO{
		UploadDTO: toUploadDTO(upload),
	}, nil
}

// failBatch records a header-mapping rejection and returns the typed error
// the controller renders as an unprocessable batch. No rows are written.
func (s *service) failBatch(ctx context.Context, vendorID uuid.UUID, tier enums.Tier, rowCount int, hmErr *ingest.HeaderMappingError) error {
	upload := &models.VendorPriceUpload{
		VendorID:     vendorID,
		Tier:         tier,
		RowCount:     rowCount,
		FailureCount: rowCount,
		Errors:       nil,
		Status:       enums.UploadStatusFailed,
	}
	if _, err := s.repo.Create(ctx, upload); err != nil {
		s.logg.Error(ctx, "record failed upload batch", err)
	}
	s.metrics.ObserveBatch(tier.String(), enums.UploadStatusFailed.String(), 0)

	return pkgerrors.New(pkgerrors.CodeHeaderMapping, hmErr.Error()).
		WithDetails(map[string]any{"missing_columns": hmErr.Missing})
}

func (s *service) GetUpload(ctx context.Context, id uuid.UUID) (*UploadDTO, error) {
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "upload not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load upload")
	}
	dto := toUploadDTO(upload)
	return &dto, nil
}

func (s *service) ListUploads(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*UploadListResult, error) {
	rows, nextCursor, err := s.repo.ListByVendor(ctx, vendorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list uploads")
	}
	dtos := make([]UploadDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toUploadDTO(&rows[i]))
	}
	return &UploadListResult{Uploads: dtos, NextCursor: nextCursor}, nil
}

// readCSV pulls the whole file into memory: header first, then data rows.
// Ragged rows are tolerated; the parser treats short rows as blanks.
func readCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed csv")
	}
	if len(records) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty")
	}
	return records[0], records[1:], nil
}
