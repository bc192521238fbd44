package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/peptracker/peptracker-backend/pkg/logger"
)

const defaultUploadRetentionDays = 90

type UploadRetentionJobParams struct {
	Logger     *logger.Logger
	Repository uploadRetentionRepo
	MaxAgeDays int
}

type uploadRetentionRepo interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewUploadRetentionJob prunes old upload batch records. Offers keep their
// upload_batch_id stamp; only the audit rows age out.
func NewUploadRetentionJob(params UploadRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("upload repository required")
	}
	maxAge := params.MaxAgeDays
	if maxAge <= 0 {
		maxAge = defaultUploadRetentionDays
	}
	return &uploadRetentionJob{
		logg:   params.Logger,
		repo:   params.Repository,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

type uploadRetentionJob struct {
	logg   *logger.Logger
	repo   uploadRetentionRepo
	maxAge int
	now    func() time.Time
}

func (j *uploadRetentionJob) Name() string { return "upload-retention" }

func (j *uploadRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.maxAge) * 24 * time.Hour)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("upload retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"max_age_days": j.maxAge,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "upload retention complete")
	return nil
}
