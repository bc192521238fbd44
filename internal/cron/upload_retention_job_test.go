package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/peptracker/peptracker-backend/pkg/logger"
)

type stubRetentionRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (s *stubRetentionRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel})
}

func TestUploadRetentionJobCutoff(t *testing.T) {
	repo := &stubRetentionRepo{deleted: 12}
	job, err := NewUploadRetentionJob(UploadRetentionJobParams{
		Logger:     testLogger(),
		Repository: repo,
		MaxAgeDays: 30,
	})
	if err != nil {
		t.Fatalf("NewUploadRetentionJob: %v", err)
	}

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	job.(*uploadRetentionJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := fixed.Add(-30 * 24 * time.Hour)
	if !repo.cutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", repo.cutoff, want)
	}
}

func TestUploadRetentionJobDefaultsMaxAge(t *testing.T) {
	job, err := NewUploadRetentionJob(UploadRetentionJobParams{
		Logger:     testLogger(),
		Repository: &stubRetentionRepo{},
	})
	if err != nil {
		t.Fatalf("NewUploadRetentionJob: %v", err)
	}
	if got := job.(*uploadRetentionJob).maxAge; got != defaultUploadRetentionDays {
		t.Errorf("maxAge = %d, want %d", got, defaultUploadRetentionDays)
	}
}

func TestUploadRetentionJobPropagatesError(t *testing.T) {
	repo := &stubRetentionRepo{err: errors.New("deadlock")}
	job, _ := NewUploadRetentionJob(UploadRetentionJobParams{
		Logger:     testLogger(),
		Repository: repo,
	})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
