package cron

import (
	"context"
	"fmt"

	"github.com/peptracker/peptracker-backend/pkg/logger"
)

type StatsRefreshJobParams struct {
	Logger *logger.Logger
	Stats  statsRefresher
}

type statsRefresher interface {
	RefreshAll(ctx context.Context) error
}

// NewStatsRefreshJob recomputes the per-peptide price aggregates from the
// current set of verified offers.
func NewStatsRefreshJob(params StatsRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stats == nil {
		return nil, fmt.Errorf("stats service required")
	}
	return &statsRefreshJob{logg: params.Logger, stats: params.Stats}, nil
}

type statsRefreshJob struct {
	logg  *logger.Logger
	stats statsRefresher
}

func (j *statsRefreshJob) Name() string { return "stats-refresh" }

func (j *statsRefreshJob) Run(ctx context.Context) error {
	if err := j.stats.RefreshAll(ctx); err != nil {
		return fmt.Errorf("stats refresh: %w", err)
	}
	return nil
}
