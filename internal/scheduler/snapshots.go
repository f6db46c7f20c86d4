package scheduler

import (
	"context"
	"time"

	"folio-backend/internal/application/portfolios"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SnapshotJob writes a daily valuation snapshot for every portfolio. One
// portfolio failing (e.g. all its price lookups erroring) is logged and does
// not stop the sweep.
type SnapshotJob struct {
	Portfolios *portfolios.Service
	Timeout    time.Duration

	log zerolog.Logger
}

func NewSnapshotJob(svc *portfolios.Service) *SnapshotJob {
	return &SnapshotJob{
		Portfolios: svc,
		Timeout:    10 * time.Minute,
		log:        log.With().Str("component", "snapshot_job").Logger(),
	}
}

func (j *SnapshotJob) Name() string {
	return "portfolio_snapshots"
}

func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.Timeout)
	defer cancel()

	ids, err := j.Portfolios.ListIDs(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, id := range ids {
		if _, err := j.Portfolios.CreateSnapshot(ctx, id); err != nil {
			failed++
			j.log.Warn().Err(err).Str("portfolio_id", id.String()).Msg("Snapshot failed")
		}
	}
	j.log.Info().Int("total", len(ids)).Int("failed", failed).Msg("Snapshot sweep finished")
	return nil
}
