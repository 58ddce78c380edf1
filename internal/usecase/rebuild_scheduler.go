package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
)

type familyRebuilder interface {
	RebuildFamily(ctx context.Context, leagueID string) (RebuildResult, error)
}

type ScheduledRebuild struct {
	LeagueID string
	Result   RebuildResult
	Err      error
}

// RebuildScheduler rebuilds a fixed set of leagues on an interval.
type RebuildScheduler struct {
	rebuilder familyRebuilder
	leagueIDs []string
	interval  time.Duration
	logger    *logging.Logger
}

func NewRebuildScheduler(rebuilder familyRebuilder, leagueIDs []string, interval time.Duration, logger *logging.Logger) *RebuildScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ids := make([]string, 0, len(leagueIDs))
	seen := make(map[string]struct{}, len(leagueIDs))
	for _, id := range leagueIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return &RebuildScheduler{
		rebuilder: rebuilder,
		leagueIDs: ids,
		interval:  interval,
		logger:    logger,
	}
}

func (s *RebuildScheduler) Enabled() bool {
	return len(s.leagueIDs) > 0
}

// Run rebuilds immediately and then on every tick until ctx is done.
func (s *RebuildScheduler) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce rebuilds every configured league in order. A failing league does
// not stop the others.
func (s *RebuildScheduler) RunOnce(ctx context.Context) []ScheduledRebuild {
	out := make([]ScheduledRebuild, 0, len(s.leagueIDs))
	for _, leagueID := range s.leagueIDs {
		if ctx.Err() != nil {
			break
		}

		result, err := s.rebuilder.RebuildFamily(ctx, leagueID)
		out = append(out, ScheduledRebuild{LeagueID: leagueID, Result: result, Err: err})
		switch {
		case err == nil:
		case errors.Is(err, ErrAlreadyRebuilding):
			s.logger.InfoContext(ctx, "scheduled rebuild skipped, family already rebuilding", "league_id", leagueID)
		default:
			stage, _ := FailedStage(err)
			s.logger.ErrorContext(ctx, "scheduled rebuild failed", "league_id", leagueID, "stage", string(stage), "error", err)
		}
	}
	return out
}
