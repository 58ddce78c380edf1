package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
)

type recordingRebuilder struct {
	mu    sync.Mutex
	calls []string
	errs  map[string]error
}

func (r *recordingRebuilder) RebuildFamily(_ context.Context, leagueID string) (RebuildResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, leagueID)
	if err := r.errs[leagueID]; err != nil {
		return RebuildResult{}, err
	}
	return RebuildResult{FamilyKey: leagueID, EventsWritten: 1}, nil
}

func TestRebuildScheduler_RunOnceContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	rebuilder := &recordingRebuilder{errs: map[string]error{
		"L1": stageError(StageFetch, ErrDependencyUnavailable),
		"L2": ErrAlreadyRebuilding,
	}}
	scheduler := NewRebuildScheduler(rebuilder, []string{"L1", " L2", "", "L3", "L1"}, 0, logging.NewNop())

	results := scheduler.RunOnce(context.Background())
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !errors.Is(results[0].Err, ErrDependencyUnavailable) {
		t.Fatalf("unexpected first result: %v", results[0].Err)
	}
	if results[2].Err != nil || results[2].Result.EventsWritten != 1 {
		t.Fatalf("L3 should have been rebuilt: %+v", results[2])
	}
}

func TestRebuildScheduler_DisabledWithoutLeagues(t *testing.T) {
	t.Parallel()

	rebuilder := &recordingRebuilder{}
	scheduler := NewRebuildScheduler(rebuilder, nil, 0, logging.NewNop())
	if scheduler.Enabled() {
		t.Fatalf("scheduler without leagues must be disabled")
	}
	scheduler.Run(context.Background())
	if len(rebuilder.calls) != 0 {
		t.Fatalf("disabled scheduler must not rebuild")
	}
}

func TestRebuildScheduler_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rebuilder := &recordingRebuilder{}
	NewRebuildScheduler(rebuilder, []string{"L1"}, 0, logging.NewNop()).Run(ctx)
	if len(rebuilder.calls) != 0 {
		t.Fatalf("cancelled scheduler must not rebuild, got %v", rebuilder.calls)
	}
}
