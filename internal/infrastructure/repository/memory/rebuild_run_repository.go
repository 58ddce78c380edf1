package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
)

type RebuildRunRepository struct {
	mu   sync.RWMutex
	runs map[string]rebuild.Run
}

func NewRebuildRunRepository() *RebuildRunRepository {
	return &RebuildRunRepository{runs: make(map[string]rebuild.Run)}
}

func (r *RebuildRunRepository) Start(_ context.Context, run rebuild.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; ok {
		return fmt.Errorf("rebuild run %s already exists", run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

func (r *RebuildRunRepository) Finish(_ context.Context, run rebuild.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return fmt.Errorf("rebuild run %s not found", run.ID)
	}
	r.runs[run.ID] = run
	return nil
}

func (r *RebuildRunRepository) ListRecent(_ context.Context, familyKey string, limit int) ([]rebuild.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]rebuild.Run, 0)
	for _, run := range r.runs {
		if run.FamilyKey == familyKey {
			out = append(out, run)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
