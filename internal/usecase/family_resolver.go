package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/cache"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
)

// FamilyResolver follows previous-season pointers from a starting league.
// Resolved families are kept for the lifetime of the resolver.
type FamilyResolver struct {
	source LeagueSource
	cache  *cache.Store
	logger *logging.Logger
}

func NewFamilyResolver(source LeagueSource, logger *logging.Logger) *FamilyResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &FamilyResolver{
		source: source,
		cache:  cache.NewStore(0),
		logger: logger,
	}
}

// Resolve returns the chain starting at leagueID, newest league first.
func (r *FamilyResolver) Resolve(ctx context.Context, leagueID string) (league.Family, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.Family{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	return cache.Load(ctx, r.cache, "family:"+leagueID, func(ctx context.Context) (league.Family, error) {
		return r.walk(ctx, leagueID)
	})
}

// Clear drops every resolved family.
func (r *FamilyResolver) Clear() {
	r.cache.Clear()
}

func (r *FamilyResolver) walk(ctx context.Context, leagueID string) (league.Family, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FamilyResolver.walk")
	defer span.End()

	head, err := r.source.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return league.Family{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
		}
		return league.Family{}, fmt.Errorf("get league %s: %w", leagueID, err)
	}

	family := league.Family{
		LeagueIDs: []string{head.ID},
		Leagues:   []league.League{head},
	}
	visited := map[string]struct{}{head.ID: {}}

	current := head
	for current.HasPrevious() {
		prevID := strings.TrimSpace(current.PreviousLeagueID)
		if _, seen := visited[prevID]; seen {
			return league.Family{}, fmt.Errorf("%w: league %s points back to %s", ErrCycleDetected, current.ID, prevID)
		}

		prev, err := r.source.GetLeague(ctx, prevID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				r.logger.WarnContext(ctx, "previous league not found, family chain ends early",
					"league_id", current.ID,
					"previous_league_id", prevID,
				)
				break
			}
			return league.Family{}, fmt.Errorf("get previous league %s: %w", prevID, err)
		}

		visited[prev.ID] = struct{}{}
		family.LeagueIDs = append(family.LeagueIDs, prev.ID)
		family.Leagues = append(family.Leagues, prev)
		current = prev
	}

	return family, nil
}
