package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/transaction"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/id"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type RebuildConfig struct {
	MaxWeek          int
	FetchConcurrency int
	Workers          int
	LockTTL          time.Duration
	// TieBreak overrides the pick resolver heuristic. Nil keeps the default.
	TieBreak lineage.TieBreaker
	// DisableTieBreak skips the heuristic step entirely.
	DisableTieBreak bool
}

type RebuildResult struct {
	RunID            string
	FamilyKey        string
	LeaguesProcessed int
	EventsWritten    int
	Warnings         []lineage.Warning
	Duration         time.Duration
}

// RebuildService regenerates the event log of one league family from the
// upstream platform.
type RebuildService struct {
	provider   LeagueDataProvider
	families   *FamilyResolver
	leagueRepo league.Repository
	eventRepo  asset.Repository
	runRepo    rebuild.Repository
	writer     FamilyWriter
	locker     RebuildLocker
	idGen      id.Generator
	cfg        RebuildConfig
	logger     *logging.Logger
	now        func() time.Time
}

func NewRebuildService(
	provider LeagueDataProvider,
	families *FamilyResolver,
	leagueRepo league.Repository,
	eventRepo asset.Repository,
	runRepo rebuild.Repository,
	locker RebuildLocker,
	idGen id.Generator,
	cfg RebuildConfig,
	logger *logging.Logger,
) *RebuildService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if cfg.MaxWeek <= 0 {
		cfg.MaxWeek = 18
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 2
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}

	return &RebuildService{
		provider:   provider,
		families:   families,
		leagueRepo: leagueRepo,
		eventRepo:  eventRepo,
		runRepo:    runRepo,
		locker:     locker,
		idGen:      idGen,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// WithFamilyWriter makes persistence a single transaction over the league
// snapshot and the events.
func (s *RebuildService) WithFamilyWriter(writer FamilyWriter) *RebuildService {
	s.writer = writer
	return s
}

// leagueData is everything fetched for one league of the family.
type leagueData struct {
	league       league.League
	rosters      []league.Roster
	managers     []league.Manager
	owners       league.RosterOwnerMap
	transactions []transaction.Transaction
	tradedPicks  []transaction.TradedPick
	drafts       []draftData
	warnings     []lineage.Warning
}

type draftData struct {
	draft       transaction.Draft
	selections  []transaction.DraftSelection
	tradedPicks []transaction.TradedPick
}

// RebuildFamily fetches, decomposes and resolves the whole family of
// leagueID and replaces its stored events in one transaction. A failed
// rebuild leaves the previous events in place.
func (s *RebuildService) RebuildFamily(ctx context.Context, leagueID string) (RebuildResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RebuildService.RebuildFamily", attribute.String("league.id", leagueID))
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return RebuildResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	started := s.now()
	family, err := s.families.Resolve(ctx, leagueID)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrCycleDetected) {
			return RebuildResult{}, err
		}
		return RebuildResult{}, stageError(StageFetch, fmt.Errorf("resolve league family: %w", err))
	}

	familyKey := family.Key()
	span.SetAttributes(attribute.String("family.key", familyKey), attribute.Int("family.size", len(family.LeagueIDs)))

	release, acquired, err := s.locker.Acquire(ctx, familyKey, s.cfg.LockTTL)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("acquire rebuild lock: %w", err)
	}
	if !acquired {
		return RebuildResult{}, fmt.Errorf("%w: family=%s", ErrAlreadyRebuilding, familyKey)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "release rebuild lock failed", "family_key", familyKey, "error", err)
		}
	}()

	if flusher, ok := s.provider.(ResponseFlusher); ok {
		flusher.ClearCache()
	}

	run, err := s.startRun(ctx, family, started)
	if err != nil {
		return RebuildResult{}, err
	}

	result, err := s.rebuild(ctx, family, &run)
	result.RunID = run.ID
	result.FamilyKey = familyKey
	result.Duration = s.now().Sub(started)
	s.finishRun(ctx, run, result, err)
	if err != nil {
		return RebuildResult{}, err
	}

	s.logger.InfoContext(ctx, "league family rebuilt",
		"run_id", run.ID,
		"family_key", familyKey,
		"leagues_processed", result.LeaguesProcessed,
		"events_written", result.EventsWritten,
		"warnings", len(result.Warnings),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

func (s *RebuildService) rebuild(ctx context.Context, family league.Family, run *rebuild.Run) (RebuildResult, error) {
	run.Stage = string(StageFetch)
	data, err := s.fetchFamily(ctx, family)
	if err != nil {
		return RebuildResult{}, stageError(StageFetch, err)
	}

	run.Stage = string(StageDecompose)
	events, warnings, err := s.decompose(ctx, data)
	if err != nil {
		return RebuildResult{}, stageError(StageDecompose, err)
	}

	run.Stage = string(StageResolve)
	drafted, draftWarnings, err := s.resolveDrafts(ctx, data, events)
	if err != nil {
		return RebuildResult{}, stageError(StageResolve, err)
	}
	events = append(events, drafted...)
	warnings = append(warnings, draftWarnings...)

	maps := make(league.FamilyMaps, len(data))
	for _, d := range data {
		maps[d.league.ID] = d.owners
	}
	lineage.AnnotatePickOwners(events, family, maps)
	lineage.SortCanonical(events)

	for _, w := range warnings {
		s.logger.WarnContext(ctx, "lineage data quality warning",
			"code", w.Code,
			"league_id", w.LeagueID,
			"transaction_id", w.TransactionID,
			"message", w.Message,
		)
	}

	run.Stage = string(StagePersist)
	written, err := s.persist(ctx, family, data, events)
	if err != nil {
		return RebuildResult{Warnings: warnings}, stageError(StagePersist, err)
	}

	return RebuildResult{
		LeaguesProcessed: len(data),
		EventsWritten:    written,
		Warnings:         warnings,
	}, nil
}

// fetchFamily loads every league of the family. Leagues are fetched through
// a bounded pool; the upstream client's rate limiter spaces the requests.
func (s *RebuildService) fetchFamily(ctx context.Context, family league.Family) ([]leagueData, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RebuildService.fetchFamily")
	defer span.End()

	p := pool.NewWithResults[leagueData]().
		WithContext(ctx).
		WithMaxGoroutines(s.cfg.FetchConcurrency).
		WithCancelOnError().
		WithFirstError()
	for _, lg := range family.Leagues {
		lg := lg
		p.Go(func(ctx context.Context) (leagueData, error) {
			return s.fetchLeague(ctx, lg)
		})
	}

	out, err := p.Wait()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	order := make(map[string]int, len(family.LeagueIDs))
	for i, leagueID := range family.LeagueIDs {
		order[leagueID] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].league.ID] < order[out[j].league.ID] })
	return out, nil
}

func (s *RebuildService) fetchLeague(ctx context.Context, lg league.League) (leagueData, error) {
	data := leagueData{league: lg}
	warn := func(message string) {
		data.warnings = append(data.warnings, lineage.Warning{Code: lineage.WarnMissingUpstream, LeagueID: lg.ID, Message: message})
	}

	// The family was resolved before the response cache was flushed.
	current, err := s.provider.GetLeague(ctx, lg.ID)
	switch {
	case err == nil:
		data.league = current
	case !errors.Is(err, ErrNotFound):
		return leagueData{}, fmt.Errorf("get league league=%s: %w", lg.ID, err)
	}

	rosters, err := s.provider.GetRosters(ctx, lg.ID)
	if err != nil {
		return leagueData{}, fmt.Errorf("get rosters league=%s: %w", lg.ID, err)
	}
	data.rosters = rosters
	data.owners = league.BuildRosterOwnerMap(rosters)

	managers, err := s.provider.GetUsers(ctx, lg.ID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return leagueData{}, fmt.Errorf("get users league=%s: %w", lg.ID, err)
		}
		warn("user listing not found")
	}
	data.managers = managers

	seen := make(map[string]struct{})
	for week := 1; week <= s.cfg.MaxWeek; week++ {
		items, err := s.provider.GetTransactions(ctx, lg.ID, week)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				warn(fmt.Sprintf("transactions of week %d not found", week))
				continue
			}
			return leagueData{}, fmt.Errorf("get transactions league=%s week=%d: %w", lg.ID, week, err)
		}
		for _, tx := range items {
			if _, dup := seen[tx.ID]; dup {
				continue
			}
			seen[tx.ID] = struct{}{}
			data.transactions = append(data.transactions, tx)
		}
	}

	tradedPicks, err := s.provider.GetLeagueTradedPicks(ctx, lg.ID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return leagueData{}, fmt.Errorf("get traded picks league=%s: %w", lg.ID, err)
		}
		warn("league traded pick listing not found")
	}
	data.tradedPicks = tradedPicks

	drafts, err := s.provider.GetDrafts(ctx, lg.ID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return leagueData{}, fmt.Errorf("get drafts league=%s: %w", lg.ID, err)
		}
		warn("draft listing not found")
	}
	for _, d := range drafts {
		selections, err := s.provider.GetDraftPicks(ctx, d.ID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return leagueData{}, fmt.Errorf("get draft picks draft=%s: %w", d.ID, err)
			}
			warn(fmt.Sprintf("picks of draft %s not found", d.ID))
		}
		draftPicks, err := s.provider.GetDraftTradedPicks(ctx, d.ID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return leagueData{}, fmt.Errorf("get draft traded picks draft=%s: %w", d.ID, err)
			}
			warn(fmt.Sprintf("traded picks of draft %s not found", d.ID))
		}
		if d.Season == "" {
			d.Season = lg.Season
		}
		data.drafts = append(data.drafts, draftData{draft: d, selections: selections, tradedPicks: draftPicks})
	}
	sort.SliceStable(data.drafts, func(i, j int) bool {
		return data.drafts[i].draft.StartTime < data.drafts[j].draft.StartTime
	})

	return data, nil
}

// decompose turns the transactions of every league into events. Leagues are
// independent, so they run on a worker pool.
func (s *RebuildService) decompose(ctx context.Context, data []leagueData) ([]asset.Event, []lineage.Warning, error) {
	workers, err := ants.NewPool(s.cfg.Workers)
	if err != nil {
		return nil, nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	perLeague := make([][]asset.Event, len(data))
	perLeagueWarnings := make([][]lineage.Warning, len(data))

	var wg sync.WaitGroup
	for i := range data {
		i := i
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			d := data[i]
			warnings := append([]lineage.Warning(nil), d.warnings...)
			events := make([]asset.Event, 0, len(d.transactions)*2)
			for _, tx := range d.transactions {
				evs, ws := lineage.Decompose(tx, d.league, d.owners)
				events = append(events, evs...)
				warnings = append(warnings, ws...)
			}
			perLeague[i] = events
			perLeagueWarnings[i] = warnings
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, nil, fmt.Errorf("submit decompose task: %w", err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		events   []asset.Event
		warnings []lineage.Warning
	)
	for i := range data {
		events = append(events, perLeague[i]...)
		warnings = append(warnings, perLeagueWarnings[i]...)
	}
	return events, warnings, nil
}

// resolveDrafts runs after every league is decomposed: pick candidates are
// built from the pick movements of the whole family.
func (s *RebuildService) resolveDrafts(ctx context.Context, data []leagueData, decomposed []asset.Event) ([]asset.Event, []lineage.Warning, error) {
	pickMoves := make([]asset.Event, 0)
	for _, ev := range decomposed {
		if ev.Kind == asset.KindPick {
			pickMoves = append(pickMoves, ev)
		}
	}

	var leagueTradedPicks []transaction.TradedPick
	for _, d := range data {
		leagueTradedPicks = append(leagueTradedPicks, d.tradedPicks...)
	}

	// Oldest season first so earlier drafts are resolved before later ones.
	ordered := append([]leagueData(nil), data...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].league.Season < ordered[j].league.Season })

	var (
		events   []asset.Event
		warnings []lineage.Warning
	)
	for _, d := range ordered {
		for _, dd := range d.drafts {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			if len(dd.selections) == 0 {
				continue
			}

			candidates, candidateWarnings := lineage.BuildPickCandidates(lineage.CandidateInput{
				Draft:             dd.draft,
				Owners:            d.owners,
				DraftTradedPicks:  dd.tradedPicks,
				PickTradeEvents:   pickMoves,
				LeagueTradedPicks: leagueTradedPicks,
			})
			warnings = append(warnings, candidateWarnings...)
			resolver := lineage.NewPickResolver(candidates)
			if s.cfg.TieBreak != nil {
				resolver.TieBreak = s.cfg.TieBreak
			}
			if s.cfg.DisableTieBreak {
				resolver.TieBreak = nil
			}

			evs, ws := lineage.DecomposeDraft(dd.draft, d.league, d.owners, dd.selections, resolver)
			events = append(events, evs...)
			warnings = append(warnings, ws...)
		}
	}

	return events, warnings, nil
}

func (s *RebuildService) persist(ctx context.Context, family league.Family, data []leagueData, events []asset.Event) (int, error) {
	snapshot := league.Snapshot{}
	managerSeen := make(map[string]struct{})
	for _, d := range data {
		snapshot.Leagues = append(snapshot.Leagues, d.league)
		snapshot.Rosters = append(snapshot.Rosters, d.rosters...)
		for _, m := range d.managers {
			if _, ok := managerSeen[m.ID]; ok {
				continue
			}
			managerSeen[m.ID] = struct{}{}
			snapshot.Managers = append(snapshot.Managers, m)
		}
	}
	if s.writer != nil {
		written, err := s.writer.WriteFamily(ctx, snapshot, family.LeagueIDs, events)
		if err != nil {
			return 0, fmt.Errorf("write family: %w", err)
		}
		return written, nil
	}

	if err := s.leagueRepo.SaveSnapshot(ctx, snapshot); err != nil {
		return 0, fmt.Errorf("save league snapshot: %w", err)
	}

	written, err := s.eventRepo.ReplaceFamily(ctx, family.LeagueIDs, events)
	if err != nil {
		return 0, fmt.Errorf("replace family events: %w", err)
	}
	return written, nil
}

func (s *RebuildService) startRun(ctx context.Context, family league.Family, started time.Time) (rebuild.Run, error) {
	runID, err := s.idGen.NewID()
	if err != nil {
		return rebuild.Run{}, fmt.Errorf("generate rebuild run id: %w", err)
	}

	run := rebuild.Run{
		ID:           runID,
		FamilyKey:    family.Key(),
		HeadLeagueID: family.Head(),
		Status:       rebuild.StatusRunning,
		Stage:        string(StageFetch),
		StartedAt:    started.UTC(),
		TraceID:      trace.SpanContextFromContext(ctx).TraceID().String(),
	}
	if s.runRepo == nil {
		return run, nil
	}
	if err := s.runRepo.Start(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "record rebuild run start failed", "run_id", runID, "error", err)
	}
	return run, nil
}

func (s *RebuildService) finishRun(ctx context.Context, run rebuild.Run, result RebuildResult, runErr error) {
	if s.runRepo == nil {
		return
	}

	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.LeaguesProcessed = result.LeaguesProcessed
	run.EventsWritten = result.EventsWritten
	run.Warnings = make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		run.Warnings = append(run.Warnings, w.String())
	}
	run.Status = rebuild.StatusSucceeded
	if runErr != nil {
		run.Status = rebuild.StatusFailed
		run.ErrorMessage = runErr.Error()
		if stage, ok := FailedStage(runErr); ok {
			run.Stage = string(stage)
		}
	}

	if err := s.runRepo.Finish(context.WithoutCancel(ctx), run); err != nil {
		s.logger.WarnContext(ctx, "record rebuild run finish failed", "run_id", run.ID, "error", err)
	}
}

// ListRuns returns the most recent rebuild runs of the family of leagueID.
func (s *RebuildService) ListRuns(ctx context.Context, leagueID string, limit int) ([]rebuild.Run, error) {
	family, err := s.families.Resolve(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if s.runRepo == nil {
		return nil, nil
	}

	runs, err := s.runRepo.ListRecent(ctx, family.Key(), limit)
	if err != nil {
		return nil, fmt.Errorf("list rebuild runs: %w", err)
	}
	return runs, nil
}
