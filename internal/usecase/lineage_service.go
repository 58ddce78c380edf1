package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/lineage"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// futurePickSeasons is how far ahead of the newest season picks can be traded.
const futurePickSeasons = 3

type LineageConfig struct {
	// TradeTreeMaxDepth bounds trade tree recursion; zero means unlimited.
	TradeTreeMaxDepth int
}

// LineageService answers timeline, trade tree and network queries over the
// stored events of a league family.
type LineageService struct {
	families   *FamilyResolver
	eventRepo  asset.Repository
	playerRepo player.Repository
	cfg        LineageConfig
	logger     *logging.Logger
}

func NewLineageService(
	families *FamilyResolver,
	eventRepo asset.Repository,
	playerRepo player.Repository,
	cfg LineageConfig,
	logger *logging.Logger,
) *LineageService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TradeTreeMaxDepth < 0 {
		cfg.TradeTreeMaxDepth = 0
	}
	return &LineageService{
		families:   families,
		eventRepo:  eventRepo,
		playerRepo: playerRepo,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *LineageService) GetTimeline(ctx context.Context, assetRef, leagueID string) ([]asset.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineageService.GetTimeline", assetSpanAttrs(assetRef, leagueID)...)
	defer span.End()

	ref, family, err := s.prepare(ctx, assetRef, leagueID)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByAsset(ctx, family.LeagueIDs, ref)
	if err != nil {
		return nil, fmt.Errorf("list asset events: %w", err)
	}
	if len(events) == 0 {
		if err := s.requireKnownAsset(ctx, ref, family); err != nil {
			return nil, err
		}
	}
	lineage.SortTimeline(events)

	return events, nil
}

func (s *LineageService) GetTradeTree(ctx context.Context, assetRef, leagueID string) (lineage.TreeNode, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineageService.GetTradeTree", assetSpanAttrs(assetRef, leagueID)...)
	defer span.End()

	ref, family, err := s.prepare(ctx, assetRef, leagueID)
	if err != nil {
		return lineage.TreeNode{}, err
	}

	src := newRepositoryEventSource(s.eventRepo, family.LeagueIDs)
	own, err := src.AssetEvents(ctx, ref)
	if err != nil {
		return lineage.TreeNode{}, fmt.Errorf("list asset events: %w", err)
	}
	if len(own) == 0 {
		if err := s.requireKnownAsset(ctx, ref, family); err != nil {
			return lineage.TreeNode{}, err
		}
	}

	tree, err := lineage.BuildTradeTree(ctx, src, ref, s.cfg.TradeTreeMaxDepth)
	if err != nil {
		return lineage.TreeNode{}, fmt.Errorf("build trade tree: %w", err)
	}

	return tree, nil
}

func (s *LineageService) GetNetwork(ctx context.Context, assetRef, leagueID string, depth int) (lineage.Network, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineageService.GetNetwork",
		append(assetSpanAttrs(assetRef, leagueID), attribute.Int("network.depth", depth))...)
	defer span.End()

	if err := lineage.ValidateDepth(depth); err != nil {
		return lineage.Network{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	ref, family, err := s.prepare(ctx, assetRef, leagueID)
	if err != nil {
		return lineage.Network{}, err
	}

	events, err := s.eventRepo.ListByFamily(ctx, family.LeagueIDs)
	if err != nil {
		return lineage.Network{}, fmt.Errorf("list family events: %w", err)
	}
	if !mentions(events, ref) {
		if err := s.requireKnownAsset(ctx, ref, family); err != nil {
			return lineage.Network{}, err
		}
	}

	network, err := lineage.BuildNetwork(ctx, lineage.NewEventIndex(events), ref, depth)
	if err != nil {
		if errors.Is(err, lineage.ErrInvalidDepth) {
			return lineage.Network{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return lineage.Network{}, fmt.Errorf("build network: %w", err)
	}

	s.labelPlayers(ctx, &network)
	return network, nil
}

func (s *LineageService) prepare(ctx context.Context, assetRef, leagueID string) (asset.Ref, league.Family, error) {
	ref, err := asset.ParseRef(assetRef)
	if err != nil {
		return asset.Ref{}, league.Family{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if strings.TrimSpace(leagueID) == "" {
		return asset.Ref{}, league.Family{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	family, err := s.families.Resolve(ctx, leagueID)
	if err != nil {
		return asset.Ref{}, league.Family{}, err
	}
	return ref, family, nil
}

// requireKnownAsset is consulted when ref has no events in the family. A
// player is known when the catalog has it; a pick is known when its season
// and original roster fit the family.
func (s *LineageService) requireKnownAsset(ctx context.Context, ref asset.Ref, family league.Family) error {
	switch ref.Kind {
	case asset.KindPlayer:
		if s.playerRepo != nil {
			players, err := s.playerRepo.GetByIDs(ctx, []string{ref.PlayerID})
			if err != nil {
				return fmt.Errorf("look up player: %w", err)
			}
			for _, p := range players {
				if p.ID == ref.PlayerID {
					return nil
				}
			}
		}
	case asset.KindPick:
		if pickFitsFamily(ref.Pick, family) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrAssetNotFound, ref.Key())
}

// pickFitsFamily accepts seasons from the oldest family season up to
// futurePickSeasons past the newest one.
func pickFitsFamily(pick asset.PickIdentity, family league.Family) bool {
	season, err := strconv.Atoi(pick.Season)
	if err != nil {
		return false
	}

	oldest, newest, rosters := 0, 0, 0
	for _, lg := range family.Leagues {
		value, err := strconv.Atoi(lg.Season)
		if err != nil {
			continue
		}
		if oldest == 0 || value < oldest {
			oldest = value
		}
		if value > newest {
			newest = value
		}
		rosters = max(rosters, lg.TotalRosters)
	}
	if oldest == 0 || season < oldest || season > newest+futurePickSeasons {
		return false
	}
	return rosters == 0 || pick.OriginalRosterID <= rosters
}

func mentions(events []asset.Event, ref asset.Ref) bool {
	key := ref.Key()
	for _, ev := range events {
		if ev.Ref().Key() == key {
			return true
		}
	}
	return false
}

// labelPlayers swaps player ids for names when the player is known. A failed
// lookup keeps the default labels.
func (s *LineageService) labelPlayers(ctx context.Context, network *lineage.Network) {
	if s.playerRepo == nil {
		return
	}

	ids := make([]string, 0, len(network.Nodes))
	for _, node := range network.Nodes {
		if node.Asset.Kind == asset.KindPlayer {
			ids = append(ids, node.Asset.PlayerID)
		}
	}
	if len(ids) == 0 {
		return
	}

	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.WarnContext(ctx, "load player labels failed", "error", err)
		return
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName()
	}
	for i := range network.Nodes {
		node := &network.Nodes[i]
		if name, ok := names[node.Asset.PlayerID]; ok && node.Asset.Kind == asset.KindPlayer {
			node.Label = name
		}
	}
}

// repositoryEventSource reads events lazily from the store, scoped to one
// family, for walks that touch only a small part of the log.
type repositoryEventSource struct {
	repo      asset.Repository
	leagueIDs []string
}

func newRepositoryEventSource(repo asset.Repository, leagueIDs []string) *repositoryEventSource {
	return &repositoryEventSource{repo: repo, leagueIDs: leagueIDs}
}

func (s *repositoryEventSource) AssetEvents(ctx context.Context, ref asset.Ref) ([]asset.Event, error) {
	events, err := s.repo.ListByAsset(ctx, s.leagueIDs, ref)
	if err != nil {
		return nil, err
	}
	lineage.SortTimeline(events)
	return events, nil
}

func (s *repositoryEventSource) TransactionEvents(ctx context.Context, transactionID string) ([]asset.Event, error) {
	return s.repo.ListByTransactions(ctx, s.leagueIDs, []string{transactionID})
}
