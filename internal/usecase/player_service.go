package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
)

const playerUpsertBatchSize = 500

type PlayerSource interface {
	GetPlayers(ctx context.Context) ([]player.Player, error)
}

type SyncPlayersResult struct {
	Fetched int
	Written int
	Skipped int
}

type PlayerService struct {
	source     PlayerSource
	playerRepo player.Repository
	logger     *logging.Logger
}

func NewPlayerService(source PlayerSource, playerRepo player.Repository, logger *logging.Logger) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerService{
		source:     source,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

// SyncPlayers refreshes the stored player directory from upstream.
func (s *PlayerService) SyncPlayers(ctx context.Context) (SyncPlayersResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.SyncPlayers")
	defer span.End()

	players, err := s.source.GetPlayers(ctx)
	if err != nil {
		return SyncPlayersResult{}, fmt.Errorf("fetch players: %w", err)
	}

	result := SyncPlayersResult{Fetched: len(players)}
	valid := make([]player.Player, 0, len(players))
	for _, p := range players {
		if err := p.Validate(); err != nil {
			result.Skipped++
			continue
		}
		valid = append(valid, p)
	}

	for start := 0; start < len(valid); start += playerUpsertBatchSize {
		end := min(start+playerUpsertBatchSize, len(valid))
		if err := s.playerRepo.UpsertPlayers(ctx, valid[start:end]); err != nil {
			return result, fmt.Errorf("upsert players: %w", err)
		}
		result.Written += end - start
	}

	if result.Skipped > 0 {
		s.logger.WarnContext(ctx, "skipped invalid player records", "count", result.Skipped)
	}
	s.logger.InfoContext(ctx, "players synced", "fetched", result.Fetched, "written", result.Written)
	return result, nil
}

func (s *PlayerService) GetPlayers(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetPlayers")
	defer span.End()

	ids := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: player ids are required", ErrInvalidInput)
	}

	players, err := s.playerRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}
	return players, nil
}
