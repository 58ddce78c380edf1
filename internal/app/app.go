package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/dynasty-lineage/external/sleeper"
	"github.com/riskibarqy/dynasty-lineage/internal/config"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/asset"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/league"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/player"
	"github.com/riskibarqy/dynasty-lineage/internal/domain/rebuild"
	"github.com/riskibarqy/dynasty-lineage/internal/infrastructure/lock"
	cacherepo "github.com/riskibarqy/dynasty-lineage/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/dynasty-lineage/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/dynasty-lineage/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/dynasty-lineage/internal/interfaces/httpapi"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/cache"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/id"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/resilience"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
)

// Services holds the wired use cases shared by the HTTP server and the CLI.
type Services struct {
	Rebuild   *usecase.RebuildService
	Lineage   *usecase.LineageService
	Players   *usecase.PlayerService
	Scheduler *usecase.RebuildScheduler

	closers []func() error
}

type repositories struct {
	leagues league.Repository
	events  asset.Repository
	players player.Repository
	runs    rebuild.Repository
	// writer is nil for memory repositories.
	writer  usecase.FamilyWriter
}

func NewServices(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Default()
	}
	services := &Services{}

	repos, err := services.openRepositories(cfg, logger)
	if err != nil {
		_ = services.Close()
		return nil, err
	}

	locker, err := services.openLocker(ctx, cfg, logger)
	if err != nil {
		_ = services.Close()
		return nil, err
	}

	client := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:            cfg.SleeperBaseURL,
		Timeout:            cfg.SleeperTimeout,
		MaxRetries:         cfg.SleeperMaxRetries,
		RetryBaseDelay:     250 * time.Millisecond,
		MinRequestInterval: cfg.SleeperMinRequestInterval,
		Logger:             logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SleeperCircuitHalfOpenMaxReq,
		},
	})

	upstreamFamilies := usecase.NewFamilyResolver(client, logger)
	storedFamilies := usecase.NewFamilyResolver(usecase.NewRepositoryLeagueSource(repos.leagues), logger)

	services.Rebuild = usecase.NewRebuildService(
		client,
		upstreamFamilies,
		repos.leagues,
		repos.events,
		repos.runs,
		locker,
		id.NewUUIDGenerator(),
		usecase.RebuildConfig{
			MaxWeek:          cfg.SleeperMaxWeek,
			FetchConcurrency: cfg.SleeperFetchConcurrency,
			Workers:          cfg.RebuildWorkers,
			LockTTL:          cfg.RebuildLockTTL,
			DisableTieBreak:  cfg.RebuildTieBreakDisabled,
		},
		logger,
	).WithFamilyWriter(repos.writer)
	services.Lineage = usecase.NewLineageService(
		storedFamilies,
		repos.events,
		repos.players,
		usecase.LineageConfig{TradeTreeMaxDepth: cfg.TradeTreeMaxDepth},
		logger,
	)
	services.Players = usecase.NewPlayerService(client, repos.players, logger)
	services.Scheduler = usecase.NewRebuildScheduler(services.Rebuild, cfg.RebuildScheduleLeagues, cfg.RebuildScheduleInterval, logger)

	return services, nil
}

func (s *Services) openRepositories(cfg config.Config, logger *logging.Logger) (repositories, error) {
	var repos repositories
	if cfg.UsesDatabase() {
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, err
		}
		s.closers = append(s.closers, db.Close)

		repos = repositories{
			leagues: postgres.NewLeagueRepository(db),
			events:  postgres.NewAssetEventRepository(db),
			players: postgres.NewPlayerRepository(db),
			runs:    postgres.NewRebuildRunRepository(db),
			writer:  postgres.NewFamilyWriter(db),
		}
		logger.Info("repositories backed by postgres", "db_name", databaseName(cfg.DBURL))
	} else {
		repos = repositories{
			leagues: memory.NewLeagueRepository(nil),
			events:  memory.NewAssetEventRepository(),
			players: memory.NewPlayerRepository(nil),
			runs:    memory.NewRebuildRunRepository(),
		}
		logger.Info("repositories backed by memory", "reason", "DB_URL empty")
	}

	if cfg.CacheEnabled {
		store := cache.NewStore(cfg.CacheTTL)
		repos.leagues = cacherepo.NewLeagueRepository(repos.leagues, store)
		repos.events = cacherepo.NewAssetEventRepository(repos.events, store)
		repos.players = cacherepo.NewPlayerRepository(repos.players, store)
		if repos.writer != nil {
			repos.writer = cacherepo.NewFamilyWriter(repos.writer, store)
		}
	}

	return repos, nil
}

func (s *Services) openLocker(ctx context.Context, cfg config.Config, logger *logging.Logger) (usecase.RebuildLocker, error) {
	if cfg.RedisURL == "" {
		logger.Info("rebuild lock is process local", "reason", "REDIS_URL empty")
		return lock.NewMemoryLocker(), nil
	}

	client, err := lock.Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	s.closers = append(s.closers, client.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("rebuild lock backed by redis")

	return lock.NewRedisLocker(client), nil
}

// Close releases connections in reverse order of opening.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func NewHTTPServer(cfg config.Config, services *Services, logger *logging.Logger) (*http.Server, error) {
	if services == nil {
		return nil, fmt.Errorf("services cannot be nil")
	}

	handler := httpapi.NewHandler(services.Rebuild, services.Lineage, services.Players, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
