// Package main - точка входа для API сервера Tabletop Mastering.
//
// Tabletop Mastering ведёт игровые группы настольных игр: участники,
// каталог игр (с синхронизацией BoardGameGeek), запланированные матчи
// и таблица рейтинга по очкам за занятые места.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: реализация репозиториев, внешние API, планировщик
// - Interface: REST API endpoints
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Trevictus/tabletopmastering-sub000/config"
	"github.com/Trevictus/tabletopmastering-sub000/internal/application/command"
	"github.com/Trevictus/tabletopmastering-sub000/internal/application/eventhandler"
	"github.com/Trevictus/tabletopmastering-sub000/internal/application/query"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/external/boardgamegeek"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/messaging"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/persistence/postgres"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/persistence/redis"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/scheduler"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/scheduler/jobs"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/service"
	httpserver "github.com/Trevictus/tabletopmastering-sub000/internal/interface/http"
	"github.com/Trevictus/tabletopmastering-sub000/internal/interface/http/handlers"
	"github.com/Trevictus/tabletopmastering-sub000/pkg/logger"
	"github.com/Trevictus/tabletopmastering-sub000/pkg/token"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting Tabletop Mastering API",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", "error", err)
	} else {
		appliedCount := 0
		for _, m := range status {
			if m.IsApplied {
				appliedCount++
			}
		}
		log.Info("migrations completed", "applied", appliedCount, "total", len(status))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var rankingCache *redis.RankingCache
	var catalogCache *redis.CatalogCache

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
			rankingCache = redis.NewRankingCache(redisCache)
			catalogCache = redis.NewCatalogCache(redisCache, cfg.BGG.CacheTTL)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	playerRepo := postgres.NewPlayerRepository(dbConn)
	groupRepo := postgres.NewGroupRepository(dbConn)
	gameRepo := postgres.NewGameRepository(dbConn)
	matchRepo := postgres.NewMatchRepository(dbConn)
	statsRepo := postgres.NewStatsRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ИНИЦИАЛИЗАЦИЯ EVENT BUS И DISPATCHER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...")
	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log

	// Redis Pub/Sub объединяет события нескольких инстансов; иначе
	// события остаются внутри процесса.
	var eventBus shared.EventBus
	var closeEventBus func() error
	if redisCache != nil && cfg.Redis.EventBusEnabled {
		redisBus, busErr := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         messaging.NewGoRedisClient(redisCache.Client()),
			LocalBusConfig: eventBusConfig,
			Logger:         log,
		})
		if busErr != nil {
			log.Warn("failed to start redis event bus, falling back to in-memory", "error", busErr)
		} else {
			eventBus = redisBus
			closeEventBus = redisBus.Close
		}
	}
	if eventBus == nil {
		memBus := messaging.NewInMemoryEventBus(eventBusConfig)
		eventBus = memBus
		closeEventBus = memBus.Close
	}
	defer func() {
		log.Info("closing event bus...")
		_ = closeEventBus()
	}()

	dispatcher := messaging.NewDispatcher(messaging.DefaultDispatcherConfig(eventBus))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ ВНЕШНИХ КЛИЕНТОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing external clients...")

	bggConfig := boardgamegeek.DefaultClientConfig(cfg.BGG.BaseURL)
	bggConfig.Timeout = cfg.BGG.RequestTimeout
	bggConfig.Logger = log
	bggConfig.Debug = cfg.App.Debug
	bggClient := boardgamegeek.NewClient(bggConfig)

	catalogAdapter := service.NewBGGCatalogAdapter(bggClient)

	tokenManager, err := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	passwordHasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	// Redis caches are optional; typed nils must not leak into interfaces.
	var rankingInvalidator command.RankingInvalidator
	var rankingReader query.RankingReader
	var rankingWarmer eventhandler.RankingWarmer
	if rankingCache != nil && cfg.Features.IsEnabled(config.FeatureRankingCache, nil) {
		rankingInvalidator = rankingCache
		rankingReader = rankingCache
		rankingWarmer = rankingCache
	}

	var catalog command.GameCatalogProvider
	var externalCatalog query.ExternalCatalog
	if !cfg.BGG.Disabled {
		catalog = catalogAdapter
		externalCatalog = catalogAdapter
	}

	registerPlayerCmd := command.NewRegisterPlayerHandler(playerRepo, passwordHasher, eventBus)
	authenticateCmd := command.NewAuthenticatePlayerHandler(playerRepo, passwordHasher, tokenManager)
	updatePlayerCmd := command.NewUpdatePlayerHandler(playerRepo)
	deactivatePlayerCmd := command.NewDeactivatePlayerHandler(playerRepo)
	createGroupCmd := command.NewCreateGroupHandler(groupRepo, playerRepo, eventBus)
	joinGroupCmd := command.NewJoinGroupHandler(groupRepo, playerRepo, eventBus)
	leaveGroupCmd := command.NewLeaveGroupHandler(groupRepo)
	addGameCmd := command.NewAddGameHandler(gameRepo, groupRepo, catalog)
	syncGameCmd := command.NewSyncGameHandler(gameRepo, catalog, command.DefaultSyncGameHandlerConfig())
	scheduleMatchCmd := command.NewScheduleMatchHandler(matchRepo, groupRepo, gameRepo)
	finishMatchCmd := command.NewFinishMatchHandler(
		matchRepo, groupRepo, statsRepo, rankingInvalidator, eventBus, match.DefaultPointCurve())
	cancelMatchCmd := command.NewCancelMatchHandler(matchRepo, groupRepo)

	getRankingQuery := query.NewGetRankingHandler(statsRepo, playerRepo, rankingReader)
	getGlobalRankingQuery := query.NewGetGlobalRankingHandler(statsRepo, playerRepo)
	getPlayerStatsQuery := query.NewGetPlayerStatsHandler(statsRepo, playerRepo)
	getPlayerQuery := query.NewGetPlayerHandler(playerRepo)
	getGameQuery := query.NewGetGameHandler(gameRepo)
	getMatchQuery := query.NewGetMatchHandler(matchRepo)
	getGroupQuery := query.NewGetGroupHandler(groupRepo, playerRepo, gameRepo, matchRepo)
	listGroupsQuery := query.NewListGroupsHandler(groupRepo)
	listGamesQuery := query.NewListGamesHandler(gameRepo)
	listMatchesQuery := query.NewListMatchesHandler(matchRepo)
	searchCatalogQuery := query.NewSearchCatalogHandler(externalCatalog)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	onMatchFinished := eventhandler.NewOnMatchFinishedHandler(statsRepo, rankingWarmer, log)
	if err := dispatcher.Register(shared.EventMatchFinished, "warm_ranking_cache", onMatchFinished.Handle); err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer func() {
		log.Info("stopping event dispatcher...")
		_ = dispatcher.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ИНИЦИАЛИЗАЦИЯ ПЛАНИРОВЩИКА ФОНОВЫХ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	var jobScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		log.Info("initializing scheduler...")

		schedulerConfig := scheduler.DefaultSchedulerConfig()
		schedulerConfig.Logger = log
		schedulerConfig.Timezone = cfg.App.Location
		jobScheduler = scheduler.NewScheduler(schedulerConfig)

		if !cfg.BGG.Disabled && cfg.Features.IsEnabled(config.FeatureCatalogBGGSync, nil) {
			var syncCache jobs.CatalogCache
			if catalogCache != nil {
				syncCache = catalogCache
			}
			syncJob := jobs.NewSyncGamesJob(
				gameRepo, bggClient, syncCache, eventBus, log, jobs.DefaultSyncGamesConfig())
			if err := jobScheduler.Register(syncJob, scheduler.NewIntervalSchedule(cfg.Scheduler.SyncGamesInterval)); err != nil {
				return fmt.Errorf("failed to register sync job: %w", err)
			}
		}

		var rebuildCache jobs.RankingCache
		if rankingCache != nil {
			rebuildCache = rankingCache
		}
		rebuildJob := jobs.NewRebuildRankingJob(
			groupRepo, matchRepo, statsRepo, rebuildCache, log, jobs.DefaultRebuildRankingConfig())
		rebuildSchedule, err := rebuildScheduleFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("invalid rebuild schedule: %w", err)
		}
		if err := jobScheduler.Register(rebuildJob, rebuildSchedule); err != nil {
			return fmt.Errorf("failed to register rebuild job: %w", err)
		}

		if cfg.Features.IsEnabled(config.FeatureMatchExpiry, nil) {
			expireConfig := jobs.DefaultExpireMatchesConfig()
			expireConfig.Grace = cfg.Scheduler.MatchExpiryGrace
			expireJob := jobs.NewExpireMatchesJob(matchRepo, eventBus, log, expireConfig)
			if err := jobScheduler.Register(expireJob, scheduler.NewIntervalSchedule(cfg.Scheduler.ExpireMatchesInterval)); err != nil {
				return fmt.Errorf("failed to register expire job: %w", err)
			}
		}

		if err := jobScheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	healthChecker := handlers.NewCompositeHealthChecker(cfg.App.Version)
	healthChecker.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		healthChecker.AddCheck("cache", handlers.NewCacheCheck(redisCache))
	}
	if !cfg.BGG.Disabled {
		healthChecker.AddCheck("boardgamegeek", handlers.NewExternalAPICheck(bggClient))
	}

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimit
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.EnableMetrics = cfg.Observability.MetricsEnabled
	httpConfig.MetricsAPIKey = cfg.Observability.MetricsAPIKey
	httpConfig.RequestTimeout = cfg.HTTP.RequestTimeout

	httpDeps := httpserver.Dependencies{
		RegisterPlayer:     registerPlayerCmd,
		AuthenticatePlayer: authenticateCmd,
		UpdatePlayer:       updatePlayerCmd,
		DeactivatePlayer:   deactivatePlayerCmd,
		CreateGroup:        createGroupCmd,
		JoinGroup:          joinGroupCmd,
		LeaveGroup:         leaveGroupCmd,
		AddGame:            addGameCmd,
		SyncGame:           syncGameCmd,
		ScheduleMatch:      scheduleMatchCmd,
		FinishMatch:        finishMatchCmd,
		CancelMatch:        cancelMatchCmd,
		GetRanking:         getRankingQuery,
		GetGlobalRanking:   getGlobalRankingQuery,
		GetPlayerStats:     getPlayerStatsQuery,
		GetPlayer:          getPlayerQuery,
		GetGame:            getGameQuery,
		GetMatch:           getMatchQuery,
		GetGroup:           getGroupQuery,
		ListGroups:         listGroupsQuery,
		ListGames:          listGamesQuery,
		ListMatches:        listMatchesQuery,
		SearchCatalog:      searchCatalogQuery,
		TokenManager:       tokenManager,
		Logger:             logger.Default(),
		HealthChecker:      healthChecker,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 13. ЗАПУСК СЕРВИСОВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("starting services...")

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "address", httpServer.Address())
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 14. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("Tabletop Mastering API is running",
		"http_address", httpServer.Address(),
		"scheduler_enabled", cfg.Scheduler.Enabled,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		log.Error("service error", "error", err)
		return err
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	if jobScheduler != nil {
		log.Info("stopping scheduler...")
		if err := jobScheduler.Stop(); err != nil {
			log.Error("failed to stop scheduler gracefully", "error", err)
			shutdownErr = err
		}
	}

	log.Info("stopping HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", "error", err)
		shutdownErr = err
	}

	// Event bus и база данных закроются через defer

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed successfully")
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// rebuildScheduleFromConfig выбирает расписание перестроения рейтинга:
// cron-выражение, если задано, иначе фиксированный интервал.
func rebuildScheduleFromConfig(cfg *config.Config) (scheduler.Schedule, error) {
	if cfg.Scheduler.RebuildRankingCron != "" {
		return scheduler.ParseCronExpression(cfg.Scheduler.RebuildRankingCron)
	}
	return scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildRankingInterval), nil
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Observability.LogLevel),
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
