// Package main - точка входа для фоновых процессов (Worker) Tabletop Mastering.
//
// Worker отвечает за периодические задачи:
// - Синхронизация каталога игр с BoardGameGeek
// - Пересчёт статистики и рейтинга групп
// - Закрытие просроченных запланированных матчей
//
// Worker запускается отдельно от API сервера, когда нагрузка требует
// выделенного процесса для фоновых задач. При SCHEDULER_ENABLED=true
// API сервер выполняет те же задачи сам, и Worker не нужен.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Trevictus/tabletopmastering-sub000/config"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/external/boardgamegeek"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/messaging"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/persistence/postgres"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/persistence/redis"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/scheduler"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/scheduler/jobs"
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
	log.Info("starting Tabletop Mastering Worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Миграции выполняет API сервер; Worker только проверяет соединение.

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var rankingCache *redis.RankingCache
	var catalogCache *redis.CatalogCache

	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB

		cache, cacheErr := redis.NewCache(redisCfg)
		if cacheErr != nil {
			log.Warn("failed to connect to Redis, caching disabled", "error", cacheErr)
		} else {
			defer cache.Close()
			redisCache = cache
			rankingCache = redis.NewRankingCache(redisCache)
			catalogCache = redis.NewCatalogCache(redisCache, cfg.BGG.CacheTTL)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ И EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	groupRepo := postgres.NewGroupRepository(dbConn)
	gameRepo := postgres.NewGameRepository(dbConn)
	matchRepo := postgres.NewMatchRepository(dbConn)
	statsRepo := postgres.NewStatsRepository(dbConn)

	eventBusConfig := messaging.DefaultInMemoryEventBusConfig()
	eventBusConfig.Logger = log

	// События воркера (истечение матчей, синхронизация каталога)
	// публикуются через Redis Pub/Sub, чтобы их видели API инстансы.
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
	defer func() { _ = closeEventBus() }()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. РЕГИСТРАЦИЯ ФОНОВЫХ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	schedulerConfig := scheduler.DefaultSchedulerConfig()
	schedulerConfig.Logger = log
	schedulerConfig.Timezone = cfg.App.Location
	jobScheduler := scheduler.NewScheduler(schedulerConfig)

	if !cfg.BGG.Disabled && cfg.Features.IsEnabled(config.FeatureCatalogBGGSync, nil) {
		bggConfig := boardgamegeek.DefaultClientConfig(cfg.BGG.BaseURL)
		bggConfig.Timeout = cfg.BGG.RequestTimeout
		bggConfig.Logger = log
		bggClient := boardgamegeek.NewClient(bggConfig)

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

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	if err := jobScheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	log.Info("Tabletop Mastering Worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	if err := jobScheduler.Stop(); err != nil {
		log.Error("failed to stop scheduler gracefully", "error", err)
		return err
	}

	log.Info("shutdown completed successfully")
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
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
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
