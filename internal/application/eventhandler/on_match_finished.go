// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
	"github.com/Trevictus/tabletopmastering-sub000/pkg/retry"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON MATCH FINISHED HANDLER
// Обрабатывает событие завершения матча.
//
// Очки уже начислены командой finish_match; обработчик отвечает за
// производные данные:
// 1. Перестроение кешированной таблицы группы из свежей статистики
// 2. Логирование итога матча
//
// Обработчик идемпотентен: повторная доставка события приводит лишь к
// повторному прогреву кеша.
// ═══════════════════════════════════════════════════════════════════════════

// RankingWarmer перестраивает кешированную таблицу группы.
type RankingWarmer interface {
	Rebuild(ctx context.Context, groupID string, entries []ranking.Entry) error
}

// OnMatchFinishedHandler обрабатывает событие завершения матча.
type OnMatchFinishedHandler struct {
	statsRepo    ranking.Repository
	rankingCache RankingWarmer
	logger       *slog.Logger
	retrier      *retry.Retrier

	// timeout ограничивает обработку одного события.
	timeout time.Duration
}

// NewOnMatchFinishedHandler создаёт новый обработчик.
func NewOnMatchFinishedHandler(
	statsRepo ranking.Repository,
	rankingCache RankingWarmer,
	logger *slog.Logger,
) *OnMatchFinishedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnMatchFinishedHandler{
		statsRepo:    statsRepo,
		rankingCache: rankingCache,
		logger:       logger,
		retrier: retry.New(
			retry.WithMaxAttempts(3),
			retry.WithInitialDelay(200*time.Millisecond),
			retry.WithRetryIf(func(err error) bool { return err != nil }),
		),
		timeout: 10 * time.Second,
	}
}

// Handle обрабатывает событие.
// Реализует интерфейс shared.EventHandler.
func (h *OnMatchFinishedHandler) Handle(event shared.Event) error {
	finished, ok := event.(shared.MatchFinishedEvent)
	if !ok {
		// Не наше событие - молча пропускаем.
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.logger.Info("match finished",
		"match_id", finished.MatchID,
		"group_id", finished.GroupID,
		"winner_id", finished.WinnerID,
		"players", len(finished.Awards),
	)

	if h.rankingCache == nil {
		return nil
	}

	// Прогрев идемпотентен, поэтому кратковременные сбои Redis или базы
	// можно просто повторить.
	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		stats, err := h.statsRepo.GetByGroup(ctx, finished.GroupID)
		if err != nil {
			return err
		}

		entries := ranking.Compute(stats)
		return h.rankingCache.Rebuild(ctx, finished.GroupID, entries)
	})
	if err != nil {
		h.logger.Error("failed to warm ranking cache",
			"group_id", finished.GroupID,
			"error", err,
		)
		return err
	}

	return nil
}
