package ranking

import "context"

// Repository определяет интерфейс для работы с накопленной статистикой.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// ─────────────────────────────────────────────
	// Increment Operations
	// ─────────────────────────────────────────────

	// ApplyAward атомарно добавляет итог одного матча к статистике
	// игрока: +1 матч, +points очков, +1 победа при won.
	// Отсутствующая запись создаётся с нулевыми счётчиками.
	//
	// Инкремент выполняется одним запросом на стороне базы:
	// конкурентные завершения матчей не теряют обновлений.
	ApplyAward(ctx context.Context, groupID, playerID string, points int, won bool) error

	// ─────────────────────────────────────────────
	// Query Operations
	// ─────────────────────────────────────────────

	// GetByPlayer возвращает статистику игрока в группе.
	// Возвращает ErrStatsNotFound, если записи нет.
	GetByPlayer(ctx context.Context, groupID, playerID string) (*PlayerStats, error)

	// GetByGroup возвращает статистику всех игроков группы,
	// отсортированную по очкам по убыванию, затем по времени
	// создания записи.
	GetByGroup(ctx context.Context, groupID string) ([]*PlayerStats, error)

	// GetGlobalTotals возвращает суммарную статистику каждого игрока
	// по всем группам, отсортированную по очкам по убыванию.
	// GroupID в результатах пустой.
	GetGlobalTotals(ctx context.Context) ([]*PlayerStats, error)

	// ─────────────────────────────────────────────
	// Maintenance Operations
	// ─────────────────────────────────────────────

	// ReplaceGroup атомарно заменяет статистику группы пересчитанным
	// снапшотом. Используется полным ребилдом рейтинга.
	ReplaceGroup(ctx context.Context, groupID string, stats []*PlayerStats) error

	// DeleteByGroup удаляет статистику группы.
	DeleteByGroup(ctx context.Context, groupID string) error
}
