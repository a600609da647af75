package match

import (
	"context"
	"time"
)

// Repository определяет интерфейс для работы с хранилищем матчей.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// ─────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────

	// Create сохраняет новый матч.
	Create(ctx context.Context, m *Match) error

	// GetByID находит матч по внутреннему ID.
	// Возвращает ErrMatchNotFound, если матч не найден.
	GetByID(ctx context.Context, id string) (*Match, error)

	// Update обновляет матч, включая участников и результаты.
	Update(ctx context.Context, m *Match) error

	// Delete удаляет матч.
	Delete(ctx context.Context, id string) error

	// ─────────────────────────────────────────────
	// Query Operations
	// ─────────────────────────────────────────────

	// GetByGroupID возвращает матчи группы с фильтрацией и пагинацией.
	GetByGroupID(ctx context.Context, groupID string, filter Filter) ([]*Match, error)

	// GetByPlayerID возвращает матчи, в которых заявлен игрок.
	GetByPlayerID(ctx context.Context, playerID string, filter Filter) ([]*Match, error)

	// FindOverdue возвращает запланированные матчи, время которых
	// прошло более чем grace назад. Используется фоновой задачей.
	FindOverdue(ctx context.Context, now time.Time, grace time.Duration) ([]*Match, error)

	// CountByGroupID возвращает количество матчей группы по статусу.
	// Пустой статус означает все матчи.
	CountByGroupID(ctx context.Context, groupID string, status Status) (int64, error)
}

// Filter содержит опции для списочных запросов.
type Filter struct {
	// Status ограничивает выборку статусом. Пустой - без ограничения.
	Status Status

	// GameID ограничивает выборку игрой. Пустой - без ограничения.
	GameID string

	// From и To ограничивают выборку по времени проведения.
	From time.Time
	To   time.Time

	Offset int
	Limit  int
}

// DefaultFilter возвращает фильтр по умолчанию.
func DefaultFilter() Filter {
	return Filter{
		Offset: 0,
		Limit:  50,
	}
}
