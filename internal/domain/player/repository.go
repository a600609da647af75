package player

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет основные операции CRUD для игроков.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Create создаёт нового игрока.
	// Возвращает ErrPlayerAlreadyExists, если email уже занят.
	Create(ctx context.Context, player *Player) error

	// GetByID возвращает игрока по внутреннему ID.
	// Возвращает ErrPlayerNotFound, если игрок не найден.
	GetByID(ctx context.Context, id string) (*Player, error)

	// GetByEmail возвращает игрока по email.
	// Возвращает ErrPlayerNotFound, если игрок не найден.
	GetByEmail(ctx context.Context, email Email) (*Player, error)

	// Update обновляет данные игрока.
	// Возвращает ErrPlayerNotFound, если игрок не найден.
	Update(ctx context.Context, player *Player) error

	// Delete удаляет игрока (soft delete, статус "left").
	// Возвращает ErrPlayerNotFound, если игрок не найден.
	Delete(ctx context.Context, id string) error

	// ─────────────────────────────────────────────────────────────────────────
	// Bulk Operations
	// ─────────────────────────────────────────────────────────────────────────

	// GetAll возвращает всех игроков с пагинацией.
	GetAll(ctx context.Context, opts ListOptions) ([]*Player, error)

	// GetByIDs возвращает игроков по списку ID.
	GetByIDs(ctx context.Context, ids []string) ([]*Player, error)

	// Count возвращает общее количество игроков.
	Count(ctx context.Context) (int, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Search & Filter
	// ─────────────────────────────────────────────────────────────────────────

	// Search выполняет поиск игроков по имени или email.
	Search(ctx context.Context, query string, opts ListOptions) ([]*Player, error)

	// FindInactive находит игроков, неактивных более указанного времени.
	FindInactive(ctx context.Context, threshold time.Duration) ([]*Player, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Existence Checks
	// ─────────────────────────────────────────────────────────────────────────

	// Exists проверяет существование игрока по ID.
	Exists(ctx context.Context, id string) (bool, error)

	// ExistsByEmail проверяет существование игрока по email.
	ExistsByEmail(ctx context.Context, email Email) (bool, error)
}

// ListOptions содержит параметры для пагинации и сортировки.
type ListOptions struct {
	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int

	// SortBy - поле для сортировки.
	SortBy string

	// SortDesc - сортировка по убыванию.
	SortDesc bool

	// IncludeInactive - включать неактивных и удалённых игроков.
	IncludeInactive bool
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset:          0,
		Limit:           50,
		SortBy:          "joined_at",
		SortDesc:        true,
		IncludeInactive: false,
	}
}
