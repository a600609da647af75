package game

import "context"

// Repository определяет интерфейс для работы с каталогом игр.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// ─────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────

	// Create сохраняет новую запись каталога.
	Create(ctx context.Context, g *Game) error

	// GetByID находит игру по внутреннему ID.
	// Возвращает ErrGameNotFound, если игра не найдена.
	GetByID(ctx context.Context, id string) (*Game, error)

	// Update обновляет запись каталога.
	Update(ctx context.Context, g *Game) error

	// Delete удаляет запись из каталога.
	Delete(ctx context.Context, id string) error

	// ─────────────────────────────────────────────
	// Query Operations
	// ─────────────────────────────────────────────

	// GetByGroupID возвращает каталог группы с пагинацией.
	GetByGroupID(ctx context.Context, groupID string, opts ListOptions) ([]*Game, error)

	// GetByExternalID находит игру группы по идентификатору BoardGameGeek.
	GetByExternalID(ctx context.Context, groupID string, externalID int64) (*Game, error)

	// FindSynced возвращает все записи, привязанные к внешнему каталогу.
	// Используется фоновой синхронизацией.
	FindSynced(ctx context.Context) ([]*Game, error)

	// Search ищет игры группы по подстроке названия.
	Search(ctx context.Context, groupID, query string, limit int) ([]*Game, error)

	// CountByGroupID возвращает размер каталога группы.
	CountByGroupID(ctx context.Context, groupID string) (int64, error)
}

// ListOptions содержит опции для списочных запросов.
type ListOptions struct {
	Offset int
	Limit  int
}

// DefaultListOptions возвращает опции по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset: 0,
		Limit:  50,
	}
}
