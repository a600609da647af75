package group

import "context"

// Repository определяет интерфейс для работы с хранилищем групп.
// Реализация находится в infrastructure слое (PostgreSQL).
type Repository interface {
	// ─────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────

	// Create сохраняет новую группу в хранилище.
	// Возвращает ошибку, если группа с таким названием уже существует.
	Create(ctx context.Context, g *Group) error

	// GetByID находит группу по внутреннему ID.
	// Возвращает ErrGroupNotFound, если группа не найдена.
	GetByID(ctx context.Context, id string) (*Group, error)

	// GetByName находит группу по названию.
	GetByName(ctx context.Context, name string) (*Group, error)

	// Update обновляет данные группы, включая состав участников.
	Update(ctx context.Context, g *Group) error

	// Delete помечает группу удалённой (soft delete).
	Delete(ctx context.Context, id string) error

	// ─────────────────────────────────────────────
	// Query Operations
	// ─────────────────────────────────────────────

	// GetAll возвращает все активные группы с пагинацией.
	GetAll(ctx context.Context, opts ListOptions) ([]*Group, error)

	// GetByPlayerID возвращает группы, в которых состоит игрок.
	GetByPlayerID(ctx context.Context, playerID string) ([]*Group, error)

	// Count возвращает количество активных групп.
	Count(ctx context.Context) (int64, error)

	// Exists проверяет существование группы.
	Exists(ctx context.Context, id string) (bool, error)
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
