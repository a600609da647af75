package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH CATALOG QUERY
// Ищет игры во внешнем каталоге BoardGameGeek по названию. Результаты
// не сохраняются: игрок выбирает находку и добавляет её в каталог
// группы отдельной командой.
// ══════════════════════════════════════════════════════════════════════════════

// SearchCatalogQuery содержит параметры внешнего поиска.
type SearchCatalogQuery struct {
	// Query - строка поиска.
	Query string

	// Limit - максимум результатов (по умолчанию 20).
	Limit int
}

// Validate проверяет корректность параметров запроса.
func (q *SearchCatalogQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return errors.New("search query is required")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// CatalogHitDTO - находка внешнего каталога.
type CatalogHitDTO struct {
	// ExternalID - идентификатор в BoardGameGeek.
	ExternalID int64 `json:"external_id"`

	// Name - название игры.
	Name string `json:"name"`

	// YearPublished - год издания (0, если неизвестен).
	YearPublished int `json:"year_published,omitempty"`
}

// SearchCatalogResult содержит находки.
type SearchCatalogResult struct {
	Query string          `json:"query"`
	Hits  []CatalogHitDTO `json:"hits"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// CatalogHit - находка, которую возвращает внешний каталог.
type CatalogHit struct {
	ExternalID    int64
	Name          string
	YearPublished int
}

// ExternalCatalog ищет игры во внешнем каталоге.
// Реализация - адаптер BoardGameGeek в infrastructure слое.
type ExternalCatalog interface {
	Search(ctx context.Context, query string) ([]CatalogHit, error)
}

// SearchCatalogHandler обрабатывает SearchCatalogQuery.
type SearchCatalogHandler struct {
	catalog ExternalCatalog
}

// NewSearchCatalogHandler создаёт новый SearchCatalogHandler.
func NewSearchCatalogHandler(catalog ExternalCatalog) *SearchCatalogHandler {
	return &SearchCatalogHandler{catalog: catalog}
}

// Handle выполняет внешний поиск.
func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (*SearchCatalogResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("search_catalog: %w", err)
	}
	if h.catalog == nil {
		return nil, fmt.Errorf("search_catalog: %w", shared.ErrServiceUnavailable)
	}

	hits, err := h.catalog.Search(ctx, q.Query)
	if err != nil {
		return nil, fmt.Errorf("search_catalog: %w", err)
	}

	if len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}

	dtos := make([]CatalogHitDTO, 0, len(hits))
	for _, hit := range hits {
		dtos = append(dtos, CatalogHitDTO{
			ExternalID:    hit.ExternalID,
			Name:          hit.Name,
			YearPublished: hit.YearPublished,
		})
	}

	return &SearchCatalogResult{
		Query: q.Query,
		Hits:  dtos,
	}, nil
}
