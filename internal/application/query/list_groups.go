package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST GROUPS QUERY
// Возвращает группы: все активные с пагинацией либо группы одного
// игрока.
// ══════════════════════════════════════════════════════════════════════════════

// ListGroupsQuery содержит параметры запроса групп.
type ListGroupsQuery struct {
	// PlayerID - если задан, возвращаются только группы этого игрока.
	PlayerID string

	// Limit - количество записей (по умолчанию 50, максимум 200).
	Limit int

	// Offset - смещение для пагинации.
	Offset int
}

// Validate проверяет корректность параметров запроса.
func (q *ListGroupsQuery) Validate() error {
	if q.Limit < 0 || q.Offset < 0 {
		return errors.New("limit and offset cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = group.DefaultListOptions().Limit
	}
	if q.Limit > 200 {
		q.Limit = 200
	}
	return nil
}

// GroupDTO - группа для выдачи наружу.
type GroupDTO struct {
	GroupID     string    `json:"group_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	OwnerID     string    `json:"owner_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListGroupsResult содержит страницу групп.
type ListGroupsResult struct {
	Groups     []GroupDTO `json:"groups"`
	TotalCount int64      `json:"total_count"`
}

// ListGroupsHandler обрабатывает ListGroupsQuery.
type ListGroupsHandler struct {
	groupRepo group.Repository
}

// NewListGroupsHandler создаёт новый ListGroupsHandler.
func NewListGroupsHandler(groupRepo group.Repository) *ListGroupsHandler {
	return &ListGroupsHandler{groupRepo: groupRepo}
}

// Handle выполняет запрос групп.
func (h *ListGroupsHandler) Handle(ctx context.Context, q ListGroupsQuery) (*ListGroupsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("list_groups: %w", err)
	}

	var (
		groups []*group.Group
		total  int64
		err    error
	)
	if q.PlayerID != "" {
		groups, err = h.groupRepo.GetByPlayerID(ctx, q.PlayerID)
		total = int64(len(groups))
	} else {
		groups, err = h.groupRepo.GetAll(ctx, group.ListOptions{
			Offset: q.Offset,
			Limit:  q.Limit,
		})
		if err == nil {
			total, _ = h.groupRepo.Count(ctx)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("list_groups: %w", err)
	}

	dtos := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, GroupDTO{
			GroupID:     g.ID,
			Name:        g.Name,
			Description: g.Description,
			OwnerID:     g.OwnerID,
			MemberCount: g.MemberCount(),
			CreatedAt:   g.CreatedAt,
		})
	}

	return &ListGroupsResult{
		Groups:     dtos,
		TotalCount: total,
	}, nil
}
