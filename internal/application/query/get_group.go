package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GROUP QUERY
// Возвращает карточку группы: состав с именами, размер каталога и
// количество матчей.
// ══════════════════════════════════════════════════════════════════════════════

// GetGroupQuery содержит параметры запроса группы.
type GetGroupQuery struct {
	// GroupID - запрашиваемая группа.
	GroupID string
}

// MemberDTO - участник группы для выдачи наружу.
type MemberDTO struct {
	// PlayerID - внутренний ID игрока.
	PlayerID string `json:"player_id"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// Role - роль в группе.
	Role string `json:"role"`

	// JoinedAt - время вступления.
	JoinedAt time.Time `json:"joined_at"`
}

// GetGroupResult содержит карточку группы.
type GetGroupResult struct {
	// GroupID - группа.
	GroupID string `json:"group_id"`

	// Name - название.
	Name string `json:"name"`

	// Description - описание.
	Description string `json:"description"`

	// OwnerID - создатель группы.
	OwnerID string `json:"owner_id"`

	// Members - участники с именами.
	Members []MemberDTO `json:"members"`

	// GameCount - размер каталога группы.
	GameCount int64 `json:"game_count"`

	// ScheduledMatches - количество запланированных матчей.
	ScheduledMatches int64 `json:"scheduled_matches"`

	// FinishedMatches - количество сыгранных матчей.
	FinishedMatches int64 `json:"finished_matches"`

	// CreatedAt - время создания.
	CreatedAt time.Time `json:"created_at"`
}

// GetGroupHandler обрабатывает GetGroupQuery.
type GetGroupHandler struct {
	groupRepo  group.Repository
	playerRepo player.Repository
	gameRepo   game.Repository
	matchRepo  match.Repository
}

// NewGetGroupHandler создаёт новый GetGroupHandler.
func NewGetGroupHandler(
	groupRepo group.Repository,
	playerRepo player.Repository,
	gameRepo game.Repository,
	matchRepo match.Repository,
) *GetGroupHandler {
	return &GetGroupHandler{
		groupRepo:  groupRepo,
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		matchRepo:  matchRepo,
	}
}

// Handle выполняет запрос группы.
func (h *GetGroupHandler) Handle(ctx context.Context, q GetGroupQuery) (*GetGroupResult, error) {
	if q.GroupID == "" {
		return nil, errors.New("get_group: group id is required")
	}

	g, err := h.groupRepo.GetByID(ctx, q.GroupID)
	if err != nil {
		return nil, fmt.Errorf("get_group: %w", err)
	}

	members, err := h.memberDTOs(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("get_group: %w", err)
	}

	// Счётчики собираются по возможности; частичный сбой не валит запрос.
	gameCount, _ := h.gameRepo.CountByGroupID(ctx, g.ID)
	scheduled, _ := h.matchRepo.CountByGroupID(ctx, g.ID, match.StatusScheduled)
	finished, _ := h.matchRepo.CountByGroupID(ctx, g.ID, match.StatusFinished)

	return &GetGroupResult{
		GroupID:          g.ID,
		Name:             g.Name,
		Description:      g.Description,
		OwnerID:          g.OwnerID,
		Members:          members,
		GameCount:        gameCount,
		ScheduledMatches: scheduled,
		FinishedMatches:  finished,
		CreatedAt:        g.CreatedAt,
	}, nil
}

// memberDTOs обогащает состав группы именами игроков.
func (h *GetGroupHandler) memberDTOs(ctx context.Context, g *group.Group) ([]MemberDTO, error) {
	ids := g.MemberIDs()
	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		players, err := h.playerRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range players {
			names[p.ID] = p.DisplayName
		}
	}

	members := make([]MemberDTO, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, MemberDTO{
			PlayerID:    m.PlayerID,
			DisplayName: names[m.PlayerID],
			Role:        string(m.Role),
			JoinedAt:    m.JoinedAt,
		})
	}
	return members, nil
}
