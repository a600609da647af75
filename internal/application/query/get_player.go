package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PLAYER QUERY
// Возвращает профиль игрока. Email виден только самому владельцу
// профиля.
// ══════════════════════════════════════════════════════════════════════════════

// GetPlayerQuery содержит параметры запроса профиля.
type GetPlayerQuery struct {
	// PlayerID - запрашиваемый профиль.
	PlayerID string

	// CallerID - аутентифицированный игрок, делающий запрос.
	CallerID string
}

// Validate проверяет корректность параметров запроса.
func (q GetPlayerQuery) Validate() error {
	if q.PlayerID == "" {
		return errors.New("player id is required")
	}
	return nil
}

// GetPlayerResult содержит профиль игрока.
type GetPlayerResult struct {
	// PlayerID - внутренний ID игрока.
	PlayerID string `json:"player_id"`

	// Email - адрес электронной почты; заполняется только для владельца.
	Email string `json:"email,omitempty"`

	// DisplayName - отображаемое имя.
	DisplayName string `json:"display_name"`

	// AvatarURL - ссылка на аватар.
	AvatarURL string `json:"avatar_url,omitempty"`

	// Status - состояние аккаунта.
	Status string `json:"status"`

	// JoinedAt - время регистрации.
	JoinedAt time.Time `json:"joined_at"`

	// LastSeenAt - время последней активности.
	LastSeenAt time.Time `json:"last_seen_at"`
}

// GetPlayerHandler обрабатывает GetPlayerQuery.
type GetPlayerHandler struct {
	playerRepo player.Repository
}

// NewGetPlayerHandler создаёт новый GetPlayerHandler.
func NewGetPlayerHandler(playerRepo player.Repository) *GetPlayerHandler {
	return &GetPlayerHandler{playerRepo: playerRepo}
}

// Handle выполняет запрос профиля.
func (h *GetPlayerHandler) Handle(ctx context.Context, q GetPlayerQuery) (*GetPlayerResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("get_player: %w", err)
	}

	p, err := h.playerRepo.GetByID(ctx, q.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("get_player: %w", err)
	}

	res := &GetPlayerResult{
		PlayerID:    p.ID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Status:      string(p.Status),
		JoinedAt:    p.JoinedAt,
		LastSeenAt:  p.LastSeenAt,
	}
	if q.CallerID == p.ID {
		res.Email = p.Email.String()
	}
	return res, nil
}
