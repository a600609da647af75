// Package game содержит доменную модель настольной игры из каталога.
// Игра может быть добавлена вручную или синхронизирована из внешнего
// каталога BoardGameGeek.
package game

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Source определяет источник записи в каталоге.
type Source string

const (
	// SourceManual - игра добавлена участником группы вручную.
	SourceManual Source = "manual"
	// SourceBGG - игра синхронизирована из BoardGameGeek.
	SourceBGG Source = "bgg"
)

// IsValid проверяет, что источник корректен.
func (s Source) IsValid() bool {
	return s == SourceManual || s == SourceBGG
}

// PlayerRange - допустимое количество игроков для партии.
type PlayerRange struct {
	Min int
	Max int
}

// IsValid проверяет, что диапазон корректен.
// Нулевой диапазон допустим: внешний каталог не всегда отдаёт эти поля.
func (r PlayerRange) IsValid() bool {
	if r.Min == 0 && r.Max == 0 {
		return true
	}
	return r.Min >= 1 && r.Max >= r.Min
}

// Supports проверяет, что игра поддерживает указанное число игроков.
// Неизвестный диапазон не ограничивает партию.
func (r PlayerRange) Supports(count int) bool {
	if r.Min == 0 && r.Max == 0 {
		return true
	}
	return count >= r.Min && count <= r.Max
}

// String возвращает человекочитаемый диапазон.
func (r PlayerRange) String() string {
	if r.Min == 0 && r.Max == 0 {
		return "?"
	}
	if r.Min == r.Max {
		return fmt.Sprintf("%d", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: GAME
// ══════════════════════════════════════════════════════════════════════════════

// Game - настольная игра из каталога группы.
type Game struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// GroupID - группа, которой принадлежит запись каталога.
	GroupID string

	// Name - название игры.
	Name string

	// Description - описание игры.
	Description string

	// Source - источник записи: manual или bgg.
	Source Source

	// ExternalID - идентификатор в BoardGameGeek (0 для ручных записей).
	ExternalID int64

	// Players - допустимое количество игроков.
	Players PlayerRange

	// PlayTimeMinutes - средняя длительность партии в минутах.
	PlayTimeMinutes int

	// YearPublished - год выпуска.
	YearPublished int

	// ThumbnailURL - ссылка на обложку.
	ThumbnailURL string

	// Rating - средний рейтинг во внешнем каталоге (0-10).
	Rating float64

	// SyncedAt - время последней синхронизации с внешним каталогом.
	SyncedAt *time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное название игры.
	ErrInvalidName = errors.New("invalid game name: must be 1-200 chars")

	// ErrInvalidPlayerRange - невалидный диапазон игроков.
	ErrInvalidPlayerRange = errors.New("invalid player range")

	// ErrGameNotFound - игра не найдена.
	ErrGameNotFound = errors.New("game not found")

	// ErrGameAlreadyExists - игра уже есть в каталоге группы.
	ErrGameAlreadyExists = errors.New("game already exists in the group catalog")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewGameParams содержит параметры для создания записи каталога.
type NewGameParams struct {
	ID              string
	GroupID         string
	Name            string
	Description     string
	Source          Source
	ExternalID      int64
	Players         PlayerRange
	PlayTimeMinutes int
	YearPublished   int
	ThumbnailURL    string
	Rating          float64
}

// NewGame создаёт новую запись каталога с валидацией.
func NewGame(params NewGameParams) (*Game, error) {
	if params.ID == "" {
		return nil, errors.New("game id is required")
	}
	if params.GroupID == "" {
		return nil, errors.New("game group id is required")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 200 {
		return nil, ErrInvalidName
	}

	source := params.Source
	if source == "" {
		source = SourceManual
	}
	if !source.IsValid() {
		return nil, fmt.Errorf("invalid game source: %s", source)
	}
	if source == SourceBGG && params.ExternalID <= 0 {
		return nil, errors.New("bgg games require an external id")
	}

	if !params.Players.IsValid() {
		return nil, ErrInvalidPlayerRange
	}

	now := time.Now().UTC()

	return &Game{
		ID:              params.ID,
		GroupID:         params.GroupID,
		Name:            name,
		Description:     strings.TrimSpace(params.Description),
		Source:          source,
		ExternalID:      params.ExternalID,
		Players:         params.Players,
		PlayTimeMinutes: params.PlayTimeMinutes,
		YearPublished:   params.YearPublished,
		ThumbnailURL:    params.ThumbnailURL,
		Rating:          params.Rating,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// BUSINESS LOGIC
// ══════════════════════════════════════════════════════════════════════════════

// IsSynced возвращает true, если запись привязана к внешнему каталогу.
func (g *Game) IsSynced() bool {
	return g.Source == SourceBGG && g.ExternalID > 0
}

// ApplySync обновляет запись данными из внешнего каталога.
func (g *Game) ApplySync(name, description, thumbnailURL string, players PlayerRange, playTime, year int, rating float64) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 200 {
		return ErrInvalidName
	}
	if !players.IsValid() {
		return ErrInvalidPlayerRange
	}

	now := time.Now().UTC()

	g.Name = name
	g.Description = strings.TrimSpace(description)
	g.ThumbnailURL = thumbnailURL
	g.Players = players
	g.PlayTimeMinutes = playTime
	g.YearPublished = year
	g.Rating = rating
	g.SyncedAt = &now
	g.UpdatedAt = now
	return nil
}

// SupportsPlayerCount проверяет, что игра подходит для указанного
// числа участников матча.
func (g *Game) SupportsPlayerCount(count int) bool {
	return g.Players.Supports(count)
}

// String возвращает строковое представление игры для логирования.
func (g *Game) String() string {
	return fmt.Sprintf(
		"Game{ID: %s, Name: %s, Source: %s, Players: %s}",
		g.ID, g.Name, g.Source, g.Players,
	)
}

// Clone создаёт копию игры.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}

	clone := *g
	if g.SyncedAt != nil {
		t := *g.SyncedAt
		clone.SyncedAt = &t
	}
	return &clone
}
