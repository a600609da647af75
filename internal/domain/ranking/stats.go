// Package ranking содержит доменную модель рейтинга группы: накопленную
// статистику игроков и проекцию турнирной таблицы.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER STATS
// ══════════════════════════════════════════════════════════════════════════════

// PlayerStats - накопленная статистика игрока в рамках одной группы.
//
// Счётчики только растут: каждый завершённый матч добавляет ровно одно
// сыгранное событие, возможно одну победу и неотрицательное количество
// очков. Пересчёт с нуля выполняется только при полном ребилде рейтинга.
type PlayerStats struct {
	// GroupID - группа, к которой относится статистика.
	GroupID string

	// PlayerID - идентификатор игрока.
	PlayerID string

	// MatchesPlayed - количество завершённых матчей с зафиксированным
	// результатом игрока.
	MatchesPlayed int

	// Wins - количество первых мест.
	Wins int

	// TotalPoints - суммарные очки рейтинга.
	TotalPoints int

	// LastPlayedAt - время последнего завершённого матча.
	LastPlayedAt *time.Time

	// UpdatedAt - время последнего обновления записи.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrStatsNotFound - статистика игрока не найдена.
	ErrStatsNotFound = errors.New("player stats not found")

	// ErrNegativePoints - попытка начислить отрицательные очки.
	ErrNegativePoints = errors.New("points increment must be non-negative")
)

// ══════════════════════════════════════════════════════════════════════════════
// BUSINESS LOGIC
// ══════════════════════════════════════════════════════════════════════════════

// NewPlayerStats создаёт пустую статистику игрока в группе.
func NewPlayerStats(groupID, playerID string) *PlayerStats {
	return &PlayerStats{
		GroupID:   groupID,
		PlayerID:  playerID,
		UpdatedAt: time.Now().UTC(),
	}
}

// RecordMatch фиксирует итог одного матча в статистике.
func (s *PlayerStats) RecordMatch(points int, won bool, playedAt time.Time) error {
	if points < 0 {
		return ErrNegativePoints
	}

	s.MatchesPlayed++
	if won {
		s.Wins++
	}
	s.TotalPoints += points

	playedAt = playedAt.UTC()
	if s.LastPlayedAt == nil || playedAt.After(*s.LastPlayedAt) {
		s.LastPlayedAt = &playedAt
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// WinRate возвращает долю побед в процентах, округлённую до двух
// знаков. Для игрока без матчей - ноль.
func (s *PlayerStats) WinRate() float64 {
	if s.MatchesPlayed == 0 {
		return 0
	}
	rate := float64(s.Wins) / float64(s.MatchesPlayed) * 100
	return math.Round(rate*100) / 100
}

// AveragePoints возвращает среднее количество очков за матч.
func (s *PlayerStats) AveragePoints() float64 {
	if s.MatchesPlayed == 0 {
		return 0
	}
	avg := float64(s.TotalPoints) / float64(s.MatchesPlayed)
	return math.Round(avg*100) / 100
}

// String возвращает строковое представление для логирования.
func (s *PlayerStats) String() string {
	return fmt.Sprintf(
		"PlayerStats{Player: %s, Matches: %d, Wins: %d, Points: %d}",
		s.PlayerID, s.MatchesPlayed, s.Wins, s.TotalPoints,
	)
}

// Clone создаёт копию статистики.
func (s *PlayerStats) Clone() *PlayerStats {
	if s == nil {
		return nil
	}

	clone := *s
	if s.LastPlayedAt != nil {
		t := *s.LastPlayedAt
		clone.LastPlayedAt = &t
	}
	return &clone
}
