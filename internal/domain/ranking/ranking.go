package ranking

import "sort"

// ══════════════════════════════════════════════════════════════════════════════
// RANKING PROJECTION
// ══════════════════════════════════════════════════════════════════════════════

// Entry - строка турнирной таблицы группы.
type Entry struct {
	// Position - место в таблице, начиная с 1.
	Position int

	// PlayerID - идентификатор игрока.
	PlayerID string

	// TotalPoints - суммарные очки рейтинга.
	TotalPoints int

	// MatchesPlayed - количество сыгранных матчей.
	MatchesPlayed int

	// Wins - количество побед.
	Wins int

	// WinRate - доля побед в процентах.
	WinRate float64
}

// Compute строит турнирную таблицу из накопленной статистики.
//
// Сортировка по суммарным очкам по убыванию; при равенстве очков
// сохраняется исходный порядок записей. Места присваиваются подряд
// начиная с единицы, без пропусков и без разделения ничьих.
func Compute(stats []*PlayerStats) []Entry {
	entries := make([]Entry, 0, len(stats))
	for _, s := range stats {
		if s == nil {
			continue
		}
		entries = append(entries, Entry{
			PlayerID:      s.PlayerID,
			TotalPoints:   s.TotalPoints,
			MatchesPlayed: s.MatchesPlayed,
			Wins:          s.Wins,
			WinRate:       s.WinRate(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})

	for i := range entries {
		entries[i].Position = i + 1
	}
	return entries
}

// Top возвращает первые limit строк таблицы.
func Top(entries []Entry, limit int) []Entry {
	if limit <= 0 || limit >= len(entries) {
		return entries
	}
	return entries[:limit]
}

// Find возвращает строку таблицы для указанного игрока.
// Второе значение false, если игрока нет в таблице.
func Find(entries []Entry, playerID string) (Entry, bool) {
	for _, e := range entries {
		if e.PlayerID == playerID {
			return e, true
		}
	}
	return Entry{}, false
}
