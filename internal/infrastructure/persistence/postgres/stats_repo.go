// Package postgres implements PostgreSQL persistence layer for Tabletop Mastering.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"
	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StatsRepository implements ranking.Repository for PostgreSQL.
type StatsRepository struct {
	conn *Connection
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(conn *Connection) *StatsRepository {
	return &StatsRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Increment Operations
// ─────────────────────────────────────────────────────────────────────────────

// ApplyAward atomically adds one match outcome to a player's stats.
// A single upsert on the database side: concurrent match finishes
// never lose increments.
func (r *StatsRepository) ApplyAward(ctx context.Context, groupID, playerID string, points int, won bool) error {
	query := `
		INSERT INTO player_stats (
			group_id, player_id, matches_played, wins, total_points, last_played_at, created_at, updated_at
		) VALUES ($1, $2, 1, $3, $4, $5, $5, $5)
		ON CONFLICT (group_id, player_id) DO UPDATE SET
			matches_played = player_stats.matches_played + 1,
			wins = player_stats.wins + EXCLUDED.wins,
			total_points = player_stats.total_points + EXCLUDED.total_points,
			last_played_at = GREATEST(COALESCE(player_stats.last_played_at, EXCLUDED.last_played_at), EXCLUDED.last_played_at),
			updated_at = EXCLUDED.updated_at
	`

	winInc := 0
	if won {
		winInc = 1
	}

	_, err := r.conn.Exec(ctx, query, groupID, playerID, winInc, points, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to apply award: %w", err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByPlayer returns a player's stats in a group.
func (r *StatsRepository) GetByPlayer(ctx context.Context, groupID, playerID string) (*ranking.PlayerStats, error) {
	query := selectStatsQuery + ` WHERE group_id = $1 AND player_id = $2`

	row := r.conn.QueryRow(ctx, query, groupID, playerID)
	return r.scanStats(row)
}

// GetByGroup returns stats for all players in a group, ordered by
// points descending, then by record creation time.
func (r *StatsRepository) GetByGroup(ctx context.Context, groupID string) ([]*ranking.PlayerStats, error) {
	query := selectStatsQuery + `
		WHERE group_id = $1
		ORDER BY total_points DESC, created_at ASC
	`

	rows, err := r.conn.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query group stats: %w", err)
	}
	defer rows.Close()

	return r.scanStatsList(rows)
}

// GetGlobalTotals returns each player's stats summed across all groups,
// ordered by points descending.
func (r *StatsRepository) GetGlobalTotals(ctx context.Context) ([]*ranking.PlayerStats, error) {
	query := `
		SELECT player_id,
		       SUM(matches_played),
		       SUM(wins),
		       SUM(total_points),
		       MAX(last_played_at),
		       MAX(updated_at)
		FROM player_stats
		GROUP BY player_id
		ORDER BY SUM(total_points) DESC, player_id ASC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query global stats: %w", err)
	}
	defer rows.Close()

	var stats []*ranking.PlayerStats
	for rows.Next() {
		s := &ranking.PlayerStats{}
		if err := rows.Scan(
			&s.PlayerID,
			&s.MatchesPlayed,
			&s.Wins,
			&s.TotalPoints,
			&s.LastPlayedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan global stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate global stats: %w", err)
	}

	return stats, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Maintenance Operations
// ─────────────────────────────────────────────────────────────────────────────

// ReplaceGroup atomically replaces group stats with a recomputed snapshot.
// Used by the full ranking rebuild job.
func (r *StatsRepository) ReplaceGroup(ctx context.Context, groupID string, stats []*ranking.PlayerStats) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM player_stats WHERE group_id = $1", groupID); err != nil {
			return fmt.Errorf("failed to clear group stats: %w", err)
		}

		if len(stats) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		now := time.Now().UTC()
		for _, s := range stats {
			batch.Queue(`
				INSERT INTO player_stats
				(group_id, player_id, matches_played, wins, total_points, last_played_at, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`,
				groupID,
				s.PlayerID,
				s.MatchesPlayed,
				s.Wins,
				s.TotalPoints,
				s.LastPlayedAt,
				now,
				now,
			)
		}

		br := tx.SendBatch(ctx, batch)
		defer br.Close()

		for range stats {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("failed to insert stats row: %w", err)
			}
		}

		return nil
	})
}

// DeleteByGroup removes all stats for a group.
func (r *StatsRepository) DeleteByGroup(ctx context.Context, groupID string) error {
	_, err := r.conn.Exec(ctx, "DELETE FROM player_stats WHERE group_id = $1", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group stats: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

const selectStatsQuery = `
	SELECT group_id, player_id, matches_played, wins, total_points, last_played_at, updated_at
	FROM player_stats
`

// scanStats scans a single stats row.
func (r *StatsRepository) scanStats(row pgx.Row) (*ranking.PlayerStats, error) {
	var s ranking.PlayerStats

	err := row.Scan(
		&s.GroupID,
		&s.PlayerID,
		&s.MatchesPlayed,
		&s.Wins,
		&s.TotalPoints,
		&s.LastPlayedAt,
		&s.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, ranking.ErrStatsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan player stats: %w", err)
	}

	return &s, nil
}

// scanStatsList scans multiple stats rows.
func (r *StatsRepository) scanStatsList(rows pgx.Rows) ([]*ranking.PlayerStats, error) {
	var stats []*ranking.PlayerStats

	for rows.Next() {
		var s ranking.PlayerStats

		err := rows.Scan(
			&s.GroupID,
			&s.PlayerID,
			&s.MatchesPlayed,
			&s.Wins,
			&s.TotalPoints,
			&s.LastPlayedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player stats: %w", err)
		}

		stats = append(stats, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return stats, nil
}

// Ensure interfaces are implemented
var (
	_ player.Repository  = (*PlayerRepository)(nil)
	_ group.Repository   = (*GroupRepository)(nil)
	_ game.Repository    = (*GameRepository)(nil)
	_ match.Repository   = (*MatchRepository)(nil)
	_ ranking.Repository = (*StatsRepository)(nil)
)
