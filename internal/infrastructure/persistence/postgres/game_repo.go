// Package postgres implements PostgreSQL persistence layer for Tabletop Mastering.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAME REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GameRepository implements game.Repository for PostgreSQL.
type GameRepository struct {
	conn *Connection
}

// NewGameRepository creates a new GameRepository.
func NewGameRepository(conn *Connection) *GameRepository {
	return &GameRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new catalog entry.
func (r *GameRepository) Create(ctx context.Context, g *game.Game) error {
	query := `
		INSERT INTO games (
			id, group_id, name, description, source, external_id,
			min_players, max_players, play_time_minutes, year_published,
			thumbnail_url, rating, synced_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.conn.Exec(ctx, query,
		g.ID,
		g.GroupID,
		g.Name,
		g.Description,
		string(g.Source),
		g.ExternalID,
		g.Players.Min,
		g.Players.Max,
		g.PlayTimeMinutes,
		g.YearPublished,
		g.ThumbnailURL,
		g.Rating,
		g.SyncedAt,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return game.ErrGameAlreadyExists
		}
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// GetByID returns a game by internal ID.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*game.Game, error) {
	query := selectGameQuery + ` WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanGame(row)
}

// Update updates a catalog entry.
func (r *GameRepository) Update(ctx context.Context, g *game.Game) error {
	query := `
		UPDATE games SET
			name = $1,
			description = $2,
			source = $3,
			external_id = $4,
			min_players = $5,
			max_players = $6,
			play_time_minutes = $7,
			year_published = $8,
			thumbnail_url = $9,
			rating = $10,
			synced_at = $11,
			updated_at = $12
		WHERE id = $13
	`

	result, err := r.conn.Exec(ctx, query,
		g.Name,
		g.Description,
		string(g.Source),
		g.ExternalID,
		g.Players.Min,
		g.Players.Max,
		g.PlayTimeMinutes,
		g.YearPublished,
		g.ThumbnailURL,
		g.Rating,
		g.SyncedAt,
		time.Now().UTC(),
		g.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return game.ErrGameAlreadyExists
		}
		return fmt.Errorf("failed to update game: %w", err)
	}

	if result.RowsAffected() == 0 {
		return game.ErrGameNotFound
	}

	return nil
}

// Delete removes a catalog entry.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM games WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	if result.RowsAffected() == 0 {
		return game.ErrGameNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByGroupID returns the group catalog with pagination.
func (r *GameRepository) GetByGroupID(ctx context.Context, groupID string, opts game.ListOptions) ([]*game.Game, error) {
	query := selectGameQuery + `
		WHERE group_id = $1
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.conn.Query(ctx, query, groupID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetByExternalID returns a group's game by BoardGameGeek id.
func (r *GameRepository) GetByExternalID(ctx context.Context, groupID string, externalID int64) (*game.Game, error) {
	query := selectGameQuery + ` WHERE group_id = $1 AND external_id = $2`

	row := r.conn.QueryRow(ctx, query, groupID, externalID)
	return r.scanGame(row)
}

// FindSynced returns all entries bound to the external catalog.
// Used by the background sync job.
func (r *GameRepository) FindSynced(ctx context.Context) ([]*game.Game, error) {
	query := selectGameQuery + `
		WHERE source = 'bgg' AND external_id > 0
		ORDER BY synced_at ASC NULLS FIRST
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query synced games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// Search searches the group catalog by name substring.
func (r *GameRepository) Search(ctx context.Context, groupID, searchQuery string, limit int) ([]*game.Game, error) {
	query := selectGameQuery + `
		WHERE group_id = $1 AND LOWER(name) LIKE LOWER($2)
		ORDER BY name ASC
		LIMIT $3
	`

	pattern := "%" + searchQuery + "%"
	rows, err := r.conn.Query(ctx, query, groupID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// CountByGroupID returns the size of the group catalog.
func (r *GameRepository) CountByGroupID(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM games WHERE group_id = $1",
		groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

const selectGameQuery = `
	SELECT id, group_id, name, description, source, external_id,
		   min_players, max_players, play_time_minutes, year_published,
		   thumbnail_url, rating, synced_at, created_at, updated_at
	FROM games
`

// scanGame scans a single game from a row.
func (r *GameRepository) scanGame(row pgx.Row) (*game.Game, error) {
	var g game.Game
	var source string

	err := row.Scan(
		&g.ID,
		&g.GroupID,
		&g.Name,
		&g.Description,
		&source,
		&g.ExternalID,
		&g.Players.Min,
		&g.Players.Max,
		&g.PlayTimeMinutes,
		&g.YearPublished,
		&g.ThumbnailURL,
		&g.Rating,
		&g.SyncedAt,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, game.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}

	g.Source = game.Source(source)
	return &g, nil
}

// scanGames scans multiple games from rows.
func (r *GameRepository) scanGames(rows pgx.Rows) ([]*game.Game, error) {
	var games []*game.Game

	for rows.Next() {
		var g game.Game
		var source string

		err := rows.Scan(
			&g.ID,
			&g.GroupID,
			&g.Name,
			&g.Description,
			&source,
			&g.ExternalID,
			&g.Players.Min,
			&g.Players.Max,
			&g.PlayTimeMinutes,
			&g.YearPublished,
			&g.ThumbnailURL,
			&g.Rating,
			&g.SyncedAt,
			&g.CreatedAt,
			&g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}

		g.Source = game.Source(source)
		games = append(games, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return games, nil
}
