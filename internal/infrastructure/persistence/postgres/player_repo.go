// Package postgres implements PostgreSQL persistence layer for Tabletop Mastering.
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/player"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PlayerRepository implements player.Repository for PostgreSQL.
type PlayerRepository struct {
	conn *Connection
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(conn *Connection) *PlayerRepository {
	return &PlayerRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new player.
func (r *PlayerRepository) Create(ctx context.Context, p *player.Player) error {
	query := `
		INSERT INTO players (
			id, email, password_hash, display_name, avatar_url,
			status, last_seen_at, joined_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.Email.String(),
		p.PasswordHash,
		p.DisplayName,
		p.AvatarURL,
		string(p.Status),
		p.LastSeenAt,
		p.JoinedAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return player.ErrPlayerAlreadyExists
		}
		return fmt.Errorf("failed to create player: %w", err)
	}

	return nil
}

// GetByID returns a player by internal ID.
func (r *PlayerRepository) GetByID(ctx context.Context, id string) (*player.Player, error) {
	query := `
		SELECT id, email, password_hash, display_name, avatar_url,
			   status, last_seen_at, joined_at, created_at, updated_at
		FROM players
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanPlayer(row)
}

// GetByEmail returns a player by email.
func (r *PlayerRepository) GetByEmail(ctx context.Context, email player.Email) (*player.Player, error) {
	query := `
		SELECT id, email, password_hash, display_name, avatar_url,
			   status, last_seen_at, joined_at, created_at, updated_at
		FROM players
		WHERE email = $1
	`

	row := r.conn.QueryRow(ctx, query, email.Normalize().String())
	return r.scanPlayer(row)
}

// Update updates a player.
func (r *PlayerRepository) Update(ctx context.Context, p *player.Player) error {
	query := `
		UPDATE players SET
			email = $1,
			password_hash = $2,
			display_name = $3,
			avatar_url = $4,
			status = $5,
			last_seen_at = $6,
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.conn.Exec(ctx, query,
		p.Email.String(),
		p.PasswordHash,
		p.DisplayName,
		p.AvatarURL,
		string(p.Status),
		p.LastSeenAt,
		time.Now().UTC(),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	if result.RowsAffected() == 0 {
		return player.ErrPlayerNotFound
	}

	return nil
}

// Delete performs a soft delete on a player (sets status to 'left').
func (r *PlayerRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE players
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.conn.Exec(ctx, query,
		string(player.StatusLeft),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}

	if result.RowsAffected() == 0 {
		return player.ErrPlayerNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bulk Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetAll returns all players with pagination.
func (r *PlayerRepository) GetAll(ctx context.Context, opts player.ListOptions) ([]*player.Player, error) {
	query := r.buildListQuery(opts, "")

	rows, err := r.conn.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// GetByIDs returns players by a list of IDs.
func (r *PlayerRepository) GetByIDs(ctx context.Context, ids []string) ([]*player.Player, error) {
	if len(ids) == 0 {
		return []*player.Player{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, email, password_hash, display_name, avatar_url,
			   status, last_seen_at, joined_at, created_at, updated_at
		FROM players
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players by ids: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// Count returns the total number of players.
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM players").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Search & Filter
// ─────────────────────────────────────────────────────────────────────────────

// Search searches players by display name or email.
func (r *PlayerRepository) Search(ctx context.Context, query string, opts player.ListOptions) ([]*player.Player, error) {
	searchPattern := "%" + strings.ToLower(query) + "%"

	sqlQuery := `
		SELECT id, email, password_hash, display_name, avatar_url,
			   status, last_seen_at, joined_at, created_at, updated_at
		FROM players
		WHERE (LOWER(email) LIKE $1 OR LOWER(display_name) LIKE $1)
	`

	if !opts.IncludeInactive {
		sqlQuery += " AND status IN ('active', 'inactive')"
	}

	sqlQuery += r.buildOrderBy(opts)
	sqlQuery += " LIMIT $2 OFFSET $3"

	rows, err := r.conn.Query(ctx, sqlQuery, searchPattern, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// FindInactive finds players inactive for more than the specified duration.
func (r *PlayerRepository) FindInactive(ctx context.Context, threshold time.Duration) ([]*player.Player, error) {
	thresholdTime := time.Now().UTC().Add(-threshold)

	query := `
		SELECT id, email, password_hash, display_name, avatar_url,
			   status, last_seen_at, joined_at, created_at, updated_at
		FROM players
		WHERE last_seen_at < $1 AND status = 'active'
		ORDER BY last_seen_at ASC
	`

	rows, err := r.conn.Query(ctx, query, thresholdTime)
	if err != nil {
		return nil, fmt.Errorf("failed to find inactive players: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// ─────────────────────────────────────────────────────────────────────────────
// Existence Checks
// ─────────────────────────────────────────────────────────────────────────────

// Exists checks if a player exists by ID.
func (r *PlayerRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM players WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check player existence: %w", err)
	}
	return exists, nil
}

// ExistsByEmail checks if a player exists by email.
func (r *PlayerRepository) ExistsByEmail(ctx context.Context, email player.Email) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM players WHERE email = $1)",
		email.Normalize().String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check player existence by email: %w", err)
	}
	return exists, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// scanPlayer scans a single player from a row.
func (r *PlayerRepository) scanPlayer(row pgx.Row) (*player.Player, error) {
	var p player.Player
	var email, status string

	err := row.Scan(
		&p.ID,
		&email,
		&p.PasswordHash,
		&p.DisplayName,
		&p.AvatarURL,
		&status,
		&p.LastSeenAt,
		&p.JoinedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, player.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}

	p.Email = player.Email(email)
	p.Status = player.Status(status)

	return &p, nil
}

// scanPlayers scans multiple players from rows.
func (r *PlayerRepository) scanPlayers(rows pgx.Rows) ([]*player.Player, error) {
	var players []*player.Player

	for rows.Next() {
		var p player.Player
		var email, status string

		err := rows.Scan(
			&p.ID,
			&email,
			&p.PasswordHash,
			&p.DisplayName,
			&p.AvatarURL,
			&status,
			&p.LastSeenAt,
			&p.JoinedAt,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}

		p.Email = player.Email(email)
		p.Status = player.Status(status)

		players = append(players, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return players, nil
}

// buildListQuery builds a SELECT query with filters and ordering.
func (r *PlayerRepository) buildListQuery(opts player.ListOptions, whereClause string) string {
	query := `
		SELECT id, email, password_hash, display_name, avatar_url,
			   status, last_seen_at, joined_at, created_at, updated_at
		FROM players
	`

	conditions := []string{}
	if whereClause != "" {
		conditions = append(conditions, whereClause)
	}
	if !opts.IncludeInactive {
		conditions = append(conditions, "status IN ('active', 'inactive')")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += r.buildOrderBy(opts)
	query += " LIMIT $1 OFFSET $2"

	return query
}

// buildOrderBy builds ORDER BY clause.
func (r *PlayerRepository) buildOrderBy(opts player.ListOptions) string {
	orderField := "joined_at"
	validFields := map[string]string{
		"display_name": "display_name",
		"name":         "display_name",
		"email":        "email",
		"last_seen_at": "last_seen_at",
		"joined_at":    "joined_at",
		"created_at":   "created_at",
	}

	if field, ok := validFields[opts.SortBy]; ok {
		orderField = field
	}

	direction := "DESC"
	if !opts.SortDesc {
		direction = "ASC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", orderField, direction)
}
