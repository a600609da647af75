// Package postgres implements PostgreSQL persistence layer for Tabletop Mastering.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/match"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MATCH REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// MatchRepository implements match.Repository for PostgreSQL.
// Participants and results are stored as jsonb columns.
type MatchRepository struct {
	conn *Connection
}

// NewMatchRepository creates a new MatchRepository.
func NewMatchRepository(conn *Connection) *MatchRepository {
	return &MatchRepository{conn: conn}
}

// resultRecord is the jsonb representation of a player result.
type resultRecord struct {
	PlayerID string `json:"player_id"`
	Position int    `json:"position"`
	Score    int    `json:"score"`
	Points   int    `json:"points"`
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new match.
func (r *MatchRepository) Create(ctx context.Context, m *match.Match) error {
	query := `
		INSERT INTO matches (
			id, group_id, game_id, created_by, status, scheduled_at,
			location, participants, results, finished_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	participantsJSON, resultsJSON, err := marshalMatchPayload(m)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, query,
		m.ID,
		m.GroupID,
		m.GameID,
		m.CreatedBy,
		string(m.Status),
		m.ScheduledAt,
		m.Location,
		participantsJSON,
		resultsJSON,
		m.FinishedAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	return nil
}

// GetByID returns a match by internal ID.
func (r *MatchRepository) GetByID(ctx context.Context, id string) (*match.Match, error) {
	query := selectMatchQuery + ` WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanMatch(row)
}

// Update updates a match, including participants and results.
func (r *MatchRepository) Update(ctx context.Context, m *match.Match) error {
	query := `
		UPDATE matches SET
			status = $1,
			scheduled_at = $2,
			location = $3,
			participants = $4,
			results = $5,
			finished_at = $6,
			updated_at = $7
		WHERE id = $8
	`

	participantsJSON, resultsJSON, err := marshalMatchPayload(m)
	if err != nil {
		return err
	}

	result, err := r.conn.Exec(ctx, query,
		string(m.Status),
		m.ScheduledAt,
		m.Location,
		participantsJSON,
		resultsJSON,
		m.FinishedAt,
		time.Now().UTC(),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	if result.RowsAffected() == 0 {
		return match.ErrMatchNotFound
	}

	return nil
}

// Delete removes a match.
func (r *MatchRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, "DELETE FROM matches WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}

	if result.RowsAffected() == 0 {
		return match.ErrMatchNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetByGroupID returns group matches with filtering and pagination.
func (r *MatchRepository) GetByGroupID(ctx context.Context, groupID string, filter match.Filter) ([]*match.Match, error) {
	query, args := buildMatchQuery("group_id = $1", []interface{}{groupID}, filter)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	return r.scanMatches(rows)
}

// GetByPlayerID returns matches where the player is a participant.
// Uses the jsonb containment operator on the participants array.
func (r *MatchRepository) GetByPlayerID(ctx context.Context, playerID string, filter match.Filter) ([]*match.Match, error) {
	playerJSON, err := json.Marshal([]string{playerID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player id: %w", err)
	}

	query, args := buildMatchQuery("participants @> $1", []interface{}{playerJSON}, filter)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches by player: %w", err)
	}
	defer rows.Close()

	return r.scanMatches(rows)
}

// FindOverdue returns scheduled matches whose time passed more than grace ago.
// Used by the background expiry job.
func (r *MatchRepository) FindOverdue(ctx context.Context, now time.Time, grace time.Duration) ([]*match.Match, error) {
	query := selectMatchQuery + `
		WHERE status = 'scheduled' AND scheduled_at < $1
		ORDER BY scheduled_at ASC
	`

	rows, err := r.conn.Query(ctx, query, now.Add(-grace))
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue matches: %w", err)
	}
	defer rows.Close()

	return r.scanMatches(rows)
}

// CountByGroupID returns the number of group matches by status.
// Empty status counts all matches.
func (r *MatchRepository) CountByGroupID(ctx context.Context, groupID string, status match.Status) (int64, error) {
	query := "SELECT COUNT(*) FROM matches WHERE group_id = $1"
	args := []interface{}{groupID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, string(status))
	}

	var count int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

const selectMatchQuery = `
	SELECT id, group_id, game_id, created_by, status, scheduled_at,
		   location, participants, results, finished_at, created_at, updated_at
	FROM matches
`

// buildMatchQuery builds a filtered list query starting from a base condition.
func buildMatchQuery(baseCond string, args []interface{}, filter match.Filter) (string, []interface{}) {
	query := selectMatchQuery + " WHERE " + baseCond
	argIndex := len(args) + 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(filter.Status))
		argIndex++
	}

	if filter.GameID != "" {
		query += fmt.Sprintf(" AND game_id = $%d", argIndex)
		args = append(args, filter.GameID)
		argIndex++
	}

	if !filter.From.IsZero() {
		query += fmt.Sprintf(" AND scheduled_at >= $%d", argIndex)
		args = append(args, filter.From)
		argIndex++
	}

	if !filter.To.IsZero() {
		query += fmt.Sprintf(" AND scheduled_at <= $%d", argIndex)
		args = append(args, filter.To)
		argIndex++
	}

	query += " ORDER BY scheduled_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = match.DefaultFilter().Limit
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, filter.Offset)

	return query, args
}

// marshalMatchPayload converts participants and results to jsonb.
func marshalMatchPayload(m *match.Match) ([]byte, []byte, error) {
	participants := m.ParticipantIDs
	if participants == nil {
		participants = []string{}
	}

	participantsJSON, err := json.Marshal(participants)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal participants: %w", err)
	}

	records := make([]resultRecord, 0, len(m.Results))
	for _, res := range m.Results {
		records = append(records, resultRecord{
			PlayerID: res.PlayerID,
			Position: res.Position,
			Score:    res.Score,
			Points:   res.Points,
		})
	}

	resultsJSON, err := json.Marshal(records)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	return participantsJSON, resultsJSON, nil
}

// unmarshalMatchPayload fills participants and results from jsonb bytes.
func unmarshalMatchPayload(m *match.Match, participantsJSON, resultsJSON []byte) error {
	if len(participantsJSON) > 0 {
		if err := json.Unmarshal(participantsJSON, &m.ParticipantIDs); err != nil {
			return fmt.Errorf("failed to unmarshal participants: %w", err)
		}
	}

	var records []resultRecord
	if len(resultsJSON) > 0 {
		if err := json.Unmarshal(resultsJSON, &records); err != nil {
			return fmt.Errorf("failed to unmarshal results: %w", err)
		}
	}

	if len(records) > 0 {
		m.Results = make([]match.Result, 0, len(records))
		for _, rec := range records {
			m.Results = append(m.Results, match.Result{
				PlayerID: rec.PlayerID,
				Position: rec.Position,
				Score:    rec.Score,
				Points:   rec.Points,
			})
		}
	}

	return nil
}

// scanMatch scans a single match from a row.
func (r *MatchRepository) scanMatch(row pgx.Row) (*match.Match, error) {
	var m match.Match
	var status string
	var participantsJSON, resultsJSON []byte

	err := row.Scan(
		&m.ID,
		&m.GroupID,
		&m.GameID,
		&m.CreatedBy,
		&status,
		&m.ScheduledAt,
		&m.Location,
		&participantsJSON,
		&resultsJSON,
		&m.FinishedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, match.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	m.Status = match.Status(status)
	if err := unmarshalMatchPayload(&m, participantsJSON, resultsJSON); err != nil {
		return nil, err
	}

	return &m, nil
}

// scanMatches scans multiple matches from rows.
func (r *MatchRepository) scanMatches(rows pgx.Rows) ([]*match.Match, error) {
	var matches []*match.Match

	for rows.Next() {
		var m match.Match
		var status string
		var participantsJSON, resultsJSON []byte

		err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.GameID,
			&m.CreatedBy,
			&status,
			&m.ScheduledAt,
			&m.Location,
			&participantsJSON,
			&resultsJSON,
			&m.FinishedAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}

		m.Status = match.Status(status)
		if err := unmarshalMatchPayload(&m, participantsJSON, resultsJSON); err != nil {
			return nil, err
		}

		matches = append(matches, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return matches, nil
}
