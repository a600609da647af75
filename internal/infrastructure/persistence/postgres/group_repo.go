// Package postgres implements PostgreSQL persistence layer for Tabletop Mastering.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/group"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// GROUP REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GroupRepository implements group.Repository for PostgreSQL.
// Members are stored as a jsonb object keyed by player id.
type GroupRepository struct {
	conn *Connection
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(conn *Connection) *GroupRepository {
	return &GroupRepository{conn: conn}
}

// memberRecord is the jsonb representation of a group member.
type memberRecord struct {
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new group.
func (r *GroupRepository) Create(ctx context.Context, g *group.Group) error {
	query := `
		INSERT INTO groups (
			id, name, description, owner_id, members, is_deleted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	membersJSON, err := marshalMembers(g.Members)
	if err != nil {
		return err
	}

	_, err = r.conn.Exec(ctx, query,
		g.ID,
		g.Name,
		g.Description,
		g.OwnerID,
		membersJSON,
		g.IsDeleted,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return group.ErrGroupAlreadyExists
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	return nil
}

// GetByID returns a group by internal ID.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*group.Group, error) {
	query := `
		SELECT id, name, description, owner_id, members, is_deleted, created_at, updated_at
		FROM groups
		WHERE id = $1 AND is_deleted = FALSE
	`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanGroup(row)
}

// GetByName returns a group by its name.
func (r *GroupRepository) GetByName(ctx context.Context, name string) (*group.Group, error) {
	query := `
		SELECT id, name, description, owner_id, members, is_deleted, created_at, updated_at
		FROM groups
		WHERE name = $1 AND is_deleted = FALSE
	`

	row := r.conn.QueryRow(ctx, query, name)
	return r.scanGroup(row)
}

// Update updates a group, including its member set.
func (r *GroupRepository) Update(ctx context.Context, g *group.Group) error {
	query := `
		UPDATE groups SET
			name = $1,
			description = $2,
			owner_id = $3,
			members = $4,
			is_deleted = $5,
			updated_at = $6
		WHERE id = $7
	`

	membersJSON, err := marshalMembers(g.Members)
	if err != nil {
		return err
	}

	result, err := r.conn.Exec(ctx, query,
		g.Name,
		g.Description,
		g.OwnerID,
		membersJSON,
		g.IsDeleted,
		time.Now().UTC(),
		g.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return group.ErrGroupAlreadyExists
		}
		return fmt.Errorf("failed to update group: %w", err)
	}

	if result.RowsAffected() == 0 {
		return group.ErrGroupNotFound
	}

	return nil
}

// Delete marks a group deleted (soft delete).
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE groups
		SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`

	result, err := r.conn.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	if result.RowsAffected() == 0 {
		return group.ErrGroupNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetAll returns all active groups with pagination.
func (r *GroupRepository) GetAll(ctx context.Context, opts group.ListOptions) ([]*group.Group, error) {
	query := `
		SELECT id, name, description, owner_id, members, is_deleted, created_at, updated_at
		FROM groups
		WHERE is_deleted = FALSE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.conn.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	return r.scanGroups(rows)
}

// GetByPlayerID returns all groups a player belongs to.
// Uses the GIN index on the members jsonb column.
func (r *GroupRepository) GetByPlayerID(ctx context.Context, playerID string) ([]*group.Group, error) {
	query := `
		SELECT id, name, description, owner_id, members, is_deleted, created_at, updated_at
		FROM groups
		WHERE members ? $1 AND is_deleted = FALSE
		ORDER BY created_at DESC
	`

	rows, err := r.conn.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups by player: %w", err)
	}
	defer rows.Close()

	return r.scanGroups(rows)
}

// Count returns the number of active groups.
func (r *GroupRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn.QueryRow(ctx,
		"SELECT COUNT(*) FROM groups WHERE is_deleted = FALSE",
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count groups: %w", err)
	}
	return count, nil
}

// Exists checks if an active group exists by ID.
func (r *GroupRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1 AND is_deleted = FALSE)",
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check group existence: %w", err)
	}
	return exists, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// marshalMembers converts the member map to its jsonb representation.
func marshalMembers(members map[string]group.Member) ([]byte, error) {
	records := make(map[string]memberRecord, len(members))
	for id, m := range members {
		records[id] = memberRecord{
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt,
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal group members: %w", err)
	}
	return data, nil
}

// unmarshalMembers converts jsonb bytes back to the member map.
func unmarshalMembers(data []byte) (map[string]group.Member, error) {
	records := make(map[string]memberRecord)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal group members: %w", err)
		}
	}

	members := make(map[string]group.Member, len(records))
	for id, rec := range records {
		members[id] = group.Member{
			PlayerID: id,
			Role:     group.Role(rec.Role),
			JoinedAt: rec.JoinedAt,
		}
	}
	return members, nil
}

// scanGroup scans a single group from a row.
func (r *GroupRepository) scanGroup(row pgx.Row) (*group.Group, error) {
	var g group.Group
	var membersJSON []byte

	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.OwnerID,
		&membersJSON,
		&g.IsDeleted,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	if IsNoRows(err) {
		return nil, group.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan group: %w", err)
	}

	g.Members, err = unmarshalMembers(membersJSON)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// scanGroups scans multiple groups from rows.
func (r *GroupRepository) scanGroups(rows pgx.Rows) ([]*group.Group, error) {
	var groups []*group.Group

	for rows.Next() {
		var g group.Group
		var membersJSON []byte

		err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Description,
			&g.OwnerID,
			&membersJSON,
			&g.IsDeleted,
			&g.CreatedAt,
			&g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}

		g.Members, err = unmarshalMembers(membersJSON)
		if err != nil {
			return nil, err
		}

		groups = append(groups, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return groups, nil
}
