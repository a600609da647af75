// Package redis implements Redis caching and pub/sub functionality.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/ranking"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrRankingEmpty is returned when the group ranking has no entries.
	ErrRankingEmpty = errors.New("ranking_cache: ranking is empty")

	// ErrPlayerNotInRanking is returned when a player is not found in the ranking.
	ErrPlayerNotInRanking = errors.New("ranking_cache: player not in ranking")

	// ErrGroupIDEmpty is returned when an empty group id is provided.
	ErrGroupIDEmpty = errors.New("ranking_cache: group id cannot be empty")

	// ErrPlayerIDEmpty is returned when an empty player id is provided.
	ErrPlayerIDEmpty = errors.New("ranking_cache: player id cannot be empty")

	// ErrInvalidLimit is returned when an invalid limit is provided.
	ErrInvalidLimit = errors.New("ranking_cache: invalid limit")
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE
// ══════════════════════════════════════════════════════════════════════════════

// RankingCache provides fast per-group ranking reads using Redis Sorted Sets.
//
// Architecture:
//   - Sorted Set "ranking:points:{groupID}" stores playerID -> total points
//   - Hash "ranking:info:{groupID}" stores playerID -> ranking entry JSON
//   - String "ranking:meta:{groupID}" stores metadata (last rebuild, entry count)
//
// The sorted set gives O(log N) point lookups; the authoritative positions
// (including tie order) come from the entry JSON written on rebuild.
type RankingCache struct {
	cache *Cache
}

// Key patterns for ranking cache.
const (
	// keyRankingPoints is the sorted set for point totals.
	keyRankingPoints = "ranking:points:"

	// keyRankingInfo is the hash for entry details.
	keyRankingInfo = "ranking:info:"

	// keyRankingMeta is the metadata key.
	keyRankingMeta = "ranking:meta:"
)

// cachedEntry is the JSON representation of a ranking entry.
type cachedEntry struct {
	Position      int     `json:"position"`
	PlayerID      string  `json:"player_id"`
	TotalPoints   int     `json:"total_points"`
	MatchesPlayed int     `json:"matches_played"`
	Wins          int     `json:"wins"`
	WinRate       float64 `json:"win_rate"`
}

// RankingMeta contains metadata about a cached group ranking.
type RankingMeta struct {
	GroupID       string    `json:"group_id"`
	LastRebuiltAt time.Time `json:"last_rebuilt_at"`
	TotalPlayers  int64     `json:"total_players"`
}

// NewRankingCache creates a new RankingCache instance.
func NewRankingCache(cache *Cache) *RankingCache {
	return &RankingCache{cache: cache}
}

// ══════════════════════════════════════════════════════════════════════════════
// WRITE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Rebuild replaces the cached ranking of a group with freshly computed entries.
// Entries are expected in position order, ties already resolved.
func (r *RankingCache) Rebuild(ctx context.Context, groupID string, entries []ranking.Entry) error {
	if groupID == "" {
		return ErrGroupIDEmpty
	}

	pointsKey := keyRankingPoints + groupID
	infoKey := keyRankingInfo + groupID
	metaKey := keyRankingMeta + groupID

	pipe := r.cache.Client().TxPipeline()

	pipe.Del(ctx, pointsKey, infoKey)

	if len(entries) > 0 {
		zMembers := make([]redis.Z, 0, len(entries))
		hashData := make(map[string]interface{}, len(entries))

		for _, entry := range entries {
			if entry.PlayerID == "" {
				continue
			}

			zMembers = append(zMembers, redis.Z{
				Score:  float64(entry.TotalPoints),
				Member: entry.PlayerID,
			})

			data, err := json.Marshal(cachedEntry{
				Position:      entry.Position,
				PlayerID:      entry.PlayerID,
				TotalPoints:   entry.TotalPoints,
				MatchesPlayed: entry.MatchesPlayed,
				Wins:          entry.Wins,
				WinRate:       entry.WinRate,
			})
			if err != nil {
				return fmt.Errorf("failed to marshal ranking entry: %w", err)
			}
			hashData[entry.PlayerID] = data
		}

		if len(zMembers) > 0 {
			pipe.ZAdd(ctx, pointsKey, zMembers...)
			pipe.HSet(ctx, infoKey, hashData)
		}
	}

	meta := RankingMeta{
		GroupID:       groupID,
		LastRebuiltAt: time.Now().UTC(),
		TotalPlayers:  int64(len(entries)),
	}
	metaData, _ := json.Marshal(meta)
	pipe.Set(ctx, metaKey, metaData, TTLRankingCache)

	pipe.Expire(ctx, pointsKey, TTLRankingCache)
	pipe.Expire(ctx, infoKey, TTLRankingCache)

	_, err := pipe.Exec(ctx)
	return err
}

// UpdatePoints updates only the point total for a player (fast path after a match).
// Positions in the info hash become stale until the next Rebuild.
func (r *RankingCache) UpdatePoints(ctx context.Context, groupID, playerID string, totalPoints int) error {
	if groupID == "" {
		return ErrGroupIDEmpty
	}
	if playerID == "" {
		return ErrPlayerIDEmpty
	}

	pointsKey := keyRankingPoints + groupID
	return r.cache.Client().ZAdd(ctx, pointsKey, redis.Z{
		Score:  float64(totalPoints),
		Member: playerID,
	}).Err()
}

// ══════════════════════════════════════════════════════════════════════════════
// READ OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetTop returns the top N entries of a group ranking in position order.
func (r *RankingCache) GetTop(ctx context.Context, groupID string, limit int) ([]ranking.Entry, error) {
	if groupID == "" {
		return nil, ErrGroupIDEmpty
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	pointsKey := keyRankingPoints + groupID

	playerIDs, err := r.cache.Client().ZRevRange(ctx, pointsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	if len(playerIDs) == 0 {
		return []ranking.Entry{}, nil
	}

	return r.getEntries(ctx, groupID, playerIDs)
}

// GetAll returns the full cached ranking of a group in position order.
func (r *RankingCache) GetAll(ctx context.Context, groupID string) ([]ranking.Entry, error) {
	if groupID == "" {
		return nil, ErrGroupIDEmpty
	}

	infoKey := keyRankingInfo + groupID

	data, err := r.cache.Client().HGetAll(ctx, infoKey).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrCacheMiss
	}

	entries := make([]ranking.Entry, 0, len(data))
	for _, raw := range data {
		var ce cachedEntry
		if err := json.Unmarshal([]byte(raw), &ce); err != nil {
			continue
		}
		entries = append(entries, toDomainEntry(ce))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})

	return entries, nil
}

// GetPlayer returns a single cached entry for a player.
// Returns ErrPlayerNotInRanking if the player has no cached entry.
func (r *RankingCache) GetPlayer(ctx context.Context, groupID, playerID string) (*ranking.Entry, error) {
	if groupID == "" {
		return nil, ErrGroupIDEmpty
	}
	if playerID == "" {
		return nil, ErrPlayerIDEmpty
	}

	infoKey := keyRankingInfo + groupID

	raw, err := r.cache.Client().HGet(ctx, infoKey, playerID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPlayerNotInRanking
		}
		return nil, err
	}

	var ce cachedEntry
	if err := json.Unmarshal(raw, &ce); err != nil {
		return nil, err
	}

	entry := toDomainEntry(ce)
	return &entry, nil
}

// GetPoints returns the cached point total for a player.
func (r *RankingCache) GetPoints(ctx context.Context, groupID, playerID string) (int, error) {
	if groupID == "" {
		return 0, ErrGroupIDEmpty
	}
	if playerID == "" {
		return 0, ErrPlayerIDEmpty
	}

	pointsKey := keyRankingPoints + groupID

	score, err := r.cache.Client().ZScore(ctx, pointsKey, playerID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrPlayerNotInRanking
		}
		return 0, err
	}

	return int(score), nil
}

// GetCount returns the number of cached ranking entries for a group.
func (r *RankingCache) GetCount(ctx context.Context, groupID string) (int64, error) {
	if groupID == "" {
		return 0, ErrGroupIDEmpty
	}

	pointsKey := keyRankingPoints + groupID
	return r.cache.Client().ZCard(ctx, pointsKey).Result()
}

// GetMeta returns the ranking metadata for a group.
func (r *RankingCache) GetMeta(ctx context.Context, groupID string) (*RankingMeta, error) {
	if groupID == "" {
		return nil, ErrGroupIDEmpty
	}

	data, err := r.cache.Client().Get(ctx, keyRankingMeta+groupID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var meta RankingMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// Exists checks if a cached ranking exists for a group.
func (r *RankingCache) Exists(ctx context.Context, groupID string) (bool, error) {
	if groupID == "" {
		return false, ErrGroupIDEmpty
	}

	count, err := r.cache.Client().Exists(ctx, keyRankingPoints+groupID).Result()
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAINTENANCE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Invalidate removes all cached ranking data for a group.
// Called when a match finishes or group membership changes.
func (r *RankingCache) Invalidate(ctx context.Context, groupID string) error {
	if groupID == "" {
		return ErrGroupIDEmpty
	}

	keys := []string{
		keyRankingPoints + groupID,
		keyRankingInfo + groupID,
		keyRankingMeta + groupID,
	}

	return r.cache.Client().Del(ctx, keys...).Err()
}

// InvalidateAll removes all cached ranking data.
func (r *RankingCache) InvalidateAll(ctx context.Context) error {
	if err := r.cache.DeleteByPattern(ctx, keyRankingPoints+"*"); err != nil {
		return err
	}
	if err := r.cache.DeleteByPattern(ctx, keyRankingInfo+"*"); err != nil {
		return err
	}
	return r.cache.DeleteByPattern(ctx, keyRankingMeta+"*")
}

// RefreshTTL extends the TTL of a group's cached ranking.
func (r *RankingCache) RefreshTTL(ctx context.Context, groupID string, ttl time.Duration) error {
	if groupID == "" {
		return ErrGroupIDEmpty
	}
	if ttl <= 0 {
		ttl = TTLRankingCache
	}

	pipe := r.cache.Client().Pipeline()

	pipe.Expire(ctx, keyRankingPoints+groupID, ttl)
	pipe.Expire(ctx, keyRankingInfo+groupID, ttl)
	pipe.Expire(ctx, keyRankingMeta+groupID, ttl)

	_, err := pipe.Exec(ctx)
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER METHODS
// ══════════════════════════════════════════════════════════════════════════════

// getEntries retrieves entries for player ids and sorts them by position.
func (r *RankingCache) getEntries(ctx context.Context, groupID string, playerIDs []string) ([]ranking.Entry, error) {
	infoKey := keyRankingInfo + groupID

	data, err := r.cache.Client().HMGet(ctx, infoKey, playerIDs...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]ranking.Entry, 0, len(playerIDs))
	for _, v := range data {
		if v == nil {
			continue
		}

		str, ok := v.(string)
		if !ok {
			continue
		}

		var ce cachedEntry
		if err := json.Unmarshal([]byte(str), &ce); err != nil {
			continue
		}
		entries = append(entries, toDomainEntry(ce))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})

	return entries, nil
}

// toDomainEntry converts a cached entry to the domain type.
func toDomainEntry(ce cachedEntry) ranking.Entry {
	return ranking.Entry{
		Position:      ce.Position,
		PlayerID:      ce.PlayerID,
		TotalPoints:   ce.TotalPoints,
		MatchesPlayed: ce.MatchesPlayed,
		Wins:          ce.Wins,
		WinRate:       ce.WinRate,
	}
}
