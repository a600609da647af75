package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollout.
// Supports percentage rollout, per-player overrides, and time windows.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	playerOverrides map[string]map[string]bool // playerID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Players are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	PlayerID string // player UUID
	IsAdmin  bool   // group admin or platform operator
}

// Predefined feature flag names.
const (
	// === Ranking Features ===
	FeatureRankingCache    = "ranking.cache"     // Serve rankings from Redis sorted sets
	FeatureRankingWinRate  = "ranking.win_rate"  // Include win rate in ranking rows
	FeatureRankingTopLimit = "ranking.top_limit" // Allow ?limit on ranking endpoint

	// === Catalog Features ===
	FeatureCatalogBGGSync = "catalog.bgg_sync" // Background sync with BoardGameGeek
	FeatureCatalogSearch  = "catalog.search"   // Search BGG from the catalog UI

	// === Match Features ===
	FeatureMatchExpiry     = "matches.expiry"     // Auto-expire overdue scheduled matches
	FeatureMatchReschedule = "matches.reschedule" // Allow moving scheduled matches

	// === Experimental Features ===
	FeatureExperimentalEloRanking = "experimental.elo_ranking" // Elo-based alternative ranking
	FeatureExperimentalWebhooks   = "experimental.webhooks"    // Outbound result webhooks
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:        make(map[string]*Feature),
		playerOverrides: make(map[string]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Ranking features - enabled by default
	ff.features[FeatureRankingCache] = &Feature{
		Name:           FeatureRankingCache,
		Description:    "Serve group rankings from Redis",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRankingWinRate] = &Feature{
		Name:           FeatureRankingWinRate,
		Description:    "Show win rate in ranking rows",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureRankingTopLimit] = &Feature{
		Name:           FeatureRankingTopLimit,
		Description:    "Allow limiting ranking to top N",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Catalog features
	ff.features[FeatureCatalogBGGSync] = &Feature{
		Name:           FeatureCatalogBGGSync,
		Description:    "Sync catalog entries with BoardGameGeek",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCatalogSearch] = &Feature{
		Name:           FeatureCatalogSearch,
		Description:    "Search BoardGameGeek from the catalog",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Match features
	ff.features[FeatureMatchExpiry] = &Feature{
		Name:           FeatureMatchExpiry,
		Description:    "Expire overdue scheduled matches",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureMatchReschedule] = &Feature{
		Name:           FeatureMatchReschedule,
		Description:    "Allow rescheduling matches",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled by default
	ff.features[FeatureExperimentalEloRanking] = &Feature{
		Name:           FeatureExperimentalEloRanking,
		Description:    "Elo-based alternative ranking",
		Enabled:        false,
		RolloutPercent: 0,
	}

	ff.features[FeatureExperimentalWebhooks] = &Feature{
		Name:           FeatureExperimentalWebhooks,
		Description:    "Outbound webhooks on match results",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_CATALOG_BGG_SYNC=false
// Example: FEATURE_EXPERIMENTAL_ELO_RANKING=25 (25% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "catalog.bgg_sync" -> "FEATURE_CATALOG_BGG_SYNC"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check player overrides first
	if ctx != nil && ctx.PlayerID != "" {
		if overrides, ok := ff.playerOverrides[ctx.PlayerID]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Admin users get all features
	if ctx != nil && ctx.IsAdmin {
		return true
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.PlayerID != "" {
		return ff.isInRollout(ctx.PlayerID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a player is in the rollout percentage.
// Uses consistent hashing so players stay in their bucket.
func (ff *FeatureFlags) isInRollout(playerID, featureName string, percent int) bool {
	// Create a consistent hash for this player+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(playerID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// SetPlayerOverride sets a feature override for a specific player.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetPlayerOverride(playerID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.playerOverrides[playerID]; !ok {
		ff.playerOverrides[playerID] = make(map[string]bool)
	}
	ff.playerOverrides[playerID][featureName] = enabled
}

// ClearPlayerOverrides removes all overrides for a player.
func (ff *FeatureFlags) ClearPlayerOverrides(playerID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.playerOverrides, playerID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
