// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the in-process event dispatching.
// Each event represents something significant that happened in the domain.
const (
	// Player events
	EventPlayerRegistered  EventType = "player.registered"
	EventPlayerUpdated     EventType = "player.updated"
	EventPlayerDeactivated EventType = "player.deactivated"

	// Group events
	EventGroupCreated  EventType = "group.created"
	EventMemberJoined  EventType = "group.member_joined"
	EventMemberLeft    EventType = "group.member_left"

	// Game catalog events
	EventGameAdded  EventType = "game.added"
	EventGameSynced EventType = "game.synced"

	// Match events
	EventMatchScheduled EventType = "match.scheduled"
	EventMatchFinished  EventType = "match.finished"
	EventMatchExpired   EventType = "match.expired"

	// Ranking events
	EventPointsAwarded  EventType = "ranking.points_awarded"
	EventRankingRebuilt EventType = "ranking.rebuilt"

	// System events
	EventCatalogSyncCompleted EventType = "system.catalog_sync_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Player Events
// ═══════════════════════════════════════════════════════════════════════════

// PlayerRegisteredEvent is emitted when a new player registers.
type PlayerRegisteredEvent struct {
	BaseEvent
	PlayerID    string `json:"player_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Payload implements Event interface.
func (e PlayerRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"player_id":    e.PlayerID,
		"email":        e.Email,
		"display_name": e.DisplayName,
	}
}

// NewPlayerRegisteredEvent creates a new PlayerRegisteredEvent.
func NewPlayerRegisteredEvent(playerID, email, displayName string) PlayerRegisteredEvent {
	return PlayerRegisteredEvent{
		BaseEvent:   NewBaseEvent(EventPlayerRegistered, playerID),
		PlayerID:    playerID,
		Email:       email,
		DisplayName: displayName,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Group Events
// ═══════════════════════════════════════════════════════════════════════════

// MemberJoinedEvent is emitted when a player joins a group.
type MemberJoinedEvent struct {
	BaseEvent
	GroupID  string `json:"group_id"`
	PlayerID string `json:"player_id"`
	Role     string `json:"role"`
}

// Payload implements Event interface.
func (e MemberJoinedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"group_id":  e.GroupID,
		"player_id": e.PlayerID,
		"role":      e.Role,
	}
}

// NewMemberJoinedEvent creates a new MemberJoinedEvent.
func NewMemberJoinedEvent(groupID, playerID, role string) MemberJoinedEvent {
	return MemberJoinedEvent{
		BaseEvent: NewBaseEvent(EventMemberJoined, groupID),
		GroupID:   groupID,
		PlayerID:  playerID,
		Role:      role,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Match Events
// ═══════════════════════════════════════════════════════════════════════════

// MatchFinishedEvent is emitted when a match result is recorded.
// Subscribers use it to refresh the ranking cache.
type MatchFinishedEvent struct {
	BaseEvent
	MatchID   string         `json:"match_id"`
	GroupID   string         `json:"group_id"`
	GameID    string         `json:"game_id"`
	WinnerID  string         `json:"winner_id,omitempty"`
	Awards    map[string]int `json:"awards"` // player ID -> points earned
}

// Payload implements Event interface.
func (e MatchFinishedEvent) Payload() map[string]interface{} {
	awards := make(map[string]interface{}, len(e.Awards))
	for id, pts := range e.Awards {
		awards[id] = pts
	}
	return map[string]interface{}{
		"match_id":  e.MatchID,
		"group_id":  e.GroupID,
		"game_id":   e.GameID,
		"winner_id": e.WinnerID,
		"awards":    awards,
	}
}

// NewMatchFinishedEvent creates a new MatchFinishedEvent.
func NewMatchFinishedEvent(matchID, groupID, gameID, winnerID string, awards map[string]int) MatchFinishedEvent {
	return MatchFinishedEvent{
		BaseEvent: NewBaseEvent(EventMatchFinished, matchID),
		MatchID:   matchID,
		GroupID:   groupID,
		GameID:    gameID,
		WinnerID:  winnerID,
		Awards:    awards,
	}
}

// MatchExpiredEvent is emitted when an overdue match is closed without results.
type MatchExpiredEvent struct {
	BaseEvent
	MatchID     string    `json:"match_id"`
	GroupID     string    `json:"group_id"`
	GameID      string    `json:"game_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Payload implements Event interface.
func (e MatchExpiredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"match_id":     e.MatchID,
		"group_id":     e.GroupID,
		"game_id":      e.GameID,
		"scheduled_at": e.ScheduledAt.Format(time.RFC3339),
	}
}

// NewMatchExpiredEvent creates a new MatchExpiredEvent.
func NewMatchExpiredEvent(matchID, groupID, gameID string, scheduledAt time.Time) MatchExpiredEvent {
	return MatchExpiredEvent{
		BaseEvent:   NewBaseEvent(EventMatchExpired, matchID),
		MatchID:     matchID,
		GroupID:     groupID,
		GameID:      gameID,
		ScheduledAt: scheduledAt,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Catalog Sync Events
// ═══════════════════════════════════════════════════════════════════════════

// CatalogSyncCompletedEvent is emitted after an external catalog sync run.
type CatalogSyncCompletedEvent struct {
	BaseEvent
	GamesSynced int           `json:"games_synced"`
	GamesFailed int           `json:"games_failed"`
	Duration    time.Duration `json:"duration"`
}

// Payload implements Event interface.
func (e CatalogSyncCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"games_synced": e.GamesSynced,
		"games_failed": e.GamesFailed,
		"duration_ms":  e.Duration.Milliseconds(),
	}
}

// NewCatalogSyncCompletedEvent creates a new CatalogSyncCompletedEvent.
func NewCatalogSyncCompletedEvent(synced, failed int, duration time.Duration) CatalogSyncCompletedEvent {
	return CatalogSyncCompletedEvent{
		BaseEvent:   NewBaseEvent(EventCatalogSyncCompleted, "catalog"),
		GamesSynced: synced,
		GamesFailed: failed,
		Duration:    duration,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
