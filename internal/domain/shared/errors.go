// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrFutureTimestamp = errors.New("timestamp cannot be in the future")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrExpired          = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrOptimisticLock         = errors.New("optimistic lock failure")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "player", "match", "ranking"
	Op      string // Operation that failed, e.g., "Create", "Update"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Player domain errors
var (
	ErrPlayerNotFound      = NewDomainError("player", "Find", ErrNotFound, "player not found")
	ErrPlayerAlreadyExists = NewDomainError("player", "Create", ErrAlreadyExists, "player already exists")
	ErrInvalidCredentials  = NewDomainError("player", "Authenticate", ErrUnauthorized, "invalid email or password")
	ErrPlayerNotActive     = NewDomainError("player", "CheckStatus", ErrInvalidState, "player is not active")
	ErrInvalidPlayerStatus = NewDomainError("player", "UpdateStatus", ErrStateTransition, "invalid player status transition")
)

// Group domain errors
var (
	ErrGroupNotFound     = NewDomainError("group", "Find", ErrNotFound, "group not found")
	ErrGroupExists       = NewDomainError("group", "Create", ErrAlreadyExists, "group already exists")
	ErrNotGroupMember    = NewDomainError("group", "CheckMembership", ErrForbidden, "player is not a member of this group")
	ErrNotGroupAdmin     = NewDomainError("group", "CheckRole", ErrForbidden, "player is not an admin of this group")
	ErrAlreadyMember     = NewDomainError("group", "AddMember", ErrAlreadyExists, "player is already a member")
	ErrLastAdminLeaving  = NewDomainError("group", "RemoveMember", ErrInvalidState, "last admin cannot leave the group")
)

// Game domain errors
var (
	ErrGameNotFound   = NewDomainError("game", "Find", ErrNotFound, "game not found")
	ErrGameExists     = NewDomainError("game", "Create", ErrAlreadyExists, "game already exists")
	ErrGameNotInGroup = NewDomainError("game", "CheckScope", ErrForbidden, "game does not belong to this group")
)

// Match domain errors
var (
	ErrMatchNotFound      = NewDomainError("match", "Find", ErrNotFound, "match not found")
	ErrMatchNotScheduled  = NewDomainError("match", "Finish", ErrInvalidState, "match is not in scheduled state")
	ErrMatchAlreadyDone   = NewDomainError("match", "Finish", ErrAlreadyProcessed, "match is already finished")
	ErrDuplicatePosition  = NewDomainError("match", "ResolvePoints", ErrInvalidInput, "two players share the same position")
	ErrNotMatchParticipant = NewDomainError("match", "Validate", ErrInvalidInput, "player is not a match participant")
)

// Ranking domain errors
var (
	ErrStatsNotFound     = NewDomainError("ranking", "Find", ErrNotFound, "player statistics not found")
	ErrPlayerUpdateFailed = NewDomainError("ranking", "ApplyAward", ErrInvalidState, "failed to apply award to player statistics")
	ErrRankingEmpty      = NewDomainError("ranking", "Compute", ErrNotFound, "ranking is empty")
)

// External service errors
var (
	ErrGameAPIUnavailable     = NewDomainError("boardgamegeek", "Request", ErrServiceUnavailable, "game database API is unavailable")
	ErrGameAPIRateLimited     = NewDomainError("boardgamegeek", "Request", ErrRateLimited, "game database API rate limit exceeded")
	ErrGameAPITimeout         = NewDomainError("boardgamegeek", "Request", ErrTimeout, "game database API request timeout")
	ErrGameAPIInvalidResponse = NewDomainError("boardgamegeek", "Parse", ErrInvalidFormat, "invalid response from game database API")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsForbidden checks if the error is an authorization error.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthorized)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
