// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// PlayerID represents an internal player identifier (UUID as string).
type PlayerID string

// IsValid checks if the player ID is non-empty.
func (p PlayerID) IsValid() bool {
	return len(p) > 0
}

// String returns the string representation.
func (p PlayerID) String() string {
	return string(p)
}

// IsEmpty returns true if the ID is empty.
func (p PlayerID) IsEmpty() bool {
	return len(p) == 0
}

// NewPlayerID creates a new PlayerID with validation.
func NewPlayerID(id string) (PlayerID, error) {
	if id == "" {
		return "", ErrInvalidID
	}
	return PlayerID(id), nil
}

// Email represents a player's email address.
type Email string

// Loose format check; real validation happens at confirmation time.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValid checks if the email has a plausible format.
func (e Email) IsValid() bool {
	return emailRegex.MatchString(string(e))
}

// String returns the string representation.
func (e Email) String() string {
	return string(e)
}

// Normalize returns a normalized (lowercase, trimmed) version of the email.
func (e Email) Normalize() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

// NewEmail creates a normalized Email with validation.
func NewEmail(value string) (Email, error) {
	e := Email(value).Normalize()
	if !e.IsValid() {
		return "", ErrInvalidFormat
	}
	return e, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Points Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Points represents accumulated ranking points.
type Points int

// IsValid checks that points are non-negative.
func (p Points) IsValid() bool {
	return p >= 0
}

// Int returns the underlying int value.
func (p Points) Int() int {
	return int(p)
}

// Add adds points, never dropping below zero.
func (p Points) Add(amount int) Points {
	result := int(p) + amount
	if result < 0 {
		return 0
	}
	return Points(result)
}

// NewPoints creates Points with validation.
func NewPoints(amount int) (Points, error) {
	if amount < 0 {
		return 0, ErrNegativeValue
	}
	return Points(amount), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Position Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Position represents a player's final rank within one match (1 = best).
// Zero means "unranked" - the player finished without a recorded position.
type Position int

// Unranked is the sentinel for an absent position.
const Unranked Position = 0

// IsValid checks that the position is positive or unranked.
func (p Position) IsValid() bool {
	return p >= 0
}

// IsRanked returns true if a position was recorded.
func (p Position) IsRanked() bool {
	return p > 0
}

// Int returns the underlying int value.
func (p Position) Int() int {
	return int(p)
}

// IsWinning returns true for first place.
func (p Position) IsWinning() bool {
	return p == 1
}

// Medal returns a medal emoji for podium positions.
func (p Position) Medal() string {
	switch p {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}

// NewPosition creates a Position with validation.
func NewPosition(value int) (Position, error) {
	if value < 0 {
		return 0, ErrValueOutOfRange
	}
	return Position(value), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Time Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// TimeRange represents a time period.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// IsValid checks if the time range is valid.
func (t TimeRange) IsValid() bool {
	return !t.From.IsZero() && !t.To.IsZero() && t.From.Before(t.To)
}

// Duration returns the duration of the time range.
func (t TimeRange) Duration() time.Duration {
	return t.To.Sub(t.From)
}

// Contains checks if a time is within the range.
func (t TimeRange) Contains(tm time.Time) bool {
	return !tm.Before(t.From) && tm.Before(t.To)
}

// NewTimeRange creates a TimeRange with validation.
func NewTimeRange(from, to time.Time) (TimeRange, error) {
	tr := TimeRange{From: from, To: to}
	if !tr.IsValid() {
		return TimeRange{}, fmt.Errorf("%w: from must be before to", ErrInvalidInput)
	}
	return tr, nil
}

// LastNDays returns a range covering the last N days.
func LastNDays(n int) TimeRange {
	now := time.Now().UTC()
	return TimeRange{From: now.AddDate(0, 0, -n), To: now}
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination
// ═══════════════════════════════════════════════════════════════════════════

// Pagination holds page-based listing parameters.
type Pagination struct {
	Page     int
	PageSize int
}

// Offset returns the SQL offset for this page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the SQL limit, bounded to a sane range.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// NewPagination creates a Pagination, normalizing out-of-range values.
func NewPagination(page, pageSize int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns the first page with the default page size.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, PageSize: 20}
}
