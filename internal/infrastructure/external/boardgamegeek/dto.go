// Package boardgamegeek implements a BoardGameGeek XML API2 client.
// This package handles all communication with boardgamegeek.com, fetching
// board game details and search results for the group catalog sync.
package boardgamegeek

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// THING DTOs
// ══════════════════════════════════════════════════════════════════════════════

// ThingItemsDTO is the root element of a /thing response.
type ThingItemsDTO struct {
	XMLName xml.Name       `xml:"items"`
	Items   []ThingItemDTO `xml:"item"`
}

// ThingItemDTO represents a single board game as returned by the XML API.
// This is the external representation that needs to be mapped to our domain model.
type ThingItemDTO struct {
	// Type is the item type ("boardgame", "boardgameexpansion", ...).
	Type string `xml:"type,attr"`

	// ID is the BoardGameGeek identifier.
	ID int64 `xml:"id,attr"`

	// Thumbnail is the URL of the small cover image.
	Thumbnail string `xml:"thumbnail"`

	// Image is the URL of the full-size cover image.
	Image string `xml:"image"`

	// Names holds all names; the primary one is the canonical title.
	Names []NameDTO `xml:"name"`

	// Description is the HTML-escaped game description.
	Description string `xml:"description"`

	// YearPublished is the release year.
	YearPublished ValueDTO `xml:"yearpublished"`

	// MinPlayers and MaxPlayers bound the supported player count.
	MinPlayers ValueDTO `xml:"minplayers"`
	MaxPlayers ValueDTO `xml:"maxplayers"`

	// PlayingTime is the average play time in minutes.
	PlayingTime ValueDTO `xml:"playingtime"`

	// Statistics holds rating data (present when stats=1 is requested).
	Statistics *StatisticsDTO `xml:"statistics"`
}

// NameDTO is a single name element with its type attribute.
type NameDTO struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

// ValueDTO wraps the API's `<element value="..."/>` convention.
type ValueDTO struct {
	Value int `xml:"value,attr"`
}

// StatisticsDTO holds the ratings block of a thing.
type StatisticsDTO struct {
	Ratings RatingsDTO `xml:"ratings"`
}

// RatingsDTO holds aggregate rating values.
type RatingsDTO struct {
	UsersRated FloatValueDTO `xml:"usersrated"`
	Average    FloatValueDTO `xml:"average"`
}

// FloatValueDTO wraps a float `value` attribute.
type FloatValueDTO struct {
	Value float64 `xml:"value,attr"`
}

// PrimaryName returns the primary name of the item, or the first name
// when no primary is marked.
func (t *ThingItemDTO) PrimaryName() string {
	for _, n := range t.Names {
		if n.Type == "primary" {
			return n.Value
		}
	}
	if len(t.Names) > 0 {
		return t.Names[0].Value
	}
	return ""
}

// PlainDescription returns the description with HTML entities decoded.
func (t *ThingItemDTO) PlainDescription() string {
	return strings.TrimSpace(html.UnescapeString(t.Description))
}

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH DTOs
// ══════════════════════════════════════════════════════════════════════════════

// SearchItemsDTO is the root element of a /search response.
type SearchItemsDTO struct {
	XMLName xml.Name        `xml:"items"`
	Total   int             `xml:"total,attr"`
	Items   []SearchItemDTO `xml:"item"`
}

// SearchItemDTO is one search hit.
type SearchItemDTO struct {
	Type          string   `xml:"type,attr"`
	ID            int64    `xml:"id,attr"`
	Name          NameDTO  `xml:"name"`
	YearPublished ValueDTO `xml:"yearpublished"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNilDTO is returned when a nil DTO is passed to the mapper.
	ErrNilDTO = errors.New("boardgamegeek: nil DTO")

	// ErrThingNotFound is returned when the API knows no item with the id.
	ErrThingNotFound = errors.New("boardgamegeek: thing not found")

	// ErrQueued is returned when the API responds 202 and asks to retry later.
	ErrQueued = errors.New("boardgamegeek: request queued, retry later")
)

// APIError represents a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("boardgamegeek: status %d: %s", e.StatusCode, e.Message)
}
