// Package boardgamegeek implements a BoardGameGeek XML API2 client.
package boardgamegeek

import (
	"math"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to Domain transformations
// ══════════════════════════════════════════════════════════════════════════════

// Mapper handles transformation between BoardGameGeek DTOs and domain values.
// This follows the Anti-Corruption Layer pattern from DDD, protecting our domain
// from external API changes.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// ThingDetails is the mapped, domain-friendly view of a BoardGameGeek thing.
// It carries exactly the fields the catalog sync applies to a game entry.
type ThingDetails struct {
	ExternalID   int64            `json:"external_id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	ThumbnailURL string           `json:"thumbnail_url"`
	Players      game.PlayerRange `json:"players"`
	PlayTime     int              `json:"play_time_minutes"`
	Year         int              `json:"year_published"`
	Rating       float64          `json:"rating"`
}

// ThingFromDTO converts a ThingItemDTO to ThingDetails.
func (m *Mapper) ThingFromDTO(dto *ThingItemDTO) (*ThingDetails, error) {
	if dto == nil {
		return nil, ErrNilDTO
	}

	details := &ThingDetails{
		ExternalID:   dto.ID,
		Name:         dto.PrimaryName(),
		Description:  truncate(dto.PlainDescription(), 2000),
		ThumbnailURL: dto.Thumbnail,
		Players: game.PlayerRange{
			Min: dto.MinPlayers.Value,
			Max: dto.MaxPlayers.Value,
		},
		PlayTime: dto.PlayingTime.Value,
		Year:     dto.YearPublished.Value,
	}

	// An inconsistent range from the API degrades to "unknown" rather
	// than failing the whole sync.
	if !details.Players.IsValid() {
		details.Players = game.PlayerRange{}
	}

	if dto.Statistics != nil {
		details.Rating = roundRating(dto.Statistics.Ratings.Average.Value)
	}

	return details, nil
}

// Apply writes mapped details onto a catalog entry.
func (d *ThingDetails) Apply(g *game.Game) error {
	return g.ApplySync(d.Name, d.Description, d.ThumbnailURL, d.Players, d.PlayTime, d.Year, d.Rating)
}

// SearchResult is one mapped search hit.
type SearchResult struct {
	ExternalID int64  `json:"external_id"`
	Name       string `json:"name"`
	Year       int    `json:"year_published"`
}

// SearchResultsFromDTO converts a search response to mapped hits,
// keeping only base board games.
func (m *Mapper) SearchResultsFromDTO(dto *SearchItemsDTO) []SearchResult {
	if dto == nil {
		return nil
	}

	results := make([]SearchResult, 0, len(dto.Items))
	for _, item := range dto.Items {
		if item.Type != "boardgame" {
			continue
		}
		results = append(results, SearchResult{
			ExternalID: item.ID,
			Name:       item.Name.Value,
			Year:       item.YearPublished.Value,
		})
	}

	return results
}

// roundRating rounds the API's long rating decimals to one place.
func roundRating(rating float64) float64 {
	if rating < 0 || rating > 10 {
		return 0
	}
	return math.Round(rating*10) / 10
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	runes := []rune(s)
	for len(string(runes)) > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}
