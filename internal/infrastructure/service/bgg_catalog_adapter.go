package service

import (
	"context"
	"errors"

	"github.com/Trevictus/tabletopmastering-sub000/internal/application/command"
	"github.com/Trevictus/tabletopmastering-sub000/internal/application/query"
	"github.com/Trevictus/tabletopmastering-sub000/internal/infrastructure/external/boardgamegeek"
	"github.com/Trevictus/tabletopmastering-sub000/pkg/circuitbreaker"
)

// BGGCatalogAdapter adapts the boardgamegeek.Client to the application-layer
// catalog interfaces (command.GameCatalogProvider, query.ExternalCatalog).
//
// Interactive endpoints sit behind an additional circuit breaker: when the
// public API misbehaves, add-game and search requests fail fast instead of
// holding HTTP workers for the client's full retry budget.
type BGGCatalogAdapter struct {
	client  *boardgamegeek.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewBGGCatalogAdapter creates a new BGGCatalogAdapter.
func NewBGGCatalogAdapter(client *boardgamegeek.Client) *BGGCatalogAdapter {
	return &BGGCatalogAdapter{
		client:  client,
		breaker: circuitbreaker.BGGAPIBreaker(nil),
	}
}

// call runs fn through the circuit breaker. A not-found answer is a valid
// response from the API and must not trip the breaker.
func (a *BGGCatalogAdapter) call(ctx context.Context, fn func(context.Context) error) error {
	return a.breaker.Execute(ctx, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, boardgamegeek.ErrThingNotFound) {
			return nil
		}
		return err
	})
}

// GetGame fetches details for a single external ID.
func (a *BGGCatalogAdapter) GetGame(ctx context.Context, externalID int64) (*command.GameDetails, error) {
	var details *boardgamegeek.ThingDetails
	err := a.call(ctx, func(ctx context.Context) error {
		var callErr error
		details, callErr = a.client.GetThing(ctx, externalID)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, boardgamegeek.ErrThingNotFound
	}

	return &command.GameDetails{
		ExternalID:      details.ExternalID,
		Name:            details.Name,
		Description:     details.Description,
		ThumbnailURL:    details.ThumbnailURL,
		MinPlayers:      details.Players.Min,
		MaxPlayers:      details.Players.Max,
		PlayTimeMinutes: details.PlayTime,
		YearPublished:   details.Year,
		Rating:          details.Rating,
	}, nil
}

// SearchGames searches the external catalog by name.
func (a *BGGCatalogAdapter) SearchGames(ctx context.Context, q string) ([]command.GameDetails, error) {
	var results []boardgamegeek.SearchResult
	err := a.call(ctx, func(ctx context.Context) error {
		var callErr error
		results, callErr = a.client.Search(ctx, q)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	out := make([]command.GameDetails, 0, len(results))
	for _, r := range results {
		out = append(out, command.GameDetails{
			ExternalID:    r.ExternalID,
			Name:          r.Name,
			YearPublished: r.Year,
		})
	}
	return out, nil
}

// Search implements query.ExternalCatalog.
func (a *BGGCatalogAdapter) Search(ctx context.Context, q string) ([]query.CatalogHit, error) {
	var results []boardgamegeek.SearchResult
	err := a.call(ctx, func(ctx context.Context) error {
		var callErr error
		results, callErr = a.client.Search(ctx, q)
		return callErr
	})
	if err != nil {
		return nil, err
	}

	hits := make([]query.CatalogHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, query.CatalogHit{
			ExternalID:    r.ExternalID,
			Name:          r.Name,
			YearPublished: r.Year,
		})
	}
	return hits, nil
}

var (
	_ command.GameCatalogProvider = (*BGGCatalogAdapter)(nil)
	_ query.ExternalCatalog       = (*BGGCatalogAdapter)(nil)
)
