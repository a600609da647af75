package boardgamegeek

import (
	"encoding/xml"
	"testing"

	"github.com/Trevictus/tabletopmastering-sub000/internal/domain/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThingItemsDTO_Parsing(t *testing.T) {
	xmlData := `<?xml version="1.0" encoding="utf-8"?>
<items termsofuse="https://boardgamegeek.com/xmlapi/termsofuse">
    <item type="boardgame" id="174430">
        <thumbnail>https://cf.geekdo-images.com/thumb.jpg</thumbnail>
        <image>https://cf.geekdo-images.com/image.jpg</image>
        <name type="primary" sortindex="1" value="Gloomhaven"/>
        <name type="alternate" sortindex="1" value="Homarazgo"/>
        <description>Vanquish monsters with strategic cardplay. &amp;#10;Explore the world.</description>
        <yearpublished value="2017"/>
        <minplayers value="1"/>
        <maxplayers value="4"/>
        <playingtime value="120"/>
        <statistics page="1">
            <ratings>
                <usersrated value="62818"/>
                <average value="8.57631"/>
            </ratings>
        </statistics>
    </item>
</items>`

	var items ThingItemsDTO
	err := xml.Unmarshal([]byte(xmlData), &items)
	require.NoError(t, err)
	require.Len(t, items.Items, 1)

	item := items.Items[0]
	assert.Equal(t, int64(174430), item.ID)
	assert.Equal(t, "boardgame", item.Type)
	assert.Equal(t, "Gloomhaven", item.PrimaryName())
	assert.Equal(t, 2017, item.YearPublished.Value)
	assert.Equal(t, 1, item.MinPlayers.Value)
	assert.Equal(t, 4, item.MaxPlayers.Value)
	assert.Equal(t, 120, item.PlayingTime.Value)
	require.NotNil(t, item.Statistics)
	assert.InDelta(t, 8.57631, item.Statistics.Ratings.Average.Value, 0.0001)
}

func TestMapper_ThingFromDTO(t *testing.T) {
	dto := &ThingItemDTO{
		Type:          "boardgame",
		ID:            174430,
		Thumbnail:     "https://cf.geekdo-images.com/thumb.jpg",
		Names:         []NameDTO{{Type: "primary", Value: "Gloomhaven"}},
		Description:   "Vanquish monsters.",
		YearPublished: ValueDTO{Value: 2017},
		MinPlayers:    ValueDTO{Value: 1},
		MaxPlayers:    ValueDTO{Value: 4},
		PlayingTime:   ValueDTO{Value: 120},
		Statistics: &StatisticsDTO{
			Ratings: RatingsDTO{Average: FloatValueDTO{Value: 8.57631}},
		},
	}

	mapper := NewMapper()
	details, err := mapper.ThingFromDTO(dto)
	require.NoError(t, err)

	assert.Equal(t, int64(174430), details.ExternalID)
	assert.Equal(t, "Gloomhaven", details.Name)
	assert.Equal(t, game.PlayerRange{Min: 1, Max: 4}, details.Players)
	assert.Equal(t, 120, details.PlayTime)
	assert.Equal(t, 2017, details.Year)
	assert.InDelta(t, 8.6, details.Rating, 0.001)
}

func TestMapper_ThingFromDTO_InvalidRangeDegrades(t *testing.T) {
	dto := &ThingItemDTO{
		ID:         42,
		Names:      []NameDTO{{Type: "primary", Value: "Broken Range"}},
		MinPlayers: ValueDTO{Value: 5},
		MaxPlayers: ValueDTO{Value: 2},
	}

	mapper := NewMapper()
	details, err := mapper.ThingFromDTO(dto)
	require.NoError(t, err)

	// inconsistent ranges become "unknown" instead of failing the sync
	assert.Equal(t, game.PlayerRange{}, details.Players)
}

func TestMapper_ThingFromDTO_Nil(t *testing.T) {
	mapper := NewMapper()
	_, err := mapper.ThingFromDTO(nil)
	assert.ErrorIs(t, err, ErrNilDTO)
}

func TestMapper_SearchResultsFromDTO(t *testing.T) {
	dto := &SearchItemsDTO{
		Total: 3,
		Items: []SearchItemDTO{
			{Type: "boardgame", ID: 13, Name: NameDTO{Value: "Catan"}, YearPublished: ValueDTO{Value: 1995}},
			{Type: "videogame", ID: 99, Name: NameDTO{Value: "Catan Online"}},
			{Type: "boardgame", ID: 278, Name: NameDTO{Value: "Catan Card Game"}, YearPublished: ValueDTO{Value: 1996}},
		},
	}

	mapper := NewMapper()
	results := mapper.SearchResultsFromDTO(dto)

	require.Len(t, results, 2)
	assert.Equal(t, int64(13), results[0].ExternalID)
	assert.Equal(t, "Catan", results[0].Name)
	assert.Equal(t, 1995, results[0].Year)
	assert.Equal(t, int64(278), results[1].ExternalID)
}

func TestThingDetails_Apply(t *testing.T) {
	g, err := game.NewGame(game.NewGameParams{
		ID:         "00000000-0000-0000-0000-000000000001",
		GroupID:    "00000000-0000-0000-0000-000000000002",
		Name:       "placeholder",
		Source:     game.SourceBGG,
		ExternalID: 174430,
	})
	require.NoError(t, err)

	details := &ThingDetails{
		ExternalID:   174430,
		Name:         "Gloomhaven",
		Description:  "Vanquish monsters.",
		ThumbnailURL: "https://cf.geekdo-images.com/thumb.jpg",
		Players:      game.PlayerRange{Min: 1, Max: 4},
		PlayTime:     120,
		Year:         2017,
		Rating:       8.6,
	}

	require.NoError(t, details.Apply(g))
	assert.Equal(t, "Gloomhaven", g.Name)
	assert.True(t, g.IsSynced())
	assert.Equal(t, 8.6, g.Rating)
}
