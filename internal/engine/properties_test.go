package engine

import (
	"testing"

	"github.com/DoyleJ11/petdeal-backend/internal/cards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prop(id string, color cards.Color, setSize int, rent ...int) cards.Card {
	return cards.Card{ID: id, Kind: cards.KindProperty, Color: color, SetSize: setSize, Rent: rent, Value: 1}
}

func wild(id string, colors ...cards.Color) cards.Card {
	return cards.Card{ID: id, Kind: cards.KindWild, Colors: colors, Value: 2}
}

func money(id string, value int) cards.Card {
	return cards.Card{ID: id, Kind: cards.KindMoney, Value: value}
}

func setIDs(set PropertySet) []string {
	out := make([]string, len(set.Cards))
	for i, c := range set.Cards {
		out[i] = c.ID
	}
	return out
}

func TestOrganizeProperties_GroupsByColorInFirstSeenOrder(t *testing.T) {
	owned := []cards.Card{
		prop("fish-1", cards.ColorFishTank, 2, 2, 4),
		prop("poodle-1", cards.ColorPoodlePark, 3, 1, 2, 4),
		prop("fish-2", cards.ColorFishTank, 2, 2, 4),
		money("kibble", 1),
	}

	sets := OrganizeProperties(owned)
	require.Len(t, sets, 2)

	assert.Equal(t, cards.ColorFishTank, sets[0].Color)
	assert.Equal(t, []string{"fish-1", "fish-2"}, setIDs(sets[0]))
	assert.True(t, sets[0].IsComplete)
	assert.Equal(t, 4, sets[0].TotalRent)

	assert.Equal(t, cards.ColorPoodlePark, sets[1].Color)
	assert.False(t, sets[1].IsComplete)
	assert.Equal(t, 1, sets[1].TotalRent)
}

func TestOrganizeProperties_WildAssignment(t *testing.T) {
	cases := []struct {
		name      string
		owned     []cards.Card
		wantColor map[string]cards.Color
	}{
		{
			name:      "lone wild takes its first color",
			owned:     []cards.Card{wild("w", cards.ColorPoodlePark, cards.ColorCattownTower)},
			wantColor: map[string]cards.Color{"w": cards.ColorPoodlePark},
		},
		{
			name: "wild joins an existing bucket of a later color",
			owned: []cards.Card{
				prop("cat-1", cards.ColorCattownTower, 3, 1, 2, 3),
				wild("w", cards.ColorPoodlePark, cards.ColorCattownTower),
			},
			wantColor: map[string]cards.Color{"w": cards.ColorCattownTower},
		},
		{
			name: "first existing bucket in the wild's list wins",
			owned: []cards.Card{
				prop("cat-1", cards.ColorCattownTower, 3, 1, 2, 3),
				prop("poodle-1", cards.ColorPoodlePark, 3, 1, 2, 4),
				wild("w", cards.ColorPoodlePark, cards.ColorCattownTower),
			},
			wantColor: map[string]cards.Color{"w": cards.ColorPoodlePark},
		},
		{
			name: "wild seen before the property does not move later",
			owned: []cards.Card{
				wild("w", cards.ColorPoodlePark, cards.ColorCattownTower),
				prop("cat-1", cards.ColorCattownTower, 3, 1, 2, 3),
			},
			wantColor: map[string]cards.Color{"w": cards.ColorPoodlePark},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sets := OrganizeProperties(tc.owned)
			for id, want := range tc.wantColor {
				assert.Equal(t, want, setColorOf(sets, id))
			}
		})
	}
}

func TestOrganizeProperties_Completeness(t *testing.T) {
	cases := []struct {
		name         string
		owned        []cards.Card
		wantComplete bool
		wantRent     int
	}{
		{
			name:         "wild-only set defaults to size three and no rent",
			owned:        []cards.Card{wild("a", cards.ColorFishTank), wild("b", cards.ColorFishTank), wild("c", cards.ColorFishTank)},
			wantComplete: true,
			wantRent:     0,
		},
		{
			name:         "two wilds are not a default set",
			owned:        []cards.Card{wild("a", cards.ColorFishTank), wild("b", cards.ColorFishTank)},
			wantComplete: false,
		},
		{
			name:         "set size comes from the first property card, not the first card",
			owned:        []cards.Card{wild("a", cards.ColorBunnyBurrow), prop("b", cards.ColorBunnyBurrow, 2, 2, 4)},
			wantComplete: true,
			wantRent:     4,
		},
		{
			name: "overfull set caps rent at set size",
			owned: []cards.Card{
				prop("a", cards.ColorFishTank, 2, 2, 4),
				prop("b", cards.ColorFishTank, 2, 2, 4),
				wild("c", cards.ColorFishTank),
			},
			wantComplete: true,
			wantRent:     4,
		},
		{
			name: "short rent table clamps to its last entry",
			owned: []cards.Card{
				prop("a", cards.ColorReptileRock, 3, 5),
				prop("b", cards.ColorReptileRock, 3, 5),
			},
			wantComplete: false,
			wantRent:     5,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sets := OrganizeProperties(tc.owned)
			require.Len(t, sets, 1)
			assert.Equal(t, tc.wantComplete, sets[0].IsComplete)
			assert.Equal(t, tc.wantRent, sets[0].TotalRent)
		})
	}
}

func TestOrganizeProperties_Idempotent(t *testing.T) {
	owned := []cards.Card{
		wild("w1", cards.ColorPoodlePark, cards.ColorCattownTower),
		prop("cat-1", cards.ColorCattownTower, 3, 1, 2, 3),
		prop("poodle-1", cards.ColorPoodlePark, 3, 1, 2, 4),
		wild("w2", cards.ColorPoodlePark, cards.ColorCattownTower),
		prop("fish-1", cards.ColorFishTank, 2, 2, 4),
	}

	first := OrganizeProperties(owned)
	second := OrganizeProperties(owned)
	assert.Equal(t, first, second)

	// Re-organizing the flattened projection is stable too.
	assert.Equal(t, first, OrganizeProperties(ownedProperties(first)))
}

func TestOrganizeProperties_Empty(t *testing.T) {
	assert.Empty(t, OrganizeProperties(nil))
	assert.Empty(t, OrganizeProperties([]cards.Card{money("m", 1)}))
}
