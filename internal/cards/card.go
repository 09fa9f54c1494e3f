package cards

import "slices"

type Kind string

const (
	KindProperty Kind = "property"
	KindMoney    Kind = "money"
	KindAction   Kind = "action"
	KindWild     Kind = "wild"
	KindRent     Kind = "rent"
)

type Color string

const (
	ColorPoodlePark   Color = "poodle-park"
	ColorCattownTower Color = "cattown-tower"
	ColorHamsterHotel Color = "hamster-hotel"
	ColorBunnyBurrow  Color = "bunny-burrow"
	ColorFishTank     Color = "fish-tank"
	ColorBirdCage     Color = "bird-cage"
	ColorReptileRock  Color = "reptile-rock"
	ColorFarmFriends  Color = "farm-friends"
)

var Colors = []Color{
	ColorPoodlePark,
	ColorCattownTower,
	ColorHamsterHotel,
	ColorBunnyBurrow,
	ColorFishTank,
	ColorBirdCage,
	ColorReptileRock,
	ColorFarmFriends,
}

// ActionType tags an action card. The engine only ever banks action cards;
// the effects these names describe are not played.
type ActionType string

const (
	ActionFetchRent     ActionType = "fetch-rent"
	ActionStealTreat    ActionType = "steal-treat"
	ActionVetVisit      ActionType = "vet-visit"
	ActionPlaydate      ActionType = "playdate"
	ActionPetPanic      ActionType = "pet-panic"
	ActionBirthdayParty ActionType = "birthday-party"
	ActionGroomingDay   ActionType = "grooming-day"
	ActionAdoptionFee   ActionType = "adoption-fee"
)

// Card is one immutable card definition. Which of the variant fields are
// meaningful depends on Kind:
//
//	property: Color, Rent, SetSize
//	wild:     Colors
//	rent:     Colors (targets, informational)
//	action:   ActionType
//
// Value is the money worth of any card when banked.
type Card struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Value       int    `json:"value"`

	Color   Color   `json:"color,omitempty"`
	Colors  []Color `json:"colors,omitempty"`
	Rent    []int   `json:"rent,omitempty"`
	SetSize int     `json:"setSize,omitempty"`

	ActionType ActionType `json:"actionType,omitempty"`
}

// Placeable reports whether the card can be laid down as a property. A wild
// needs at least one color to join.
func (c Card) Placeable() bool {
	switch c.Kind {
	case KindProperty:
		return c.Color != ""
	case KindWild:
		return len(c.Colors) > 0
	}
	return false
}

// CanBe reports whether the card may stand in a set of the given color.
func (c Card) CanBe(color Color) bool {
	switch c.Kind {
	case KindProperty:
		return c.Color == color
	case KindWild:
		return slices.Contains(c.Colors, color)
	}
	return false
}

func knownColor(c Color) bool {
	return slices.Contains(Colors, c)
}
