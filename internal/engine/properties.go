package engine

import "github.com/DoyleJ11/petdeal-backend/internal/cards"

// DefaultSetSize applies to sets that hold only wild cards.
const DefaultSetSize = 3

// OrganizeProperties groups owned property and wild cards into sets by color.
//
// A property card joins its own color. A wild card joins the first of its
// colors that already has a set, otherwise it opens a set of its first color.
// The assignment is greedy and depends on input order. Sets come back in the
// order their color was first seen. Cards of other kinds are ignored.
func OrganizeProperties(owned []cards.Card) []PropertySet {
	var order []cards.Color
	buckets := make(map[cards.Color][]cards.Card)

	for _, c := range owned {
		var color cards.Color
		switch c.Kind {
		case cards.KindProperty:
			color = c.Color
		case cards.KindWild:
			if len(c.Colors) == 0 {
				continue
			}
			color = c.Colors[0]
			for _, candidate := range c.Colors {
				if _, ok := buckets[candidate]; ok {
					color = candidate
					break
				}
			}
		default:
			continue
		}

		if _, ok := buckets[color]; !ok {
			order = append(order, color)
		}
		buckets[color] = append(buckets[color], c)
	}

	sets := make([]PropertySet, 0, len(order))
	for _, color := range order {
		sets = append(sets, newPropertySet(color, buckets[color]))
	}
	return sets
}

func newPropertySet(color cards.Color, members []cards.Card) PropertySet {
	set := PropertySet{Color: color, Cards: members}

	var lead *cards.Card
	for i := range members {
		if members[i].Kind == cards.KindProperty {
			lead = &members[i]
			break
		}
	}

	setSize := DefaultSetSize
	if lead != nil && lead.SetSize > 0 {
		setSize = lead.SetSize
	}
	set.IsComplete = len(members) >= setSize

	if lead != nil && len(lead.Rent) > 0 {
		idx := min(len(members), setSize, len(lead.Rent)) - 1
		set.TotalRent = lead.Rent[idx]
	}
	return set
}

// ownedProperties flattens a player's sets back into the ownership list, in
// set order.
func ownedProperties(sets []PropertySet) []cards.Card {
	var out []cards.Card
	for _, set := range sets {
		out = append(out, set.Cards...)
	}
	return out
}

func countComplete(sets []PropertySet) int {
	n := 0
	for _, set := range sets {
		if set.IsComplete {
			n++
		}
	}
	return n
}
