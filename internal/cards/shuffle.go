package cards

import "math/rand/v2"

// Shuffle returns a uniformly random permutation of deck using Fisher–Yates.
// The input slice is left untouched. A nil rng falls back to the global
// source.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
