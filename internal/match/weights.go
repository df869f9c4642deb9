package match

// Weights holds the scoring policy. Category bases are spaced far enough
// apart that penalties within a category never reorder categories; see
// maxPenalty.
type Weights struct {
	// PrefixExact is the base score when the label starts with the query,
	// byte for byte.
	PrefixExact int

	// PrefixFold is the base score when the label starts with the query
	// ignoring case.
	PrefixFold int

	// WordStart is the base score for a contiguous occurrence of the query
	// beginning at a word boundary inside the label.
	WordStart int

	// Anywhere is the base score for a contiguous occurrence of the query
	// elsewhere in the label.
	Anywhere int

	// ByWord is the base score when the query characters align with word
	// boundaries (or continue runs) across the label.
	ByWord int

	// GapPenalty is subtracted per skipped rune between aligned characters
	// of a by-word match.
	GapPenalty int

	// FoldPenalty is subtracted per character matched only after case
	// folding.
	FoldPenalty int

	// LenPenalty is subtracted per label rune beyond the query length. It
	// exists to break ties between otherwise equal matches, so it should
	// stay small relative to the other penalties.
	LenPenalty int
}

// maxPenalty caps the total penalty applied within one category so that a
// long label or a very gappy alignment can never sink below the next
// category's base.
const maxPenalty = 9000

// DefaultWeights returns the scoring policy used when the caller does not
// supply one.
func DefaultWeights() Weights {
	return Weights{
		PrefixExact: 100000,
		PrefixFold:  90000,
		WordStart:   80000,
		Anywhere:    70000,
		ByWord:      60000,
		GapPenalty:  8,
		FoldPenalty: 30,
		LenPenalty:  1,
	}
}

func (w Weights) capped(penalty int) int {
	if penalty > maxPenalty {
		return maxPenalty
	}
	return penalty
}
