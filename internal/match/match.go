package match

import "unicode"

// Matcher scores labels against queries using a fixed Weights policy.
// It is stateless and safe for concurrent use.
type Matcher struct {
	weights       Weights
	caseSensitive bool
}

// New creates a matcher. With caseSensitive set, case-folded prefix and
// character matches are not considered at all.
func New(weights Weights, caseSensitive bool) *Matcher {
	return &Matcher{weights: weights, caseSensitive: caseSensitive}
}

// NewDefault creates a case-insensitive matcher with DefaultWeights.
func NewDefault() *Matcher {
	return New(DefaultWeights(), false)
}

// Score matches label against query. It returns the score and true, or
// zero and false when the label does not match.
//
// Matching is attempted in order: case-sensitive prefix, case-folded
// prefix, contiguous occurrence inside the label, by-word alignment.
// Single-character queries only accept prefix matches. Two-character
// queries additionally require contiguous occurrences to start at a word
// boundary, so a stray bigram inside a word does not match.
func (m *Matcher) Score(query, label string) (int, bool) {
	if query == "" {
		return 0, true
	}

	q := []rune(query)
	l := []rune(label)
	if len(l) < len(q) {
		return 0, false
	}
	// Penalties accumulate raw and are capped once per match, so the
	// length and character penalties combined can never cross into the
	// next category's base.
	lenPenalty := m.weights.LenPenalty * (len(l) - len(q))

	if hasRunePrefix(l, q) {
		return m.weights.PrefixExact - m.weights.capped(lenPenalty), true
	}
	if !m.caseSensitive && hasRunePrefixFold(l, q) {
		return m.weights.PrefixFold - m.weights.capped(lenPenalty), true
	}

	if len(q) == 1 {
		return 0, false
	}

	if base, penalty, ok := m.contiguous(q, l); ok {
		return base - m.weights.capped(penalty+lenPenalty), true
	}
	if penalty, ok := m.byWord(q, l); ok {
		return m.weights.ByWord - m.weights.capped(penalty+lenPenalty), true
	}
	return 0, false
}

// contiguous finds the best occurrence of q as a contiguous run in l,
// returning its category base and raw fold penalty. Occurrences at word
// boundaries outrank occurrences inside a word, and case-exact
// characters outrank folded ones.
func (m *Matcher) contiguous(q, l []rune) (int, int, bool) {
	bestBase, bestPenalty := 0, 0
	found := false

	for start := 0; start+len(q) <= len(l); start++ {
		folds := 0
		ok := true
		for i, qr := range q {
			lr := l[start+i]
			switch {
			case lr == qr:
			case !m.caseSensitive && foldRune(lr) == foldRune(qr):
				folds++
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if !ok {
			continue
		}

		boundary := isWordStart(l, start)
		if len(q) == 2 && !boundary {
			continue
		}

		base := m.weights.Anywhere
		if boundary {
			base = m.weights.WordStart
		}
		penalty := folds * m.weights.FoldPenalty
		if !found || base-penalty > bestBase-bestPenalty {
			bestBase, bestPenalty = base, penalty
			found = true
		}
	}

	return bestBase, bestPenalty, found
}

// byWord aligns each query rune with either the rune directly after the
// previous match (continuing a run) or the start of a later word,
// returning the raw gap and fold penalty. The first query rune must sit
// on a word boundary.
func (m *Matcher) byWord(q, l []rune) (int, bool) {
	qi := 0
	prev := -1
	gap := 0
	folds := 0

	for i := 0; i < len(l) && qi < len(q); i++ {
		adjacent := prev >= 0 && i == prev+1
		if !adjacent && !isWordStart(l, i) {
			continue
		}

		lr, qr := l[i], q[qi]
		exact := lr == qr
		folded := !m.caseSensitive && foldRune(lr) == foldRune(qr)
		if !exact && !folded {
			continue
		}

		if prev >= 0 && i > prev+1 {
			gap += i - prev - 1
		}
		if !exact {
			folds++
		}
		prev = i
		qi++
	}

	if qi != len(q) {
		return 0, false
	}
	return gap*m.weights.GapPenalty + folds*m.weights.FoldPenalty, true
}

func hasRunePrefix(l, q []rune) bool {
	for i, qr := range q {
		if l[i] != qr {
			return false
		}
	}
	return true
}

func hasRunePrefixFold(l, q []rune) bool {
	for i, qr := range q {
		if foldRune(l[i]) != foldRune(qr) {
			return false
		}
	}
	return true
}

func foldRune(r rune) rune {
	return unicode.ToLower(r)
}

// isWordStart reports whether position i starts a word: the beginning of
// the label, a character following a separator (anything that is not a
// letter or digit, which covers underscores), or a case transition from
// lower to upper.
func isWordStart(l []rune, i int) bool {
	if i == 0 {
		return true
	}
	prev, cur := l[i-1], l[i]
	if !unicode.IsLetter(prev) && !unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
