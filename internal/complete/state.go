package complete

import (
	"unicode"
	"unicode/utf8"

	"github.com/vellum-editor/vellum/internal/text"
)

// Option is one ranked entry in the completion menu.
type Option struct {
	Candidate
	// Source names the source that produced the candidate.
	Source string
	// Score is the match score plus the candidate's boost. Unfiltered
	// candidates carry a zero score and sort after everything scored.
	Score int
	// Span is the text accepting the option replaces, in the current
	// document.
	Span text.Range
}

// State is the visible completion menu.
type State struct {
	// Span is the replace span of the top-ranked option.
	Span text.Range
	// Options are ranked best-first.
	Options []Option
	// Selected indexes the highlighted option.
	Selected int
}

// Selected returns the highlighted option, or false when the menu is
// empty.
func (s *State) SelectedOption() (Option, bool) {
	if s == nil || s.Selected < 0 || s.Selected >= len(s.Options) {
		return Option{}, false
	}
	return s.Options[s.Selected], true
}

func lastRune(s string) (rune, int) {
	return utf8.DecodeLastRuneInString(s)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
