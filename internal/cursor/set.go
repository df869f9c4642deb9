package cursor

import (
	"sort"

	"github.com/vellum-editor/vellum/internal/text"
)

// Set manages one or more selections. Selections are kept sorted by start
// position and non-overlapping; Primary returns the selection the engine
// queries at. The primary survives normalization by identity, not index.
type Set struct {
	selections []Selection
	primary    int
}

// NewSet creates a set from the given selections. The first argument is
// the primary selection. With no arguments the set holds a caret at zero.
func NewSet(sels ...Selection) Set {
	if len(sels) == 0 {
		return Set{selections: []Selection{NewCaret(0)}}
	}
	s := Set{selections: append([]Selection(nil), sels...)}
	s.normalize(sels[0])
	return s
}

// NewSetAt creates a set with a single caret.
func NewSetAt(offset int) Set {
	return NewSet(NewCaret(offset))
}

// Primary returns the primary selection.
func (s Set) Primary() Selection {
	if len(s.selections) == 0 {
		return Selection{}
	}
	return s.selections[s.primary]
}

// PrimaryIndex returns the primary selection's index within All.
func (s Set) PrimaryIndex() int {
	return s.primary
}

// All returns a copy of the selections in position order.
func (s Set) All() []Selection {
	out := make([]Selection, len(s.selections))
	copy(out, s.selections)
	return out
}

// Count returns the number of selections.
func (s Set) Count() int {
	return len(s.selections)
}

// IsMulti returns true if the set has more than one selection.
func (s Set) IsMulti() bool {
	return len(s.selections) > 1
}

// Map returns the set with every selection mapped through the change.
func (s Set) Map(c text.Change) Set {
	primary := s.Primary().Map(c)
	mapped := make([]Selection, 0, len(s.selections))
	mapped = append(mapped, primary)
	for i, sel := range s.selections {
		if i == s.primary {
			continue
		}
		mapped = append(mapped, sel.Map(c))
	}
	return NewSet(mapped...)
}

// normalize sorts selections and merges overlapping ones, tracking which
// entry the primary ends up in.
func (s *Set) normalize(primary Selection) {
	sort.SliceStable(s.selections, func(i, j int) bool {
		return s.selections[i].Start() < s.selections[j].Start()
	})

	merged := s.selections[:0]
	for _, sel := range s.selections {
		n := len(merged)
		if n > 0 && !sel.IsEmpty() && !merged[n-1].IsEmpty() && merged[n-1].Overlaps(sel) {
			prev := merged[n-1]
			merged[n-1] = Selection{Anchor: prev.Start(), Head: sel.End()}
			continue
		}
		merged = append(merged, sel)
	}
	s.selections = merged

	s.primary = 0
	for i, sel := range s.selections {
		if sel.Equals(primary) {
			s.primary = i
			break
		}
	}
}
