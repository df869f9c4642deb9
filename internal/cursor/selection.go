package cursor

import (
	"fmt"

	"github.com/vellum-editor/vellum/internal/text"
)

// Selection is a range of selected text. Anchor is where the selection
// started; Head is where the cursor sits and where typing occurs. A
// selection with Anchor == Head is a caret. Selection is an immutable
// value type.
type Selection struct {
	Anchor text.ByteOffset
	Head   text.ByteOffset
}

// New creates a selection from anchor to head.
func New(anchor, head text.ByteOffset) Selection {
	return Selection{Anchor: anchor, Head: head}
}

// NewCaret creates a collapsed selection at the given offset.
func NewCaret(offset text.ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// IsEmpty returns true if the selection has no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Head
}

// Start returns the lower bound of the selection.
func (s Selection) Start() text.ByteOffset {
	if s.Anchor <= s.Head {
		return s.Anchor
	}
	return s.Head
}

// End returns the upper bound of the selection.
func (s Selection) End() text.ByteOffset {
	if s.Anchor >= s.Head {
		return s.Anchor
	}
	return s.Head
}

// Range returns the selection as an ordered half-open range, normalizing
// inverted selections.
func (s Selection) Range() text.Range {
	return text.Range{From: s.Start(), To: s.End()}
}

// IsInverted returns true if the head precedes the anchor.
func (s Selection) IsInverted() bool {
	return s.Head < s.Anchor
}

// MoveTo returns a caret at the given offset.
func (s Selection) MoveTo(offset text.ByteOffset) Selection {
	return Selection{Anchor: offset, Head: offset}
}

// Map returns the selection with both edges mapped through the change.
func (s Selection) Map(c text.Change) Selection {
	return Selection{
		Anchor: c.MapOffset(s.Anchor, text.AssocAfter),
		Head:   c.MapOffset(s.Head, text.AssocAfter),
	}
}

// Overlaps returns true if this selection shares text with another.
func (s Selection) Overlaps(other Selection) bool {
	return s.Start() < other.End() && other.Start() < s.End()
}

// Equals returns true if both anchor and head match.
func (s Selection) Equals(other Selection) bool {
	return s.Anchor == other.Anchor && s.Head == other.Head
}

// String returns a human-readable representation of the selection.
func (s Selection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Caret(%d)", s.Head)
	}
	return fmt.Sprintf("Selection(%d..%d)", s.Anchor, s.Head)
}
