package text

import "fmt"

// Assoc controls which side an offset sticks to when text is inserted
// exactly at that offset.
type Assoc int

const (
	// AssocBefore keeps the offset in front of text inserted at its position.
	AssocBefore Assoc = iota

	// AssocAfter moves the offset behind text inserted at its position.
	AssocAfter
)

// Change is a single replacement of the bytes in Range with Insert.
// Insertions have an empty Range, deletions an empty Insert.
type Change struct {
	Range  Range
	Insert string
}

// NewInsert creates a change inserting text at an offset.
func NewInsert(at ByteOffset, insert string) Change {
	return Change{Range: Range{From: at, To: at}, Insert: insert}
}

// NewDelete creates a change removing the bytes in [from, to).
func NewDelete(from, to ByteOffset) Change {
	return Change{Range: Range{From: from, To: to}}
}

// NewReplace creates a change replacing [from, to) with insert.
func NewReplace(from, to ByteOffset, insert string) Change {
	return Change{Range: Range{From: from, To: to}, Insert: insert}
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch {
	case c.IsInsert():
		return fmt.Sprintf("insert %q at %d", c.Insert, c.Range.From)
	case c.IsDelete():
		return fmt.Sprintf("delete %v", c.Range)
	default:
		return fmt.Sprintf("replace %v with %q", c.Range, c.Insert)
	}
}

// IsInsert returns true if the change adds text without removing any.
func (c Change) IsInsert() bool {
	return c.Range.IsEmpty() && c.Insert != ""
}

// IsDelete returns true if the change removes text without adding any.
func (c Change) IsDelete() bool {
	return !c.Range.IsEmpty() && c.Insert == ""
}

// Delta returns how many bytes the document grows (or shrinks) by.
func (c Change) Delta() int {
	return len(c.Insert) - c.Range.Len()
}

// NewEnd returns the offset just after the inserted text in the new document.
func (c Change) NewEnd() ByteOffset {
	return c.Range.From + len(c.Insert)
}

// MapOffset maps an offset recorded before the change to the equivalent
// offset after it. Offsets inside the replaced range collapse to the end of
// the inserted text. For insertions exactly at the offset, assoc decides
// whether the offset stays put or moves behind the insertion.
func (c Change) MapOffset(offset ByteOffset, assoc Assoc) ByteOffset {
	// Change entirely before the offset: shift by delta.
	if c.Range.To < offset || (c.Range.To == offset && !c.Range.IsEmpty()) {
		return offset + c.Delta()
	}

	// Insertion exactly at the offset.
	if c.Range.IsEmpty() && c.Range.From == offset {
		if assoc == AssocAfter {
			return offset + len(c.Insert)
		}
		return offset
	}

	// Change entirely after the offset: unchanged.
	if c.Range.From >= offset {
		return offset
	}

	// Change spans the offset: collapse to the end of the new text.
	return c.NewEnd()
}

// MapRange maps a range through the change. The start edge keeps its
// position across insertions at the boundary while the end edge absorbs
// them, so a span grows with text typed at either edge.
func (c Change) MapRange(r Range) Range {
	from := c.MapOffset(r.From, AssocBefore)
	to := c.MapOffset(r.To, AssocAfter)
	if from > to {
		to = from
	}
	return Range{From: from, To: to}
}
