package text

import "fmt"

// ByteOffset is a byte position in a document. It is the fundamental
// position type, directly indexing the document text.
type ByteOffset = int

// Range is a half-open byte range [From, To).
type Range struct {
	From ByteOffset // inclusive
	To   ByteOffset // exclusive
}

// NewRange creates a range from two offsets.
func NewRange(from, to ByteOffset) Range {
	return Range{From: from, To: to}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.From, r.To)
}

// Len returns the length of the range in bytes.
func (r Range) Len() ByteOffset {
	return r.To - r.From
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.From == r.To
}

// IsValid returns true if From <= To and From is non-negative.
func (r Range) IsValid() bool {
	return r.From >= 0 && r.From <= r.To
}

// Contains returns true if the offset lies within [From, To).
func (r Range) Contains(offset ByteOffset) bool {
	return offset >= r.From && offset < r.To
}

// Touches returns true if the offset lies within the closed range [From, To].
// A cursor sitting at either edge of a span still touches it.
func (r Range) Touches(offset ByteOffset) bool {
	return offset >= r.From && offset <= r.To
}

// Overlaps returns true if this range shares at least one byte with other.
func (r Range) Overlaps(other Range) bool {
	return r.From < other.To && other.From < r.To
}

// Union returns the smallest range covering both ranges.
func (r Range) Union(other Range) Range {
	from := r.From
	if other.From < from {
		from = other.From
	}
	to := r.To
	if other.To > to {
		to = other.To
	}
	return Range{From: from, To: to}
}

// Clamp limits the range to [0, max].
func (r Range) Clamp(max ByteOffset) Range {
	from, to := r.From, r.To
	if from < 0 {
		from = 0
	}
	if to > max {
		to = max
	}
	if from > to {
		from = to
	}
	return Range{From: from, To: to}
}
