package text

import (
	"errors"
	"fmt"
)

// ErrRangeOutOfBounds is returned when a range does not fit the document.
var ErrRangeOutOfBounds = errors.New("range out of bounds")

// Document is an immutable snapshot of a text buffer. Applying a change
// produces a new snapshot with a higher revision; existing snapshots are
// never mutated and are safe to share across goroutines.
type Document struct {
	text     string
	revision uint64
}

// NewDocument creates a snapshot at revision zero.
func NewDocument(text string) Document {
	return Document{text: text}
}

// Text returns the full document text.
func (d Document) Text() string {
	return d.text
}

// Len returns the document length in bytes.
func (d Document) Len() ByteOffset {
	return len(d.text)
}

// Revision returns the snapshot's revision number.
func (d Document) Revision() uint64 {
	return d.revision
}

// Slice returns the text in [from, to), clamped to the document bounds.
func (d Document) Slice(from, to ByteOffset) string {
	r := Range{From: from, To: to}.Clamp(len(d.text))
	if !r.IsValid() || r.IsEmpty() {
		return ""
	}
	return d.text[r.From:r.To]
}

// Apply produces the snapshot that results from the change.
func (d Document) Apply(c Change) (Document, error) {
	if !c.Range.IsValid() || c.Range.To > len(d.text) {
		return d, fmt.Errorf("applying %v to %d bytes: %w", c, len(d.text), ErrRangeOutOfBounds)
	}
	return Document{
		text:     d.text[:c.Range.From] + c.Insert + d.text[c.Range.To:],
		revision: d.revision + 1,
	}, nil
}

// MustApply is Apply for changes known to be in bounds; it panics otherwise.
// Intended for tests and for changes the caller just constructed from
// offsets inside the document.
func (d Document) MustApply(c Change) Document {
	next, err := d.Apply(c)
	if err != nil {
		panic(err)
	}
	return next
}
