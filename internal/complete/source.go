package complete

import (
	"regexp"

	"github.com/vellum-editor/vellum/internal/text"
)

// Candidate is one completion a source offers.
type Candidate struct {
	// Label is shown in the menu and is what scoring matches against.
	Label string
	// Detail is optional supplementary text (type, signature, origin).
	Detail string
	// Insert is the text applied on accept. Empty means the Label itself.
	Insert string
	// Boost is added to the match score, letting a source promote or
	// demote individual candidates without changing its ordering rules.
	Boost int
}

// InsertText returns the text that accepting the candidate applies.
func (c Candidate) InsertText() string {
	if c.Insert != "" {
		return c.Insert
	}
	return c.Label
}

// UpdateFunc recomputes a result after a document change without
// re-invoking the source. span is the result's span mapped through the
// change and doc is the new document. Returning nil drops the result.
type UpdateFunc func(prev *Result, span text.Range, doc text.Document) *Result

// Result is a source's answer to one query.
type Result struct {
	// From and To delimit the text the candidates replace. From must not
	// exceed the query position; To may extend past it.
	From text.ByteOffset
	To   text.ByteOffset

	Candidates []Candidate

	// ValidFor, when set, keeps the result alive across edits as long as
	// the whole updated span still matches the pattern. The engine then
	// narrows locally instead of asking the source again.
	ValidFor *regexp.Regexp

	// Update, when set, takes precedence over ValidFor and is called
	// synchronously on every change while the result is active.
	Update UpdateFunc

	// Unfiltered marks candidates as pre-ranked: they bypass scoring and
	// keep the source's order, listed after all scored candidates.
	Unfiltered bool
}

// Source produces candidates for a query context. Complete runs on its
// own goroutine; it may block, watch cx.Done, and must not retain cx
// after returning. A nil result with a nil error means the source has
// nothing to offer here.
type Source interface {
	Name() string
	Complete(cx *Context) (*Result, error)
}

type funcSource struct {
	name string
	fn   func(cx *Context) (*Result, error)
}

func (s funcSource) Name() string                          { return s.name }
func (s funcSource) Complete(cx *Context) (*Result, error) { return s.fn(cx) }

// SourceFunc adapts a plain function into a Source.
func SourceFunc(name string, fn func(cx *Context) (*Result, error)) Source {
	return funcSource{name: name, fn: fn}
}
