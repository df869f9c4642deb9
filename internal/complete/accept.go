package complete

import (
	"sort"

	"github.com/vellum-editor/vellum/internal/cursor"
	"github.com/vellum-editor/vellum/internal/text"
)

// Accepted describes the outcome of accepting a completion.
type Accepted struct {
	// Option is the completion that was applied.
	Option Option
	// Changes are the edits performed, non-overlapping and ascending by
	// position, expressed against the document as it was before accept.
	Changes []text.Change
	// Doc is the document after all changes.
	Doc text.Document
	// Sel is the selection after accept: a caret at the end of each
	// inserted occurrence, unedited cursors mapped through the changes.
	Sel cursor.Set
}

// AcceptCompletion applies the highlighted option. With several cursors
// the edit replays at each one whose surrounding text matches the
// primary's; the match is purely textual, sources are not consulted
// again. If any cursor's context differs, only the primary is edited.
// An inverted or extended selection contributes its full range to the
// replaced span. The session closes on success.
func (e *Engine) AcceptCompletion() (*Accepted, bool) {
	if e.phase != phaseOpen || e.state == nil {
		return nil, false
	}
	opt, ok := e.state.SelectedOption()
	if !ok {
		return nil, false
	}
	insert := opt.InsertText()

	prim := e.sel.Primary()
	before := prim.Head - opt.Span.From
	after := opt.Span.To - prim.Head
	src := e.doc.Slice(opt.Span.From, opt.Span.To)

	cursors := e.sel.All()
	primaryIdx := e.sel.PrimaryIndex()

	spans := make([]text.Range, len(cursors))
	edited := make([]bool, len(cursors))
	allMatch := true
	for i, c := range cursors {
		if i == primaryIdx {
			spans[i] = opt.Span.Union(prim.Range())
			edited[i] = true
			continue
		}
		span := text.NewRange(c.Head-before, c.Head+after)
		if span.From < 0 || span.To > e.doc.Len() || e.doc.Slice(span.From, span.To) != src {
			allMatch = false
			continue
		}
		spans[i] = span.Union(c.Range())
		edited[i] = true
	}
	if !allMatch {
		for i := range edited {
			edited[i] = i == primaryIdx
		}
	}

	// Drop any span that overlaps an earlier one; the primary wins ties.
	order := make([]int, 0, len(cursors))
	for i := range cursors {
		if edited[i] {
			order = append(order, i)
		}
	}
	sort.Ints(order)
	lastTo := -1
	for _, i := range order {
		if spans[i].From < lastTo {
			if i == primaryIdx {
				// Unedit whichever earlier cursor claimed this region.
				for _, j := range order {
					if j != i && edited[j] && spans[j].Overlaps(spans[i]) {
						edited[j] = false
					}
				}
			} else {
				edited[i] = false
				continue
			}
		}
		lastTo = spans[i].To
	}

	var changes []text.Change
	for _, i := range order {
		if edited[i] {
			changes = append(changes, text.NewReplace(spans[i].From, spans[i].To, insert))
		}
	}

	// Apply back to front so earlier offsets stay valid.
	doc := e.doc
	for i := len(changes) - 1; i >= 0; i-- {
		next, err := doc.Apply(changes[i])
		if err != nil {
			e.log.Error("accept edit failed", "err", err)
			return nil, false
		}
		doc = next
	}

	sels := make([]cursor.Selection, 0, len(cursors))
	var primSel cursor.Selection
	delta := 0
	for i, c := range cursors {
		var sel cursor.Selection
		if edited[i] {
			sel = cursor.NewCaret(spans[i].From + delta + len(insert))
			delta += len(insert) - spans[i].Len()
		} else {
			sel = cursor.New(mapThrough(changes, c.Anchor), mapThrough(changes, c.Head))
		}
		if i == primaryIdx {
			primSel = sel
		} else {
			sels = append(sels, sel)
		}
	}
	newSel := cursor.NewSet(append([]cursor.Selection{primSel}, sels...)...)

	e.doc = doc
	e.sel = newSel
	e.log.Info("completion accepted",
		"session", e.session, "label", opt.Label, "source", opt.Source, "cursors", len(changes))
	e.close("accepted")

	return &Accepted{Option: opt, Changes: changes, Doc: doc, Sel: newSel}, true
}

// mapThrough maps an offset through an ascending list of non-overlapping
// changes expressed against the same original document.
func mapThrough(changes []text.Change, off text.ByteOffset) text.ByteOffset {
	delta := 0
	for _, ch := range changes {
		switch {
		case ch.Range.To <= off:
			delta += ch.Delta()
		case ch.Range.From >= off:
			return off + delta
		default:
			return ch.Range.From + len(ch.Insert) + delta
		}
	}
	return off + delta
}
