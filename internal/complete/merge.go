package complete

import (
	"sort"

	"github.com/vellum-editor/vellum/internal/text"
)

// merge combines every resolved result into a ranked option list. Scored
// candidates sort by score descending with label as the tiebreaker;
// unfiltered candidates follow in their source's order. Duplicate labels
// keep their first occurrence regardless of which source produced it.
func (e *Engine) merge() []Option {
	pos := e.sel.Primary().Head
	var scored, plain []Option

	for _, q := range e.queries {
		r := q.result
		if r == nil {
			continue
		}
		span := text.NewRange(r.From, r.To)
		if r.Unfiltered {
			for _, c := range r.Candidates {
				plain = append(plain, Option{Candidate: c, Source: q.source.Name(), Span: span})
			}
			continue
		}
		prefix := e.doc.Slice(r.From, min(pos, r.To))
		for _, c := range r.Candidates {
			score, ok := e.matcher.Score(prefix, c.Label)
			if !ok {
				continue
			}
			scored = append(scored, Option{
				Candidate: c,
				Source:    q.source.Name(),
				Score:     score + c.Boost,
				Span:      span,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Label < scored[j].Label
	})

	out := make([]Option, 0, len(scored)+len(plain))
	seen := make(map[string]struct{}, len(scored)+len(plain))
	for _, group := range [][]Option{scored, plain} {
		for _, o := range group {
			if _, dup := seen[o.Label]; dup {
				continue
			}
			seen[o.Label] = struct{}{}
			out = append(out, o)
			if len(out) == e.opts.MaxCandidates {
				return out
			}
		}
	}
	return out
}
