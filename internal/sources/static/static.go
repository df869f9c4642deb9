// Package static serves a fixed candidate list from configuration,
// typically snippets or project-specific keywords.
package static

import (
	"regexp"

	"github.com/vellum-editor/vellum/internal/complete"
	"github.com/vellum-editor/vellum/internal/config"
)

var (
	tokenPattern = regexp.MustCompile(`\w*`)
	validFor     = regexp.MustCompile(`^\w*$`)
)

// Source completes from a fixed list of entries.
type Source struct {
	candidates []complete.Candidate
}

// New builds the source from configured entries.
func New(cfg config.Static) *Source {
	cands := make([]complete.Candidate, 0, len(cfg.Entries))
	for _, e := range cfg.Entries {
		if e.Label == "" {
			continue
		}
		cands = append(cands, complete.Candidate{
			Label:  e.Label,
			Detail: e.Detail,
			Insert: e.Insert,
		})
	}
	return &Source{candidates: cands}
}

func (s *Source) Name() string { return "static" }

// Complete offers the full list against the token before the cursor. The
// result survives further typing within a word without re-invocation.
func (s *Source) Complete(cx *complete.Context) (*complete.Result, error) {
	if len(s.candidates) == 0 {
		return nil, nil
	}
	span, _, ok := cx.TokenBefore(tokenPattern)
	if !ok {
		return nil, nil
	}
	return &complete.Result{
		From:       span.From,
		To:         span.To,
		Candidates: s.candidates,
		ValidFor:   validFor,
	}, nil
}
