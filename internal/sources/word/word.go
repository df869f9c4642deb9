// Package word completes identifiers from the document itself, optionally
// augmented by a preloaded dictionary held in a patricia trie.
package word

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"

	"github.com/vellum-editor/vellum/internal/complete"
	"github.com/vellum-editor/vellum/internal/config"
)

var (
	tokenPattern = regexp.MustCompile(`\w*`)
	validFor     = regexp.MustCompile(`^\w*$`)
)

// dictVisitLimit bounds how many dictionary entries one query collects.
const dictVisitLimit = 500

// errStopVisit ends a trie walk early once the visit limit is reached.
var errStopVisit = errors.New("visit limit reached")

// Source completes words seen in the document and dictionary.
type Source struct {
	cfg  config.Word
	log  *log.Logger
	dict *patricia.Trie
}

// New builds the source, loading the configured dictionary file if any.
func New(cfg config.Word, logger *log.Logger) (*Source, error) {
	s := &Source{cfg: cfg, log: logger}
	if cfg.Dictionary != "" {
		dict, n, err := loadDictionary(cfg.Dictionary)
		if err != nil {
			return nil, fmt.Errorf("loading dictionary: %w", err)
		}
		s.dict = dict
		logger.Info("dictionary loaded", "path", cfg.Dictionary, "words", n)
	}
	return s, nil
}

func (s *Source) Name() string { return "word" }

// Complete gathers every distinct word in the document, minus the token
// being typed, plus dictionary entries sharing the token's prefix.
func (s *Source) Complete(cx *complete.Context) (*complete.Result, error) {
	span, token, ok := cx.TokenBefore(tokenPattern)
	if !ok {
		return nil, nil
	}

	words := s.scanDocument(cx, token)
	if cx.Aborted() {
		return nil, nil
	}
	s.collectDictionary(token, words)

	if len(words) == 0 {
		return nil, nil
	}
	cands := make([]complete.Candidate, 0, len(words))
	for w := range words {
		cands = append(cands, complete.Candidate{Label: w, Boost: s.cfg.Boost})
	}
	return &complete.Result{
		From:       span.From,
		To:         span.To,
		Candidates: cands,
		ValidFor:   validFor,
	}, nil
}

// scanDocument returns the distinct words of the document. The token
// under the cursor only counts when it occurs somewhere else too.
func (s *Source) scanDocument(cx *complete.Context, token string) map[string]struct{} {
	text := cx.Doc().Text()
	words := make(map[string]struct{})
	tokenSeen := 0

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		w := text[start:end]
		start = -1
		if len(w) < s.cfg.MinWordLength {
			return
		}
		if w == token {
			tokenSeen++
			if tokenSeen < 2 {
				return
			}
		}
		words[w] = struct{}{}
	}

	for i, r := range text {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return words
}

// collectDictionary merges dictionary entries with the token's prefix
// into words, up to dictVisitLimit.
func (s *Source) collectDictionary(token string, words map[string]struct{}) {
	if s.dict == nil || token == "" {
		return
	}
	visited := 0
	err := s.dict.VisitSubtree(patricia.Prefix(strings.ToLower(token)), func(p patricia.Prefix, item patricia.Item) error {
		if visited >= dictVisitLimit {
			return errStopVisit
		}
		visited++
		words[item.(string)] = struct{}{}
		return nil
	})
	if err != nil && !errors.Is(err, errStopVisit) {
		s.log.Warn("dictionary walk failed", "err", err)
	}
}

// loadDictionary reads a newline-separated word list. Blank lines and
// #-comments are skipped. Keys are lowercased so lookups fold case while
// the stored item keeps the original spelling.
func loadDictionary(path string) (*patricia.Trie, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	trie := patricia.NewTrie()
	count := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if trie.Insert(patricia.Prefix(strings.ToLower(w)), w) {
			count++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return trie, count, nil
}
