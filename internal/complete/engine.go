package complete

import (
	"context"
	"io"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vellum-editor/vellum/internal/cursor"
	"github.com/vellum-editor/vellum/internal/match"
	"github.com/vellum-editor/vellum/internal/text"
)

type phase int

const (
	phaseClosed phase = iota
	phasePending
	phaseOpen
	phaseAborting
)

func (p phase) String() string {
	switch p {
	case phaseClosed:
		return "closed"
	case phasePending:
		return "pending"
	case phaseOpen:
		return "open"
	case phaseAborting:
		return "aborting"
	}
	return "unknown"
}

// Options configure an Engine.
type Options struct {
	// Sources are queried on every activation, each on its own goroutine.
	Sources []Source

	// Weights tune the match scorer.
	Weights match.Weights

	// CaseSensitive restricts matching to exact case.
	CaseSensitive bool

	// ActivationDelay is how long after a word character is typed the
	// engine waits before querying sources. Zero selects the default.
	ActivationDelay time.Duration

	// SyncDelay bounds how long Sync waits for in-flight sources.
	SyncDelay time.Duration

	// MaxCandidates caps the merged candidate list.
	MaxCandidates int

	// Logger receives structured engine events. Nil discards them.
	Logger *log.Logger
}

// DefaultOptions returns the engine defaults used when a field is left
// at its zero value.
func DefaultOptions() Options {
	return Options{
		Weights:         match.DefaultWeights(),
		ActivationDelay: 75 * time.Millisecond,
		SyncDelay:       100 * time.Millisecond,
		MaxCandidates:   50,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Weights == (match.Weights{}) {
		o.Weights = def.Weights
	}
	if o.ActivationDelay == 0 {
		o.ActivationDelay = def.ActivationDelay
	}
	if o.SyncDelay == 0 {
		o.SyncDelay = def.SyncDelay
	}
	if o.MaxCandidates == 0 {
		o.MaxCandidates = def.MaxCandidates
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Engine drives completion sessions over a document and selection set.
// It is not safe for concurrent use; all methods must be called from the
// same goroutine.
type Engine struct {
	opts    Options
	matcher *match.Matcher
	log     *log.Logger

	doc text.Document
	sel cursor.Set

	phase    phase
	explicit bool
	gen      uint64
	queries  []*activeQuery
	replies  chan reply

	armed bool
	armAt time.Time

	state   *State
	session string
}

// New builds an Engine. The document starts empty with a single caret at
// offset zero; call Reset to attach real content.
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:    opts,
		matcher: match.New(opts.Weights, opts.CaseSensitive),
		log:     opts.Logger,
		doc:     text.NewDocument(""),
		sel:     cursor.NewSetAt(0),
		replies: make(chan reply, 128),
	}
}

// Reconfigure swaps the engine's tuning in place. Zero-valued fields keep
// their defaults; an empty Sources slice and a nil Logger keep the current
// ones. Must be called from the host goroutine, like every other method.
func (e *Engine) Reconfigure(opts Options) {
	if len(opts.Sources) == 0 {
		opts.Sources = e.opts.Sources
	}
	if opts.Logger == nil {
		opts.Logger = e.opts.Logger
	}
	opts = opts.withDefaults()
	e.opts = opts
	e.matcher = match.New(opts.Weights, opts.CaseSensitive)
	e.log = opts.Logger
}

// Document returns the engine's current document snapshot.
func (e *Engine) Document() text.Document { return e.doc }

// Selection returns the engine's current selection set.
func (e *Engine) Selection() cursor.Set { return e.sel }

// Reset replaces the document and selection wholesale, closing any open
// session. Use it when the host swaps buffers or reloads content.
func (e *Engine) Reset(doc text.Document, sel cursor.Set) {
	e.close("reset")
	e.doc = doc
	e.sel = sel
	e.armed = false
}

// StartCompletion begins an explicit session at the primary cursor. If a
// session is already active it is restarted with a fresh query.
func (e *Engine) StartCompletion() {
	e.armed = false
	e.newEpoch(true)
}

// CloseCompletion dismisses the active session, aborting any in-flight
// queries. It is a no-op when nothing is active.
func (e *Engine) CloseCompletion() {
	e.close("dismissed")
}

// ApplyChange applies an edit to the document, maps the selection through
// it, and reconciles the active session. Typing a word character while
// closed arms implicit activation.
func (e *Engine) ApplyChange(c text.Change) error {
	next, err := e.doc.Apply(c)
	if err != nil {
		return err
	}
	e.doc = next
	e.sel = e.sel.Map(c)

	switch e.phase {
	case phaseClosed:
		e.maybeArm(c)
	case phasePending, phaseOpen:
		e.reconcile(c)
	}
	return nil
}

// SetSelection replaces the selection set. Moving the primary cursor out
// of every active span closes the session.
func (e *Engine) SetSelection(sel cursor.Set) {
	e.sel = sel
	e.armed = false
	if e.phase == phaseClosed {
		return
	}
	pos := sel.Primary().Head
	for _, q := range e.queries {
		if !q.resolved {
			e.close("selection moved with queries in flight")
			return
		}
		r := q.result
		if r == nil {
			continue
		}
		if pos < r.From || pos > r.To {
			e.close("selection left span")
			return
		}
	}
	e.refresh()
}

// SelectNext moves the menu selection down, wrapping at the end.
func (e *Engine) SelectNext() { e.moveSelection(1) }

// SelectPrev moves the menu selection up, wrapping at the start.
func (e *Engine) SelectPrev() { e.moveSelection(-1) }

func (e *Engine) moveSelection(delta int) {
	if e.state == nil || len(e.state.Options) == 0 {
		return
	}
	n := len(e.state.Options)
	e.state.Selected = ((e.state.Selected+delta)%n + n) % n
}

// Sync fires a due implicit activation, waits up to SyncDelay for
// in-flight sources, then folds every arrived result into the menu. The
// host calls it from its idle loop; ctx bounds the wait further.
func (e *Engine) Sync(ctx context.Context) {
	if e.armed && !time.Now().Before(e.armAt) {
		e.armed = false
		e.newEpoch(false)
	}
	if e.phase == phasePending || e.phase == phaseOpen {
		e.await(ctx)
	}
	e.drain()
	e.refresh()
}

func (e *Engine) await(ctx context.Context) {
	deadline := time.Now().Add(e.opts.SyncDelay)
	for _, q := range e.queries {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		timer := time.NewTimer(remaining)
		select {
		case <-q.done:
			timer.Stop()
		case <-timer.C:
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// drain consumes every reply that has arrived, attributing results of the
// current generation to their queries and discarding stale ones.
func (e *Engine) drain() {
	for {
		select {
		case r := <-e.replies:
			e.handle(r)
		default:
			return
		}
	}
}

func (e *Engine) handle(r reply) {
	if r.gen != e.gen {
		e.log.Debug("discarding stale result", "gen", r.gen, "current", e.gen)
		return
	}
	q := e.queries[r.idx]
	q.resolved = true
	if r.err != nil {
		q.failed = true
		e.log.Error("completion source failed", "source", q.source.Name(), "err", r.err)
		return
	}
	res := r.result
	if res == nil {
		return
	}
	pos := e.sel.Primary().Head
	if res.From < 0 || res.From > res.To || res.From > pos || res.To < pos || res.To > e.doc.Len() {
		e.log.Warn("rejecting result with invalid span",
			"source", q.source.Name(), "from", res.From, "to", res.To, "pos", pos)
		return
	}
	q.result = res
}

// State returns the visible menu, or nil when no session is active. While
// results are still pending the previous menu, if any, stays visible.
func (e *Engine) State() *State {
	if e.state == nil {
		return nil
	}
	cp := *e.state
	cp.Options = append([]Option(nil), e.state.Options...)
	return &cp
}

func (e *Engine) maybeArm(c text.Change) {
	if !c.IsInsert() || c.Insert == "" {
		return
	}
	last, _ := lastRune(c.Insert)
	if !isWordRune(last) {
		return
	}
	if e.sel.Primary().Head != c.NewEnd() {
		return
	}
	e.armed = true
	e.armAt = time.Now().Add(e.opts.ActivationDelay)
}

// reconcile keeps an active session consistent with a document change:
// spans are mapped, each result narrows via its Update function or
// ValidFor pattern, and anything that no longer holds triggers a
// re-query or close depending on how the session started.
func (e *Engine) reconcile(c text.Change) {
	pos := e.sel.Primary().Head
	requery := false
	alive := 0
	unresolved := 0

	if e.state != nil {
		e.state.Span = c.MapRange(e.state.Span)
		for i := range e.state.Options {
			e.state.Options[i].Span = c.MapRange(e.state.Options[i].Span)
		}
	}

	for _, q := range e.queries {
		if !q.resolved {
			unresolved++
			requery = true
			continue
		}
		r := q.result
		if r == nil {
			continue
		}
		span := c.MapRange(text.NewRange(r.From, r.To))
		r.From, r.To = span.From, span.To
		if pos < r.From || pos > r.To {
			q.result = nil
			continue
		}
		if pos == r.From {
			// The prefix is gone; the session has nothing left to narrow.
			q.result = nil
			continue
		}
		if r.Update != nil {
			if nr := r.Update(r, span, e.doc); nr != nil {
				q.result = nr
				alive++
			} else {
				q.result = nil
			}
			continue
		}
		if r.ValidFor != nil && matchesWhole(r.ValidFor, e.doc.Slice(r.From, min(pos, r.To))) {
			alive++
			continue
		}
		q.result = nil
		requery = true
	}

	switch {
	case requery && e.explicit:
		e.newEpoch(true)
	case requery && c.IsDelete():
		e.close("deleted past valid prefix")
	case requery:
		e.newEpoch(false)
	case alive == 0 && unresolved == 0:
		e.close("no results remain")
	default:
		e.refresh()
	}
}

// newEpoch aborts the current generation and dispatches a fresh query to
// every source against the present document and cursor.
func (e *Engine) newEpoch(explicit bool) {
	e.abortQueries()
	if len(e.opts.Sources) == 0 {
		e.close("no sources configured")
		return
	}
	e.gen++
	e.explicit = explicit
	e.phase = phasePending
	if e.session == "" {
		e.session = uuid.NewString()
	}
	pos := e.sel.Primary().Head
	e.queries = make([]*activeQuery, len(e.opts.Sources))
	for i, src := range e.opts.Sources {
		q := &activeQuery{
			source:  src,
			context: newContext(e.doc, pos, explicit),
			done:    make(chan struct{}),
		}
		e.queries[i] = q
		go e.run(q, i, e.gen)
	}
	e.log.Debug("query dispatched",
		"session", e.session, "gen", e.gen, "pos", pos, "explicit", explicit)
}

func (e *Engine) run(q *activeQuery, idx int, gen uint64) {
	defer close(q.done)
	res, err := invoke(q.source, q.context)
	select {
	case e.replies <- reply{gen: gen, idx: idx, result: res, err: err}:
	case <-q.context.Done():
		// Superseded; nobody is interested in this reply anymore.
	}
}

func (e *Engine) abortQueries() {
	if len(e.queries) == 0 {
		return
	}
	e.phase = phaseAborting
	for _, q := range e.queries {
		q.context.abort()
	}
	e.queries = nil
}

func (e *Engine) close(reason string) {
	if e.phase == phaseClosed && e.state == nil {
		return
	}
	e.abortQueries()
	e.phase = phaseClosed
	e.state = nil
	if e.session != "" {
		e.log.Debug("session closed", "session", e.session, "reason", reason)
		e.session = ""
	}
}

// refresh rebuilds the visible menu from the resolved results. While some
// sources are still out the previous menu stays up; once everyone has
// answered an empty merge closes the session.
func (e *Engine) refresh() {
	if e.phase != phasePending && e.phase != phaseOpen {
		return
	}
	resolved := 0
	for _, q := range e.queries {
		if q.resolved {
			resolved++
		}
	}
	opts := e.merge()
	if len(opts) > 0 {
		e.openMenu(opts)
		return
	}
	if resolved == len(e.queries) {
		e.close("all sources exhausted")
	}
}

func (e *Engine) openMenu(opts []Option) {
	selected := 0
	if e.state != nil && e.state.Selected < len(e.state.Options) {
		prev := e.state.Options[e.state.Selected].Label
		for i, o := range opts {
			if o.Label == prev {
				selected = i
				break
			}
		}
	}
	e.phase = phaseOpen
	e.state = &State{
		Span:     opts[0].Span,
		Options:  opts,
		Selected: selected,
	}
}

func matchesWhole(re *regexp.Regexp, s string) bool {
	loc := re.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
