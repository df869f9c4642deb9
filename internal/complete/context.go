package complete

import (
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vellum-editor/vellum/internal/text"
)

// Context carries an immutable snapshot of the query position to a source.
// It is safe to use from the source's goroutine; the engine never mutates
// it after dispatch. Abortion is advisory: a source may poll Aborted,
// register an OnAbort listener, or select on Done, but nothing forces it
// to stop.
type Context struct {
	doc      text.Document
	pos      text.ByteOffset
	explicit bool

	aborted  atomic.Bool
	mu       sync.Mutex
	abortFns []func()
	done     chan struct{}
	once     sync.Once
}

func newContext(doc text.Document, pos text.ByteOffset, explicit bool) *Context {
	return &Context{
		doc:      doc,
		pos:      pos,
		explicit: explicit,
		done:     make(chan struct{}),
	}
}

// Doc returns the document snapshot the query was issued against.
func (c *Context) Doc() text.Document { return c.doc }

// Pos returns the primary cursor position at query time.
func (c *Context) Pos() text.ByteOffset { return c.pos }

// Explicit reports whether the user requested completion directly rather
// than it activating from typing.
func (c *Context) Explicit() bool { return c.explicit }

// Aborted reports whether the query has been superseded. Long-running
// sources should poll this and return early when it flips.
func (c *Context) Aborted() bool { return c.aborted.Load() }

// Done returns a channel closed when the query is aborted.
func (c *Context) Done() <-chan struct{} { return c.done }

// OnAbort registers fn to run when the query is aborted. If the query is
// already aborted, fn runs immediately on the calling goroutine.
func (c *Context) OnAbort(fn func()) {
	c.mu.Lock()
	if c.aborted.Load() {
		c.mu.Unlock()
		fn()
		return
	}
	c.abortFns = append(c.abortFns, fn)
	c.mu.Unlock()
}

func (c *Context) abort() {
	c.once.Do(func() {
		c.aborted.Store(true)
		c.mu.Lock()
		fns := c.abortFns
		c.abortFns = nil
		c.mu.Unlock()
		close(c.done)
		for _, fn := range fns {
			fn()
		}
	})
}

// TokenBefore finds the longest match of pattern on the current line that
// ends exactly at the cursor. It returns the matched span and its text;
// ok is false when nothing before the cursor matches.
func (c *Context) TokenBefore(pattern *regexp.Regexp) (text.Range, string, bool) {
	lineStart := c.lineStart()
	line := c.doc.Slice(lineStart, c.pos)
	for start := 0; start <= len(line); start++ {
		loc := pattern.FindStringIndex(line[start:])
		if loc == nil {
			break
		}
		from, to := start+loc[0], start+loc[1]
		if to == len(line) {
			return text.NewRange(lineStart+from, c.pos), line[from:], true
		}
		start = from
	}
	return text.Range{}, "", false
}

func (c *Context) lineStart() text.ByteOffset {
	head := c.doc.Slice(0, c.pos)
	if i := strings.LastIndexByte(head, '\n'); i >= 0 {
		return i + 1
	}
	return 0
}
