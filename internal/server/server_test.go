package server

import (
	"context"
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vellum-editor/vellum/internal/complete"
	"github.com/vellum-editor/vellum/internal/config"
	"github.com/vellum-editor/vellum/internal/logger"
)

var wordToken = regexp.MustCompile(`\w*`)

func testSource(labels ...string) complete.Source {
	return complete.SourceFunc("test", func(cx *complete.Context) (*complete.Result, error) {
		span, _, ok := cx.TokenBefore(wordToken)
		if !ok {
			return nil, nil
		}
		cands := make([]complete.Candidate, len(labels))
		for i, l := range labels {
			cands[i] = complete.Candidate{Label: l}
		}
		return &complete.Result{From: span.From, To: span.To, Candidates: cands}, nil
	})
}

type client struct {
	t    *testing.T
	srv  *Server
	enc  *msgpack.Encoder
	dec  *msgpack.Decoder
	w    io.Closer
	done chan error
}

func startServer(t *testing.T, sources ...complete.Source) *client {
	t.Helper()
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	engine := complete.New(complete.Options{Sources: sources})
	srv := New(engine, config.Default().Server, inR, outW, logger.Discard())

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(context.Background())
		outW.Close()
	}()

	c := &client{
		t:    t,
		srv:  srv,
		enc:  msgpack.NewEncoder(inW),
		dec:  msgpack.NewDecoder(outR),
		w:    inW,
		done: done,
	}
	t.Cleanup(func() {
		inW.Close()
		require.NoError(t, <-done)
	})

	// Consume the ready frame.
	var ready Response
	require.NoError(t, c.dec.Decode(&ready))
	require.Equal(t, statusReady, ready.Status)
	return c
}

func (c *client) call(req Request) Response {
	c.t.Helper()
	require.NoError(c.t, c.enc.Encode(req))
	var resp Response
	require.NoError(c.t, c.dec.Decode(&resp))
	require.Equal(c.t, req.ID, resp.ID)
	return resp
}

func labels(menu *Menu) []string {
	if menu == nil {
		return nil
	}
	out := make([]string, len(menu.Options))
	for i, o := range menu.Options {
		out[i] = o.Label
	}
	return out
}

func TestPing(t *testing.T) {
	c := startServer(t, testSource("two"))
	resp := c.call(Request{ID: "1", Op: "ping"})
	assert.Equal(t, statusOK, resp.Status)
}

func TestExplicitCompletionRoundTrip(t *testing.T) {
	c := startServer(t, testSource("two", "three", "one"))

	resp := c.call(Request{ID: "1", Op: "reset", Text: "t", Cursors: [][2]int{{1, 1}}})
	require.Equal(t, statusOK, resp.Status)
	assert.Nil(t, resp.Menu)

	resp = c.call(Request{ID: "2", Op: "start"})
	require.Equal(t, statusOK, resp.Status)
	require.NotNil(t, resp.Menu)
	assert.Equal(t, []string{"two", "three"}, labels(resp.Menu))
	assert.Equal(t, 0, resp.Menu.From)
	assert.Equal(t, 1, resp.Menu.To)
}

func TestChangeNarrowsAndAcceptApplies(t *testing.T) {
	c := startServer(t, testSource("two", "three"))

	c.call(Request{ID: "1", Op: "reset", Text: "t", Cursors: [][2]int{{1, 1}}})
	c.call(Request{ID: "2", Op: "start"})

	resp := c.call(Request{ID: "3", Op: "change", From: 1, To: 1, Insert: "h"})
	require.Equal(t, statusOK, resp.Status)
	require.NotNil(t, resp.Menu)
	assert.Equal(t, []string{"three"}, labels(resp.Menu))

	resp = c.call(Request{ID: "4", Op: "accept"})
	require.Equal(t, statusOK, resp.Status)
	assert.Equal(t, "three", resp.Text)
	require.Len(t, resp.Edits, 1)
	assert.Equal(t, Edit{From: 0, To: 2, Insert: "three"}, resp.Edits[0])
}

func TestMenuNavigation(t *testing.T) {
	c := startServer(t, testSource("two", "three"))
	c.call(Request{ID: "1", Op: "reset", Text: "t", Cursors: [][2]int{{1, 1}}})
	c.call(Request{ID: "2", Op: "start"})

	resp := c.call(Request{ID: "3", Op: "next"})
	require.NotNil(t, resp.Menu)
	assert.Equal(t, 1, resp.Menu.Selected)

	resp = c.call(Request{ID: "4", Op: "accept"})
	assert.Equal(t, "three", resp.Text)
}

func TestCloseDismissesMenu(t *testing.T) {
	c := startServer(t, testSource("two"))
	c.call(Request{ID: "1", Op: "reset", Text: "t", Cursors: [][2]int{{1, 1}}})
	c.call(Request{ID: "2", Op: "start"})

	resp := c.call(Request{ID: "3", Op: "close"})
	assert.Equal(t, statusOK, resp.Status)

	resp = c.call(Request{ID: "4", Op: "state"})
	assert.Nil(t, resp.Menu)
}

func TestAcceptWithoutSessionFails(t *testing.T) {
	c := startServer(t, testSource("two"))
	resp := c.call(Request{ID: "1", Op: "accept"})
	assert.Equal(t, statusError, resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestUnknownOpFails(t *testing.T) {
	c := startServer(t, testSource("two"))
	resp := c.call(Request{ID: "1", Op: "launch"})
	assert.Equal(t, statusError, resp.Status)
}

func TestInvalidChangeFails(t *testing.T) {
	c := startServer(t, testSource("two"))
	c.call(Request{ID: "1", Op: "reset", Text: "t", Cursors: [][2]int{{1, 1}}})
	resp := c.call(Request{ID: "2", Op: "change", From: 5, To: 9, Insert: "x"})
	assert.Equal(t, statusError, resp.Status)
}

func TestApplyConfigTakesEffect(t *testing.T) {
	c := startServer(t, testSource("two", "three"))
	c.call(Request{ID: "1", Op: "reset", Text: "t", Cursors: [][2]int{{1, 1}}})

	next := config.Default()
	next.Engine.MaxCandidates = 1
	c.srv.ApplyConfig(next)

	resp := c.call(Request{ID: "2", Op: "start"})
	require.Equal(t, statusOK, resp.Status)
	require.NotNil(t, resp.Menu)
	assert.Equal(t, []string{"two"}, labels(resp.Menu))
}

func TestMultiCursorAcceptOverWire(t *testing.T) {
	c := startServer(t, testSource("foo"))
	c.call(Request{ID: "1", Op: "reset", Text: "fo fo", Cursors: [][2]int{{2, 2}, {5, 5}}})
	c.call(Request{ID: "2", Op: "start"})

	resp := c.call(Request{ID: "3", Op: "accept"})
	require.Equal(t, statusOK, resp.Status)
	assert.Equal(t, "foo foo", resp.Text)
	assert.Len(t, resp.Edits, 2)
}
