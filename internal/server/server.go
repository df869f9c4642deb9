// Package server exposes the completion engine over msgpack framed on a
// reader/writer pair, normally stdin and stdout.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vellum-editor/vellum/internal/complete"
	"github.com/vellum-editor/vellum/internal/config"
	"github.com/vellum-editor/vellum/internal/cursor"
	"github.com/vellum-editor/vellum/internal/text"
)

// Server owns one engine and serves one client connection. Requests are
// handled strictly in order on the Serve goroutine, which satisfies the
// engine's single-threaded contract.
type Server struct {
	engine *complete.Engine
	cfg    config.Server
	log    *log.Logger

	dec *msgpack.Decoder
	enc *msgpack.Encoder

	pending atomic.Pointer[config.Config]
}

// New builds a server around an engine and a transport.
func New(engine *complete.Engine, cfg config.Server, r io.Reader, w io.Writer, logger *log.Logger) *Server {
	br := bufio.NewReaderSize(r, cfg.ReadBuffer)
	return &Server{
		engine: engine,
		cfg:    cfg,
		log:    logger,
		dec:    msgpack.NewDecoder(br),
		enc:    msgpack.NewEncoder(w),
	}
}

// ApplyConfig schedules a reloaded configuration. The swap happens on the
// Serve goroutine before the next request is handled, so the engine only
// ever sees it from its own host goroutine. Safe to call from any
// goroutine.
func (s *Server) ApplyConfig(cfg config.Config) {
	s.pending.Store(&cfg)
}

func (s *Server) applyConfig(cfg config.Config) {
	s.cfg = cfg.Server
	s.engine.Reconfigure(complete.Options{
		Weights:         cfg.Engine.Weights.Resolve(),
		CaseSensitive:   cfg.Engine.CaseSensitive,
		ActivationDelay: cfg.Engine.ActivationDelay(),
		SyncDelay:       cfg.Engine.SyncDelay(),
		MaxCandidates:   cfg.Engine.MaxCandidates,
	})
	s.log.Info("configuration applied",
		"max_candidates", cfg.Engine.MaxCandidates,
		"activation_delay", cfg.Engine.ActivationDelay())
}

// Serve announces readiness, then decodes and handles requests until EOF
// or context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.enc.Encode(Response{Status: statusReady}); err != nil {
		return fmt.Errorf("writing ready frame: %w", err)
	}
	s.log.Info("serving")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Info("client closed the stream")
				return nil
			}
			return fmt.Errorf("decoding request: %w", err)
		}
		if next := s.pending.Swap(nil); next != nil {
			s.applyConfig(*next)
		}
		if s.cfg.Debug {
			s.log.Debug("request", "id", req.ID, "op", req.Op)
		}
		resp := s.handle(ctx, req)
		if err := s.enc.Encode(resp); err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	start := time.Now()
	resp := s.dispatch(ctx, req)
	resp.ID = req.ID
	resp.TimeUS = time.Since(start).Microseconds()
	return resp
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch req.Op {
	case "ping":
		return Response{Status: statusOK}

	case "reset":
		s.engine.Reset(text.NewDocument(req.Text), decodeCursors(req.Cursors))
		return s.okWithMenu()

	case "change":
		if err := s.engine.ApplyChange(text.NewReplace(req.From, req.To, req.Insert)); err != nil {
			return fail(err)
		}
		s.engine.Sync(ctx)
		return s.okWithMenu()

	case "select":
		s.engine.SetSelection(decodeCursors(req.Cursors))
		s.engine.Sync(ctx)
		return s.okWithMenu()

	case "start":
		s.engine.StartCompletion()
		s.engine.Sync(ctx)
		return s.okWithMenu()

	case "state":
		s.engine.Sync(ctx)
		return s.okWithMenu()

	case "next":
		s.engine.SelectNext()
		return s.okWithMenu()

	case "prev":
		s.engine.SelectPrev()
		return s.okWithMenu()

	case "accept":
		acc, ok := s.engine.AcceptCompletion()
		if !ok {
			return fail(errors.New("no completion to accept"))
		}
		edits := make([]Edit, len(acc.Changes))
		for i, c := range acc.Changes {
			edits[i] = Edit{From: c.Range.From, To: c.Range.To, Insert: c.Insert}
		}
		return Response{Status: statusOK, Edits: edits, Text: acc.Doc.Text()}

	case "close":
		s.engine.CloseCompletion()
		return Response{Status: statusOK}

	default:
		return fail(fmt.Errorf("unknown op %q", req.Op))
	}
}

func (s *Server) okWithMenu() Response {
	st := s.engine.State()
	if st == nil {
		return Response{Status: statusOK}
	}
	menu := &Menu{
		From:     st.Span.From,
		To:       st.Span.To,
		Selected: st.Selected,
		Options:  make([]MenuOption, len(st.Options)),
	}
	for i, o := range st.Options {
		menu.Options[i] = MenuOption{
			Label:  o.Label,
			Detail: o.Detail,
			Source: o.Source,
			From:   o.Span.From,
			To:     o.Span.To,
		}
	}
	return Response{Status: statusOK, Menu: menu}
}

func fail(err error) Response {
	return Response{Status: statusError, Error: err.Error()}
}

func decodeCursors(pairs [][2]int) cursor.Set {
	if len(pairs) == 0 {
		return cursor.NewSetAt(0)
	}
	sels := make([]cursor.Selection, len(pairs))
	for i, p := range pairs {
		sels[i] = cursor.New(p[0], p[1])
	}
	return cursor.NewSet(sels...)
}
