// Package script runs user-provided Lua completion sources.
//
// A script defines a global function
//
//	function complete(text, pos, explicit)
//
// receiving the full document, the 0-based byte offset of the cursor, and
// whether the query was explicit. It returns nil for no candidates, or a
// table:
//
//	{
//	  from = 3,                  -- replace span start, 0-based, required
//	  to = 5,                    -- span end, defaults to pos
//	  valid_for = "^\\w*$",      -- optional narrowing pattern
//	  unfiltered = false,        -- optional, bypass scoring
//	  candidates = {
//	    "plain",
//	    { label = "fancy", detail = "...", insert = "fancy()", boost = 10 },
//	  },
//	}
package script

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/vellum-editor/vellum/internal/complete"
	"github.com/vellum-editor/vellum/internal/config"
)

// Source wraps one Lua state. LState is not goroutine-safe and queries
// arrive on per-query goroutines, so every call locks the state.
type Source struct {
	name    string
	timeout time.Duration
	log     *log.Logger

	mu sync.Mutex
	L  *lua.LState
}

// Load builds a source per configured script path.
func Load(cfg config.Script, logger *log.Logger) ([]*Source, error) {
	sources := make([]*Source, 0, len(cfg.Paths))
	for _, path := range cfg.Paths {
		s, err := NewFromFile(path, cfg.Timeout(), logger)
		if err != nil {
			for _, prev := range sources {
				prev.Close()
			}
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}

// NewFromFile loads and validates a script file.
func NewFromFile(path string, timeout time.Duration, logger *log.Logger) (*Source, error) {
	L := lua.NewState()
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading script %s: %w", path, err)
	}
	name := "script:" + filepath.Base(path)
	return newSource(name, L, timeout, logger)
}

// NewFromString loads a script from source text, mainly for tests.
func NewFromString(name, code string, timeout time.Duration, logger *log.Logger) (*Source, error) {
	L := lua.NewState()
	if err := L.DoString(code); err != nil {
		L.Close()
		return nil, fmt.Errorf("loading script %s: %w", name, err)
	}
	return newSource(name, L, timeout, logger)
}

func newSource(name string, L *lua.LState, timeout time.Duration, logger *log.Logger) (*Source, error) {
	if L.GetGlobal("complete").Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("script %s does not define a complete function", name)
	}
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	return &Source{name: name, timeout: timeout, log: logger, L: L}, nil
}

// Close releases the Lua state.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.L != nil {
		s.L.Close()
		s.L = nil
	}
}

func (s *Source) Name() string { return s.name }

// Complete invokes the script's complete function. A query abort cancels
// the script mid-run through the state's context.
func (s *Source) Complete(cx *complete.Context) (*complete.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.L == nil {
		return nil, fmt.Errorf("script %s is closed", s.name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	cx.OnAbort(cancel)
	s.L.SetContext(ctx)

	err := s.L.CallByParam(lua.P{
		Fn:      s.L.GetGlobal("complete"),
		NRet:    1,
		Protect: true,
	}, lua.LString(cx.Doc().Text()), lua.LNumber(cx.Pos()), lua.LBool(cx.Explicit()))
	if err != nil {
		if cx.Aborted() {
			return nil, nil
		}
		return nil, fmt.Errorf("script %s: %w", s.name, err)
	}

	ret := s.L.Get(-1)
	s.L.Pop(1)
	if ret == lua.LNil {
		return nil, nil
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script %s: complete returned %s, want table or nil", s.name, ret.Type())
	}
	return s.parseResult(tbl, cx.Pos())
}

func (s *Source) parseResult(tbl *lua.LTable, pos int) (*complete.Result, error) {
	from, ok := tbl.RawGetString("from").(lua.LNumber)
	if !ok {
		return nil, fmt.Errorf("script %s: result is missing a numeric from field", s.name)
	}
	res := &complete.Result{From: int(from), To: pos}
	if to, ok := tbl.RawGetString("to").(lua.LNumber); ok {
		res.To = int(to)
	}
	if pat, ok := tbl.RawGetString("valid_for").(lua.LString); ok {
		re, err := regexp.Compile(string(pat))
		if err != nil {
			return nil, fmt.Errorf("script %s: bad valid_for pattern: %w", s.name, err)
		}
		res.ValidFor = re
	}
	if unf, ok := tbl.RawGetString("unfiltered").(lua.LBool); ok {
		res.Unfiltered = bool(unf)
	}

	cands, ok := tbl.RawGetString("candidates").(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("script %s: result is missing a candidates table", s.name)
	}
	var parseErr error
	cands.ForEach(func(_, v lua.LValue) {
		if parseErr != nil {
			return
		}
		switch c := v.(type) {
		case lua.LString:
			res.Candidates = append(res.Candidates, complete.Candidate{Label: string(c)})
		case *lua.LTable:
			cand := complete.Candidate{}
			if l, ok := c.RawGetString("label").(lua.LString); ok {
				cand.Label = string(l)
			}
			if cand.Label == "" {
				parseErr = fmt.Errorf("script %s: candidate without a label", s.name)
				return
			}
			if d, ok := c.RawGetString("detail").(lua.LString); ok {
				cand.Detail = string(d)
			}
			if i, ok := c.RawGetString("insert").(lua.LString); ok {
				cand.Insert = string(i)
			}
			if b, ok := c.RawGetString("boost").(lua.LNumber); ok {
				cand.Boost = int(b)
			}
			res.Candidates = append(res.Candidates, cand)
		default:
			parseErr = fmt.Errorf("script %s: candidate must be a string or table, got %s", s.name, v.Type())
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(res.Candidates) == 0 {
		return nil, nil
	}
	return res, nil
}
