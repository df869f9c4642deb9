// Package config loads and watches vellum's TOML configuration.
//
// Configuration is resolved in three layers: built-in defaults, the TOML
// file, and VELLUM_-prefixed environment variables, each overriding the
// previous. Components subscribe to a Notifier to pick up live reloads.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/vellum-editor/vellum/internal/match"
)

// Config is the root configuration.
type Config struct {
	Logging Logging `toml:"logging"`
	Engine  Engine  `toml:"engine"`
	Sources Sources `toml:"sources"`
	Server  Server  `toml:"server"`
}

// Logging configures the structured logger.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Format is text or json.
	Format string `toml:"format"`
	// File receives log output; empty logs to stderr.
	File string `toml:"file"`
}

// Engine tunes the completion engine.
type Engine struct {
	ActivationDelayMS int     `toml:"activation_delay_ms"`
	SyncDelayMS       int     `toml:"sync_delay_ms"`
	MaxCandidates     int     `toml:"max_candidates"`
	CaseSensitive     bool    `toml:"case_sensitive"`
	Weights           Weights `toml:"weights"`
}

// ActivationDelay returns the configured delay as a duration.
func (e Engine) ActivationDelay() time.Duration {
	return time.Duration(e.ActivationDelayMS) * time.Millisecond
}

// SyncDelay returns the configured sync wait as a duration.
func (e Engine) SyncDelay() time.Duration {
	return time.Duration(e.SyncDelayMS) * time.Millisecond
}

// Weights mirrors the scorer's tunables. Zero values fall back to the
// scorer defaults.
type Weights struct {
	PrefixExact int `toml:"prefix_exact"`
	PrefixFold  int `toml:"prefix_fold"`
	WordStart   int `toml:"word_start"`
	Anywhere    int `toml:"anywhere"`
	ByWord      int `toml:"by_word"`
	GapPenalty  int `toml:"gap_penalty"`
	FoldPenalty int `toml:"fold_penalty"`
	LenPenalty  int `toml:"len_penalty"`
}

// Resolve overlays the non-zero configured weights on the scorer
// defaults, so partial tuning never zeroes a category.
func (w Weights) Resolve() match.Weights {
	out := match.DefaultWeights()
	if w.PrefixExact != 0 {
		out.PrefixExact = w.PrefixExact
	}
	if w.PrefixFold != 0 {
		out.PrefixFold = w.PrefixFold
	}
	if w.WordStart != 0 {
		out.WordStart = w.WordStart
	}
	if w.Anywhere != 0 {
		out.Anywhere = w.Anywhere
	}
	if w.ByWord != 0 {
		out.ByWord = w.ByWord
	}
	if w.GapPenalty != 0 {
		out.GapPenalty = w.GapPenalty
	}
	if w.FoldPenalty != 0 {
		out.FoldPenalty = w.FoldPenalty
	}
	if w.LenPenalty != 0 {
		out.LenPenalty = w.LenPenalty
	}
	return out
}

// Sources selects and configures candidate sources.
type Sources struct {
	// Enabled lists active sources in query order.
	Enabled []string `toml:"enabled"`
	Word    Word     `toml:"word"`
	Static  Static   `toml:"static"`
	Script  Script   `toml:"script"`
}

// Word configures the document-word source.
type Word struct {
	// MinWordLength filters out words shorter than this from indexing.
	MinWordLength int `toml:"min_word_length"`
	// Dictionary is an optional newline-separated word list to preload.
	Dictionary string `toml:"dictionary"`
	// Boost is applied to every candidate the source emits.
	Boost int `toml:"boost"`
}

// Static configures the inline candidate source.
type Static struct {
	Entries []StaticEntry `toml:"entries"`
}

// StaticEntry is one inline candidate.
type StaticEntry struct {
	Label  string `toml:"label"`
	Detail string `toml:"detail"`
	Insert string `toml:"insert"`
}

// Script configures the Lua source.
type Script struct {
	// Paths lists Lua files, each providing a complete function.
	Paths []string `toml:"paths"`
	// TimeoutMS bounds a single script invocation.
	TimeoutMS int `toml:"timeout_ms"`
}

// Timeout returns the script timeout as a duration.
func (s Script) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Server configures the stdio transport.
type Server struct {
	// ReadBuffer sizes the decode buffer in bytes.
	ReadBuffer int `toml:"read_buffer"`
	// Debug echoes decoded frames to the log.
	Debug bool `toml:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
		Engine: Engine{
			ActivationDelayMS: 75,
			SyncDelayMS:       100,
			MaxCandidates:     50,
		},
		Sources: Sources{
			Enabled: []string{"word", "static"},
			Word: Word{
				MinWordLength: 3,
			},
			Script: Script{
				TimeoutMS: 200,
			},
		},
		Server: Server{
			ReadBuffer: 64 * 1024,
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "vellum", "config.toml")
	}
	return "config.toml"
}

// Load resolves configuration from path, layering it over the defaults
// and applying environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ParseError{Path: path, Err: err}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "logging.level", Value: c.Logging.Level,
			Reason: "must be one of debug, info, warn, error"}
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return &ValidationError{Field: "logging.format", Value: c.Logging.Format,
			Reason: "must be text or json"}
	}
	if c.Engine.ActivationDelayMS < 0 {
		return &ValidationError{Field: "engine.activation_delay_ms",
			Value: fmt.Sprint(c.Engine.ActivationDelayMS), Reason: "must not be negative"}
	}
	if c.Engine.SyncDelayMS < 0 {
		return &ValidationError{Field: "engine.sync_delay_ms",
			Value: fmt.Sprint(c.Engine.SyncDelayMS), Reason: "must not be negative"}
	}
	if c.Engine.MaxCandidates < 1 {
		return &ValidationError{Field: "engine.max_candidates",
			Value: fmt.Sprint(c.Engine.MaxCandidates), Reason: "must be at least 1"}
	}
	for _, name := range c.Sources.Enabled {
		switch name {
		case "word", "static", "script":
		default:
			return &ValidationError{Field: "sources.enabled", Value: name,
				Reason: "unknown source"}
		}
	}
	if c.Sources.Word.MinWordLength < 1 {
		return &ValidationError{Field: "sources.word.min_word_length",
			Value: fmt.Sprint(c.Sources.Word.MinWordLength), Reason: "must be at least 1"}
	}
	return nil
}
