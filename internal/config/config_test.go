package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vellum-editor/vellum/internal/match"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[logging]
level = "debug"

[engine]
max_candidates = 10

[engine.weights]
gap_penalty = 16

[sources]
enabled = ["word", "script"]

[sources.script]
paths = ["snippets.lua"]
timeout_ms = 50
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Engine.MaxCandidates)
	assert.Equal(t, 16, cfg.Engine.Weights.GapPenalty)
	assert.Equal(t, []string{"word", "script"}, cfg.Sources.Enabled)
	assert.Equal(t, 50*time.Millisecond, cfg.Sources.Script.Timeout())
	// Untouched settings keep their defaults.
	assert.Equal(t, 75*time.Millisecond, cfg.Engine.ActivationDelay())
	assert.Equal(t, 3, cfg.Sources.Word.MinWordLength)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[logging\nlevel=")
	_, err := Load(path)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative delay", func(c *Config) { c.Engine.ActivationDelayMS = -1 }, "engine.activation_delay_ms"},
		{"zero candidates", func(c *Config) { c.Engine.MaxCandidates = 0 }, "engine.max_candidates"},
		{"unknown source", func(c *Config) { c.Sources.Enabled = []string{"psychic"} }, "sources.enabled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[logging]
level = "warn"
`)
	t.Setenv("VELLUM_LOG_LEVEL", "error")
	t.Setenv("VELLUM_MAX_CANDIDATES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 7, cfg.Engine.MaxCandidates)
}

func TestNotifierSubscribeAndUnsubscribe(t *testing.T) {
	n := NewNotifier()
	var got []string
	sub := n.Subscribe(func(cfg Config) { got = append(got, cfg.Logging.Level) })

	cfg := Default()
	cfg.Logging.Level = "debug"
	n.Notify(cfg)
	require.Equal(t, []string{"debug"}, got)

	sub.Unsubscribe()
	n.Notify(cfg)
	assert.Len(t, got, 1)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[logging]
level = "info"
`)

	n := NewNotifier()
	reloaded := make(chan Config, 1)
	n.Subscribe(func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})

	w, err := NewWatcher(path, n, log.New(os.Stderr))
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, dir, "config.toml", `
[logging]
level = "debug"
`)

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "debug", cfg.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not deliver a reload")
	}
}

func TestWeightsResolveOverlaysDefaults(t *testing.T) {
	w := Weights{GapPenalty: 16, ByWord: 61000}

	resolved := w.Resolve()
	def := match.DefaultWeights()

	assert.Equal(t, 16, resolved.GapPenalty)
	assert.Equal(t, 61000, resolved.ByWord)
	assert.Equal(t, def.PrefixExact, resolved.PrefixExact)
	assert.Equal(t, def.LenPenalty, resolved.LenPenalty)
}
