package config

import (
	"os"
	"strconv"
)

// applyEnv overlays VELLUM_-prefixed environment variables onto cfg.
// Only a fixed set of operational knobs is exposed; structural settings
// like source entries stay file-only.
func applyEnv(cfg *Config) {
	envString("VELLUM_LOG_LEVEL", &cfg.Logging.Level)
	envString("VELLUM_LOG_FORMAT", &cfg.Logging.Format)
	envString("VELLUM_LOG_FILE", &cfg.Logging.File)
	envInt("VELLUM_ACTIVATION_DELAY_MS", &cfg.Engine.ActivationDelayMS)
	envInt("VELLUM_SYNC_DELAY_MS", &cfg.Engine.SyncDelayMS)
	envInt("VELLUM_MAX_CANDIDATES", &cfg.Engine.MaxCandidates)
	envBool("VELLUM_CASE_SENSITIVE", &cfg.Engine.CaseSensitive)
	envString("VELLUM_DICTIONARY", &cfg.Sources.Word.Dictionary)
	envBool("VELLUM_SERVER_DEBUG", &cfg.Server.Debug)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v, ok := os.LookupEnv(name); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(name string, dst *bool) {
	if v, ok := os.LookupEnv(name); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
