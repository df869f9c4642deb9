// Package main is the entry point for the vellum completion server.
//
// vellum speaks msgpack over stdin/stdout and is meant to run as an
// editor subprocess. All logging goes to stderr or a file so the
// protocol stream stays clean.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vellum-editor/vellum/internal/complete"
	"github.com/vellum-editor/vellum/internal/config"
	"github.com/vellum-editor/vellum/internal/logger"
	"github.com/vellum-editor/vellum/internal/server"
	"github.com/vellum-editor/vellum/internal/sources/script"
	"github.com/vellum-editor/vellum/internal/sources/static"
	"github.com/vellum-editor/vellum/internal/sources/word"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath(), "Path to the TOML config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	watch := flag.Bool("watch-config", false, "Reload the config file when it changes")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vellum %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		return 1
	}
	log := logger.New("vellum", cfg.Logging)
	engineLog := logger.New("engine", cfg.Logging)
	serverLog := logger.New("server", cfg.Logging)

	sources, cleanup, err := buildSources(cfg)
	if err != nil {
		log.Error("initializing sources", "err", err)
		return 1
	}
	defer cleanup()

	engine := complete.New(complete.Options{
		Sources:         sources,
		Weights:         cfg.Engine.Weights.Resolve(),
		CaseSensitive:   cfg.Engine.CaseSensitive,
		ActivationDelay: cfg.Engine.ActivationDelay(),
		SyncDelay:       cfg.Engine.SyncDelay(),
		MaxCandidates:   cfg.Engine.MaxCandidates,
		Logger:          engineLog,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		log.Info("shutting down", "signal", sig)
		cancel()
		os.Stdin.Close()
	}()

	srv := server.New(engine, cfg.Server, os.Stdin, os.Stdout, serverLog)

	if *watch {
		notifier := config.NewNotifier()
		notifier.Subscribe(func(next config.Config) {
			level := logger.ParseLevel(next.Logging.Level)
			log.SetLevel(level)
			engineLog.SetLevel(level)
			serverLog.SetLevel(level)
			srv.ApplyConfig(next)
			log.Info("config reloaded", "level", next.Logging.Level)
		})
		w, err := config.NewWatcher(*configPath, notifier, log)
		if err != nil {
			log.Warn("config watch unavailable", "err", err)
		} else {
			defer w.Close()
		}
	}

	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Error("server stopped", "err", err)
		return 1
	}
	return 0
}

// buildSources instantiates the configured sources in query order.
func buildSources(cfg config.Config) ([]complete.Source, func(), error) {
	var sources []complete.Source
	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, name := range cfg.Sources.Enabled {
		switch name {
		case "word":
			s, err := word.New(cfg.Sources.Word, logger.New("word", cfg.Logging))
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			sources = append(sources, s)
		case "static":
			sources = append(sources, static.New(cfg.Sources.Static))
		case "script":
			scripts, err := script.Load(cfg.Sources.Script, logger.New("script", cfg.Logging))
			if err != nil {
				cleanup()
				return nil, nil, err
			}
			for _, s := range scripts {
				s := s
				sources = append(sources, s)
				closers = append(closers, s.Close)
			}
		}
	}
	return sources, cleanup, nil
}
