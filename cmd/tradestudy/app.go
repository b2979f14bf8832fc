package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/3star333/tradestudyagent/internal/agent"
	"github.com/3star333/tradestudyagent/internal/analysis"
	"github.com/3star333/tradestudyagent/internal/config"
	"github.com/3star333/tradestudyagent/internal/export"
	"github.com/3star333/tradestudyagent/internal/generate"
	"github.com/3star333/tradestudyagent/internal/llm"
	"github.com/3star333/tradestudyagent/internal/llm/providers"
	"github.com/3star333/tradestudyagent/internal/research"
	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/tool"
	"github.com/3star333/tradestudyagent/internal/tool/builtins"
)

// app wires the configured collaborators for one command invocation.
type app struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        study.Store
	pipeline     *research.Pipeline
	orchestrator *agent.Orchestrator
	generator    *generate.Generator

	closeStore func() error
}

// buildApp loads configuration and constructs the full collaborator graph.
// Missing credentials degrade rather than fail: no model credential means
// stubbed analysis and fallback generation, no search credential means
// placeholder search results, no publishing credential means every
// publish target reports skipped.
func buildApp() (*app, error) {
	cfg, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(globalFlags.configPath())
	if err != nil {
		return nil, err
	}
	if globalFlags.HomeDir != "" {
		cfg.Core.HomeDir = globalFlags.HomeDir
	}
	if globalFlags.IsVerbose() {
		cfg.Core.Debug = true
	}

	logger := newLogger(cfg)

	completer := newCompleter(cfg, logger)

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	var searcher research.Searcher
	if cfg.Research.TavilyAPIKey != "" {
		searcher = research.NewTavilySearcher(cfg.Research.TavilyAPIKey)
	} else {
		logger.Warn("no search credential configured, using placeholder search results")
		searcher = research.NewPlaceholderSearcher()
	}
	fetcher := research.NewHTTPFetcher(&http.Client{Timeout: cfg.Research.FetchTimeout})
	pipeline := research.NewPipeline(searcher, fetcher,
		research.WithCompleter(completer),
		research.WithLogger(logger))

	analyzer := analysis.NewAnalyzer(completer, analysis.WithLogger(logger))

	// Publishing runs unconfigured for now: every target reports skipped
	// until a Google Workspace publisher lands.
	coordinator := export.NewCoordinator(nil, store, export.WithLogger(logger))

	registry := tool.NewRegistry()
	if err := builtins.Register(registry, builtins.Config{
		Store:       store,
		Analyzer:    analyzer,
		Coordinator: coordinator,
		Searcher:    searcher,
		Fetcher:     fetcher,
		Pipeline:    pipeline,
	}); err != nil {
		_ = closeStore()
		return nil, err
	}

	return &app{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		pipeline:     pipeline,
		orchestrator: agent.NewWithResearch(registry, agent.WithLogger(logger)),
		generator: generate.NewGenerator(completer, store, pipeline, analyzer, coordinator,
			generate.WithLogger(logger)),
		closeStore: closeStore,
	}, nil
}

// Close releases held resources.
func (a *app) Close() error {
	if a.closeStore != nil {
		return a.closeStore()
	}
	return nil
}

// newLogger builds the slog logger from the logging config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Core.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// newCompleter creates the configured model provider, or nil when no
// usable credential is configured. A nil completer is valid everywhere
// downstream: analysis stubs, generation falls back, research keeps its
// template summaries.
func newCompleter(cfg *config.Config, logger *slog.Logger) llm.Completer {
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != "ollama" && cfg.LLM.Provider != "mock" {
		logger.Warn("no model credential configured, analysis and generation run on fallbacks",
			slog.String("provider", cfg.LLM.Provider))
		return nil
	}

	completer, err := providers.NewProvider(cfg.LLM)
	if err != nil {
		logger.Warn("model provider unavailable, analysis and generation run on fallbacks",
			slog.String("provider", cfg.LLM.Provider),
			slog.String("error", err.Error()))
		return nil
	}
	return completer
}

// newStore creates the configured trade study store and its closer.
func newStore(cfg *config.Config) (study.Store, func() error, error) {
	if cfg.Database.InMemory {
		return study.NewMemoryStore(), func() error { return nil }, nil
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	s, err := study.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
