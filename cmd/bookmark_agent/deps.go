package main

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/jonathan/bookmark-organizer/internal/classify"
	"github.com/jonathan/bookmark-organizer/internal/config"
	"github.com/jonathan/bookmark-organizer/internal/llm"
	"github.com/jonathan/bookmark-organizer/internal/observability"
	"github.com/jonathan/bookmark-organizer/internal/visualize"
)

const defaultOllamaEmbeddingModel = "nomic-embed-text"

// Factories are package variables so tests can run commands without a real model.
var (
	newLLMClient = llm.NewClient
	newEmbedder  = llm.NewEmbedder
)

// loadSettings resolves the effective configuration from --config, the environment and defaults.
func loadSettings() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return observability.NewLogger(observability.LoggerConfig{
		LogFile: cfg.LogFile,
		Level:   cfg.LogLevel,
	})
}

// llmConfig maps application settings onto the model configuration.
func llmConfig(cfg config.Config) *llm.Config {
	lc := llm.DefaultConfig()
	if cfg.Model != "" {
		lc = lc.WithModel(llm.TierLite, cfg.Model)
	}
	lc.MaxOutputTokens = int32(cfg.MaxOutputTokens)
	lc.EmbeddingProvider = llm.Provider(cfg.EmbeddingProvider)
	lc.EmbeddingModel = cfg.EmbeddingModel
	lc.OllamaHost = cfg.OllamaHost
	if lc.EmbeddingProvider == llm.ProviderOllama && cfg.EmbeddingModel == config.DefaultEmbeddingModel {
		lc.EmbeddingModel = defaultOllamaEmbeddingModel
	}
	return lc
}

// organizerDeps are the collaborators built for one command invocation.
type organizerDeps struct {
	classifier *classify.Classifier
	plotter    *visualize.Adapter // nil when visualization is off
	closers    []io.Closer
}

func (d *organizerDeps) Close() {
	for _, c := range d.closers {
		c.Close() //nolint:errcheck
	}
}

func buildDeps(ctx context.Context, cfg config.Config, logger *zap.Logger, withPlot bool) (*organizerDeps, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable (or api_key in the config file) is required")
	}

	lc := llmConfig(cfg)
	client, err := newLLMClient(ctx, lc, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	deps := &organizerDeps{
		classifier: classify.New(client, classify.Options{
			Tier:            llm.TierLite,
			MaxOutputTokens: lc.MaxOutputTokens,
			Logger:          logger,
		}),
		closers: []io.Closer{client},
	}

	if withPlot {
		embedder, err := newEmbedder(ctx, lc, cfg.APIKey)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		if c, ok := embedder.(io.Closer); ok {
			deps.closers = append(deps.closers, c)
		}
		deps.plotter = visualize.NewAdapter(embedder, logger)
	}

	return deps, nil
}
