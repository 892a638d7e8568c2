package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/spends/internal/config"
	"github.com/Veraticus/spends/internal/engine"
	"github.com/Veraticus/spends/internal/llm"
	"github.com/Veraticus/spends/internal/metrics"
	"github.com/Veraticus/spends/internal/parser"
	"github.com/Veraticus/spends/internal/storage"
)

// loadConfig returns the validated configuration from the global viper.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// createGenerator builds the configured text generation backend. A nil
// generator means the rule-based tier is used on its own.
func createGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, error) {
	gen, err := llm.NewGenerator(ctx, llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		RateLimit:   cfg.LLM.RateLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	if gen == nil {
		slog.Debug("No LLM provider configured, using rule-based extraction only")
	}
	return gen, nil
}

// newRules builds the rule-based parser in the configured time zone.
func newRules(cfg *config.Config) (*parser.Parser, error) {
	loc, err := cfg.Processing.TimeLocation()
	if err != nil {
		return nil, err
	}
	return parser.New(parser.WithLocation(loc), parser.WithLogger(slog.Default())), nil
}

// newExtractor composes the LLM tier over rules, or returns rules alone
// when gen is nil. The returned func releases the extractor.
func newExtractor(cfg *config.Config, gen llm.TextGenerator, rules *parser.Parser, rec *metrics.Recorder) (*llm.Extractor, func()) {
	if gen == nil {
		return nil, func() {}
	}
	ext := llm.NewExtractor(gen, rules, llm.ExtractorOptions{
		Logger:       slog.Default(),
		Metrics:      rec,
		Timeout:      cfg.LLM.Timeout,
		ImageTimeout: cfg.LLM.ImageTimeout,
		CacheTTL:     cfg.LLM.CacheTTL,
	})
	return ext, ext.Close
}

// orchestratorOptions maps the processing settings onto engine options.
func orchestratorOptions(cfg *config.Config, rec *metrics.Recorder) engine.Options {
	opts := engine.DefaultOptions()
	opts.Logger = slog.Default()
	opts.Metrics = rec
	opts.ChunkSize = cfg.Processing.ChunkSize
	opts.MinJitter = cfg.Processing.MinJitter
	opts.MaxJitter = cfg.Processing.MaxJitter
	opts.ChunkPause = cfg.Processing.ChunkPause
	opts.ReadyTimeout = cfg.LLM.ReadyTimeout
	opts.GenerationTimeout = cfg.LLM.Timeout
	opts.CacheTTL = cfg.LLM.CacheTTL
	return opts
}
