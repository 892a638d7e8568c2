// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Veraticus/spends/internal/assistant"
	"github.com/Veraticus/spends/internal/engine"
	"github.com/Veraticus/spends/internal/llm"
	"github.com/Veraticus/spends/internal/metrics"
	"github.com/Veraticus/spends/internal/model"
)

// Store is everything the HTTP surface reads and writes.
type Store interface {
	engine.Store
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	GetSummary(ctx context.Context) (model.Summary, error)
	RawQuery(ctx context.Context, query string) ([]map[string]any, error)
}

// Config wires the server's collaborators. Generator may be nil, in which
// case only the rule-based tier is served and /api/ask is unavailable.
type Config struct {
	Store        Store
	Orchestrator *engine.Orchestrator
	Rules        engine.Extractor
	Generator    llm.TextGenerator
	Messages     func() []string
	Metrics      *metrics.Recorder
	Logger       *slog.Logger
	Timeout      time.Duration // Per model call
}

// Server is the fiber application plus the background runs it started.
type Server struct {
	app       *fiber.App
	cfg       Config
	extractor engine.Extractor
	assistant *assistant.Assistant
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	runs      sync.WaitGroup
}

// New builds the server and registers its routes.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		extractor: cfg.Rules,
	}

	if cfg.Generator != nil {
		s.extractor = llm.NewExtractor(cfg.Generator, cfg.Rules, llm.ExtractorOptions{
			Logger:  logger,
			Metrics: cfg.Metrics,
			Timeout: cfg.Timeout,
		})
		s.assistant = assistant.New(cfg.Generator, cfg.Store, cfg.Timeout, logger)
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "spends",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	if cfg.Metrics != nil {
		s.app.Use(cfg.Metrics.RegisterFiber(s.app, "/metrics"))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/health", s.health())

	api := s.app.Group("/api")
	api.Post("/parse", s.parse())
	api.Post("/process", s.process())
	api.Get("/status", s.status())
	api.Post("/status/reset", s.reset())
	api.Get("/transactions", s.transactions())
	api.Get("/summary", s.summary())
	api.Post("/query", s.query())
	api.Post("/ask", s.ask())
}

// App exposes the fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("Starting HTTP server", "addr", addr)
	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Shutdown cancels any active run, waits for it and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for batch run: %w", ctx.Err())
	}

	if closer, ok := s.extractor.(interface{ Close() }); ok {
		closer.Close()
	}
	return s.app.ShutdownWithContext(ctx)
}

// startRun launches a batch run in the background.
func (s *Server) startRun(messages []string) {
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		err := s.cfg.Orchestrator.ProcessAll(s.ctx, messages, s.cfg.Generator)
		switch {
		case errors.Is(err, engine.ErrAlreadyRunning):
			s.logger.Warn("Batch run request raced an active run")
		case errors.Is(err, context.Canceled):
			s.logger.Info("Batch run canceled")
		case err != nil:
			s.logger.Error("Batch run failed", "error", err)
		}
	}()
}
