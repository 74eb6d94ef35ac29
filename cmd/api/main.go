// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/synthesize-ai/assistant-platform/internal/chunker"
	"github.com/synthesize-ai/assistant-platform/internal/config"
	"github.com/synthesize-ai/assistant-platform/internal/events"
	"github.com/synthesize-ai/assistant-platform/internal/handler"
	"github.com/synthesize-ai/assistant-platform/internal/index"
	"github.com/synthesize-ai/assistant-platform/internal/llm"
	"github.com/synthesize-ai/assistant-platform/internal/memory"
	"github.com/synthesize-ai/assistant-platform/internal/middleware"
	"github.com/synthesize-ai/assistant-platform/internal/orchestrator"
	"github.com/synthesize-ai/assistant-platform/internal/retrieval"
	"github.com/synthesize-ai/assistant-platform/internal/router"
	"github.com/synthesize-ai/assistant-platform/internal/search"
	"github.com/synthesize-ai/assistant-platform/internal/service"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
	"github.com/synthesize-ai/assistant-platform/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "assistant-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing")
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Initialize LLM client
	var llmClient llm.Client
	switch {
	case cfg.DefaultLLM == "anthropic" && cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	default:
		log.Error("no LLM API key configured")
		os.Exit(1)
	}
	if err != nil {
		log.Error("failed to create LLM client")
		os.Exit(1)
	}

	// Open the document index
	idx, err := index.Open(cfg.DataPath)
	if err != nil {
		log.Error("failed to open document index")
		os.Exit(1)
	}
	defer idx.Close()

	// Connect the turn event publisher (no-op without NATS_URL)
	publisher, err := events.NewPublisher(ctx, events.Config{
		URL:   cfg.NATSURL,
		Token: cfg.NATSToken,
	}, log)
	if err != nil {
		log.Warn("failed to connect to NATS, turn events disabled")
		publisher = events.NopPublisher{}
	}
	defer publisher.Close()

	// Build the retrieval adapters
	searchClient := search.NewTavilyClient(cfg.TavilyAPIKey, cfg.SearchURL, cfg.SearchTimeout)
	searchAdapter := retrieval.NewSearchAdapter(searchClient, llmClient, retrieval.SearchAdapterConfig{
		MaxResults:    cfg.MaxSearchResults,
		SearchTimeout: cfg.SearchTimeout,
		LLMTimeout:    cfg.LLMTimeout,
		Model:         cfg.LLMModel,
		Temperature:   cfg.LLMTemperature,
	}, log)
	docAdapter := retrieval.NewDocumentAdapter(idx, llmClient, retrieval.DocumentAdapterConfig{
		TopK:        cfg.MaxSearchResults,
		Threshold:   cfg.RelevanceThreshold,
		LLMTimeout:  cfg.LLMTimeout,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
	}, log)

	// Build the core workflow
	store := memory.NewStore(cfg.MemoryWindow, cfg.MaxSessions)
	rt := router.New(llmClient, router.Config{
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	}, log)
	orch := orchestrator.New(searchAdapter, docAdapter, llmClient, orchestrator.Config{
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		LLMTimeout:  cfg.LLMTimeout,
	}, log)

	// Initialize services
	splitter := chunker.NewSplitter(chunker.DefaultChunkSize, chunker.DefaultOverlap)
	documentSvc := service.NewDocumentService(idx, splitter, cfg.UploadPath, log)
	assistantSvc := service.NewAssistantService(store, rt, orch, documentSvc.HasDocuments, publisher, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(documentSvc)
	chatHandler := handler.NewChatHandler(assistantSvc, log)
	documentHandler := handler.NewDocumentHandler(documentSvc, log)
	sessionHandler := handler.NewSessionHandler(assistantSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)
		r.Post("/upload", documentHandler.Upload)
		r.Get("/documents/info", documentHandler.Info)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Delete("/{id}", sessionHandler.Delete)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error")
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown")
	}

	log.Info("server stopped")
}
