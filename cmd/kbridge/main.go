package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shackdown/kbridge/internal/config"
	"github.com/shackdown/kbridge/internal/db"
	dbRedis "github.com/shackdown/kbridge/internal/db/redis"
	"github.com/shackdown/kbridge/internal/domain"
	logpkg "github.com/shackdown/kbridge/internal/logger"
	"github.com/shackdown/kbridge/internal/metrics"
	chunkrepo "github.com/shackdown/kbridge/internal/repository/chunk"
	"github.com/shackdown/kbridge/internal/repository/embcache"
	knowledgerepo "github.com/shackdown/kbridge/internal/repository/knowledge"
	searchrepo "github.com/shackdown/kbridge/internal/repository/search"
	chiTransport "github.com/shackdown/kbridge/internal/transport/chi"
	openaiEmb "github.com/shackdown/kbridge/internal/transport/openai"
	embeddinguc "github.com/shackdown/kbridge/internal/usecase/embedding"
	healthuc "github.com/shackdown/kbridge/internal/usecase/health"
	ingestuc "github.com/shackdown/kbridge/internal/usecase/ingest"
	knowledgeuc "github.com/shackdown/kbridge/internal/usecase/knowledge"
	retrievaluc "github.com/shackdown/kbridge/internal/usecase/retrieval"
	"github.com/shackdown/kbridge/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting kbridge API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register Prometheus metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	// Build embedder chains. Documents and queries may carry different
	// instruction prefixes, the rest of the chain is shared configuration.
	docEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, store, logger)
	queryEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, store, logger)
	logger.Info("Embedders created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	vectorDim := cfg.Embedding.Dimensions
	if vectorDim == 0 {
		vectorDim = domain.DefaultVectorDim
	}

	// Create repositories
	kbRepo := knowledgerepo.New(store, vectorDim).WithHNSW(knowledgerepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	chRepo := chunkrepo.New(store)
	seRepo := searchrepo.New(store)

	// Create use case services
	kbSvc := knowledgeuc.New(kbRepo, chRepo, vectorDim)
	ingestSvc := ingestuc.New(chRepo, kbRepo, docEmbedder).
		WithMaxBatchSize(cfg.Index.MaxBatchSize)
	retrievalSvc := retrievaluc.New(seRepo, kbRepo, queryEmbedder)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(queryEmbedder))

	server := chiTransport.NewServer(retrievalSvc, kbSvc, ingestSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	embCfg config.EmbeddingConfig,
	instruction string,
	store db.Store,
	logger *zap.Logger,
) domain.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     embCfg.APIKey,
		BaseURL:    embCfg.BaseURL,
		Model:      embCfg.Model,
		Dimensions: embCfg.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})

	// Cached
	var embedder domain.Embedder = base
	if store != nil {
		ttl := time.Duration(embCfg.CacheTTLHours) * time.Hour
		embedder = embcache.New(base, store, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	// Instrumented (logging + API batch chunking)
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, "openai", embCfg.Model, logger)

	// Instruction prefix goes outermost so the cache key includes it
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
