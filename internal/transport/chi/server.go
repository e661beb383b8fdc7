// Package chi exposes the external knowledge API over HTTP: the retrieval
// endpoint the host platform calls, plus the management surface for
// knowledge bases and chunks.
package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shackdown/kbridge/internal/domain"
	"github.com/shackdown/kbridge/internal/metrics"
	healthuc "github.com/shackdown/kbridge/internal/usecase/health"
	ingestuc "github.com/shackdown/kbridge/internal/usecase/ingest"
	knowledgeuc "github.com/shackdown/kbridge/internal/usecase/knowledge"
	retrievaluc "github.com/shackdown/kbridge/internal/usecase/retrieval"
)

// Server wires the usecase services to the HTTP surface.
type Server struct {
	retrieval     *retrievaluc.Service
	knowledge     *knowledgeuc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	retrieval *retrievaluc.Service,
	knowledge *knowledgeuc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		retrieval: retrieval,
		knowledge: knowledge,
		ingest:    ingest,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrKnowledgeNotFound, http.StatusNotFound, codeKnowledgeNotFound),
		sentinelHandler(domain.ErrChunkNotFound, http.StatusNotFound, codeChunkNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeAlreadyExists),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, codeInvalidRequest),
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeInvalidRequest),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
	}
	return s
}

// Router builds the chi router with the full middleware stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := gochi.NewRouter()

	r.Use(jsonRecoverer(s.logger))
	r.Use(chimw.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Post("/retrieval", s.Retrieval)

	r.Route("/v1/knowledge", func(r gochi.Router) {
		r.Post("/", s.CreateKnowledge)
		r.Get("/", s.ListKnowledge)
		r.Route("/{knowledgeID}", func(r gochi.Router) {
			r.Get("/", s.GetKnowledge)
			r.Delete("/", s.DeleteKnowledge)
			r.Post("/chunks", s.BatchUpsertChunks)
			r.Put("/chunks/{chunkID}", s.UpsertChunk)
			r.Delete("/chunks/{chunkID}", s.DeleteChunk)
		})
	})

	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)

	return r
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
