package rest

import (
	"context"
	"net/http"

	core_port "github.com/konomissira/missing-records-api/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(port string,
	healthHandlers *HealthHandler,
	batchHandlers *BatchHandler,
	recordHandlers *RecordHandler,
	analysisHandlers *AnalysisHandler,
	baseLogger core_port.LoggerPort) *Server {

	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		AllowCredentials: false,
	}))

	r.Get("/", healthHandlers.Root)
	r.Get("/health", healthHandlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/batches", batchHandlers.CreateBatch)
		r.Get("/batches", batchHandlers.ListBatches)
		r.Get("/batches/{batchID}", batchHandlers.GetBatch)
		r.Delete("/batches/{batchID}", batchHandlers.DeleteBatch)

		r.Post("/records", recordHandlers.CreateRecord)
		r.Get("/records", recordHandlers.GetRecords)
		r.Post("/records/bulk", recordHandlers.BulkCreateRecords)
		r.Get("/records/batch/{batchID}", recordHandlers.GetRecordsByBatch)
		r.Get("/records/batch/{batchID}/status/{status}", recordHandlers.GetRecordsByBatchAndStatus)
		r.Delete("/records/batch/{batchID}", recordHandlers.PurgeRecords)

		// аналитика по партии
		r.Get("/analysis/missing/{batchID}", analysisHandlers.GetMissingRecords)
		r.Get("/analysis/status/{batchID}", analysisHandlers.GetProcessingStatus)
		r.Get("/analysis/statistics/{batchID}", analysisHandlers.GetBatchStatistics)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    ":" + port,
			Handler: r,
		},
		logger: baseLogger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting REST server", core_port.Fields{"address": s.httpServer.Addr})
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST server...", nil)
	return s.httpServer.Shutdown(ctx)
}
