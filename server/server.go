package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"osaka-mansion/models"
	"osaka-mansion/services"
	"osaka-mansion/utils"
)

// Server serves the dashboard and its JSON API over one immutable Dataset.
type Server struct {
	ds           *models.Dataset
	insights     *services.InsightService
	sim          *services.Simulator
	logger       *utils.Logger
	exportPrefix string
	port         int
}

// New creates a Server for ds.
func New(ds *models.Dataset, sim *services.Simulator, logger *utils.Logger, exportPrefix string, port int) *Server {
	return &Server{
		ds:           ds,
		insights:     services.NewInsightService(logger),
		sim:          sim,
		logger:       logger,
		exportPrefix: exportPrefix,
		port:         port,
	}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/wards", s.handleWards)
	mux.HandleFunc("GET /api/records", s.handleRecords)
	mux.HandleFunc("GET /api/simulate", s.handleSimulate)
	mux.HandleFunc("GET /api/bands", s.handleBands)
	mux.HandleFunc("GET /api/scatter", s.handleScatter)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	zl := s.logger.Zerolog()
	var h http.Handler = mux
	h = Logger(zl)(h)
	h = Recovery(zl)(h)
	h = RequestID(h)
	return h
}

// Start listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] Dashboard listening on http://localhost%s (%d records)", addr, s.ds.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("[server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
