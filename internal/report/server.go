// Package report serves the read-only reporting API over the stored
// authorizations, messages and analysis results.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/database"
	"github.com/mentalx/mentalxbot/internal/logger"
)

// Reader is the read side of database.Store used by the API.
type Reader interface {
	Ping(ctx context.Context) error
	GetUserSummaries(ctx context.Context) ([]*database.UserSummary, error)
	GetAuthorization(ctx context.Context, userID int64) (*database.Authorization, error)
	GetUserMessages(ctx context.Context, userID int64) ([]*database.Message, error)
	GetTextAnalysis(ctx context.Context, userID int64) (*database.TextAnalysis, error)
	GetRiskScore(ctx context.Context, userID int64) (*database.RiskScore, error)
	GetDailyCounts(ctx context.Context, userID int64) ([]*database.DailyCount, error)
	GetDistribution(ctx context.Context, column database.DemographicColumn) ([]database.DistributionEntry, error)
}

const (
	readHeaderTimeout = 10 * time.Second
	requestTimeout    = 15 * time.Second
)

// Server is the reporting HTTP API.
type Server struct {
	cfg    config.ReportConfig
	reader Reader
	log    *slog.Logger
	router *gin.Engine
}

// New builds the API and its routes.
func New(cfg config.ReportConfig, reader Reader, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		cfg:    cfg,
		reader: reader,
		log:    log.With("component", "report_api"),
	}
	s.router = s.newRouter()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(requestID(), requestLogger(s.log), gin.Recovery())

	corsCfg := cors.Config{
		AllowOrigins:  s.cfg.AllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Content-Type", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", s.health)

	api := router.Group("/api/v1")
	api.GET("/users", s.listUsers)
	api.GET("/users/:id", s.getUser)
	api.GET("/distribution", s.distribution)

	return router
}

// Run serves until ctx is cancelled, then shuts down within the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Reporting API listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("reporting API stopped: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down reporting API...")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.DefaultReportShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("reporting API shutdown: %w", err)
	}
	s.log.Info("Reporting API stopped.")
	return nil
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
