// =============================================================================
// Accurate XML Converter - HTTP Server
// =============================================================================
//
// This module exposes the conversion workflow over HTTP for browser
// front-ends. A client creates a session, uploads a sample Accurate export
// so the branch code can be detected, then uploads spreadsheets and receives
// the generated XML as a download.
//
// ROUTES:
//   GET    /api/health
//   POST   /api/sessions
//   GET    /api/sessions/:id
//   DELETE /api/sessions/:id
//   POST   /api/sessions/:id/branch-code   (multipart "file")
//   POST   /api/sessions/:id/convert       (multipart "file", form "category")
//
// Sessions live in memory only; restarting the server forgets them.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/accurate-xml-converter/internal/config"
	"github.com/ginjaninja78/accurate-xml-converter/internal/converter"
	"github.com/ginjaninja78/accurate-xml-converter/internal/logging"
	"github.com/ginjaninja78/accurate-xml-converter/internal/session"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// Server serves the conversion API.
type Server struct {
	cfg       *config.Config
	sessions  *session.Store
	converter *converter.Converter
	logger    logging.Logger
	engine    *gin.Engine
}

// New builds the server and registers its routes.
//
// PARAMETERS:
//   - cfg: Application configuration.
//   - logger: Request and conversion logs; nil discards them.
//   - opts: Passed through to converter.New.
//
// RETURNS:
//   - The Server, or an error when the converter cannot be created.
func New(cfg *config.Config, logger logging.Logger, opts ...converter.Option) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	conv, err := converter.New(cfg, logger, opts...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       cfg,
		sessions:  session.NewStore(cfg.Server.SessionIdleTimeout),
		converter: conv,
		logger:    logger,
	}
	s.engine = s.newEngine()
	return s, nil
}

// Handler returns the HTTP handler, for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store {
	return s.sessions
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", logging.F(logging.FieldAddr, s.cfg.Server.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// =============================================================================
// ROUTING
// =============================================================================

func (s *Server) newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))
	r.MaxMultipartMemory = s.cfg.Server.MaxUploadBytes()

	if origins := s.cfg.Server.AllowedOrigins; len(origins) > 0 {
		corsConfig := cors.Config{
			AllowMethods:  []string{"GET", "POST", "DELETE"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
			MaxAge:        12 * time.Hour,
		}
		if containsWildcard(origins) {
			corsConfig.AllowAllOrigins = true
		} else {
			corsConfig.AllowOrigins = origins
		}
		r.Use(cors.New(corsConfig))
	}

	s.registerRoutes(r)
	return r
}

func (s *Server) registerRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	sessions := api.Group("/sessions")
	sessions.POST("", s.createSession)
	sessions.GET("/:id", s.getSession)
	sessions.DELETE("/:id", s.deleteSession)

	uploads := sessions.Group("/:id")
	uploads.Use(limitBody(s.cfg.Server.MaxUploadBytes()))
	uploads.POST("/branch-code", s.detectBranchCode)
	uploads.POST("/convert", s.convert)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

// requestLogger logs one line per request through the application logger.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logging.Field{
			logging.F(logging.FieldMethod, c.Request.Method),
			logging.F(logging.FieldPath, c.Request.URL.Path),
			logging.F(logging.FieldStatus, c.Writer.Status()),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Debug("HTTP request", fields...)
		}
	}
}

// limitBody caps the request body at limit bytes.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
