// Package admin serves a read-only HTTP view of a running station.
package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/shuttlectl/internal/auth"
	"github.com/danmuck/shuttlectl/internal/observability"
	"github.com/danmuck/shuttlectl/internal/station"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const version = "0.1.0"

// StatusSource is anything that can report a station snapshot.
type StatusSource interface {
	Snapshot() station.Snapshot
}

type Server struct {
	ID      string
	Addr    string
	Started time.Time

	source  StatusSource
	metrics *observability.StationMetrics
	guard   auth.Validator
	router  *gin.Engine
}

// New builds the admin router. A nil guard leaves /status and /metrics open.
func New(id, addr string, source StatusSource, metrics *observability.StationMetrics, logger zerolog.Logger, corsOrigins []string, guard auth.Validator) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger, id))
	if metrics != nil {
		r.Use(observability.RequestMetricsMiddleware(metrics))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(corsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		ID:      id,
		Addr:    addr,
		Started: time.Now(),
		source:  source,
		metrics: metrics,
		guard:   guard,
		router:  r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Started).String(),
			"station": s.ID,
			"version": version,
		})
	})

	s.router.GET("/ready", func(c *gin.Context) {
		snap := s.source.Snapshot()
		ready := snap.Signals.StationOpen && snap.Phase != station.PhaseHalted
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":   ready,
			"phase":   snap.Phase,
			"station": s.ID,
		})
	})

	private := s.router.Group("/")
	if s.guard != nil {
		private.Use(requireToken(s.guard))
	}
	private.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.source.Snapshot())
	})

	if s.metrics != nil {
		handler := promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})
		private.GET("/metrics", gin.WrapH(handler))
	}
}

func requireToken(v auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err == nil {
			err = v.Validate(token)
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}

// Serve listens on Addr until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
