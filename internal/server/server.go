// Package server is the local viewer: it serves the generated map, the
// media files it references and a small JSON API over the interaction
// controller.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mapmedia/mapview/internal/interaction"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/render"
)

// Config holds viewer server settings.
type Config struct {
	Address     string
	MediaPrefix string
	MediaRoot   string
	Render      render.Options
}

// Server serves one view at a time. SetView swaps it atomically.
type Server struct {
	cfg    Config
	log    *slog.Logger
	access zerolog.Logger
	engine *gin.Engine

	mu   sync.RWMutex
	view *core.View
	ctrl *interaction.Controller
	page []byte
}

// New creates a server. Nothing is listening until Run.
func New(cfg Config, logger *slog.Logger, access zerolog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MediaPrefix == "" {
		cfg.MediaPrefix = "/media"
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{cfg: cfg, log: logger, access: access}
	s.engine = gin.New()
	s.engine.HandleMethodNotAllowed = true
	s.setupRouter(s.engine)
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetView renders view and makes it current. The view's media base URL is
// pointed at this server's media prefix.
func (s *Server) SetView(view *core.View, policy interaction.Policy) error {
	if view == nil {
		return fmt.Errorf("server: nil view")
	}
	served := *view
	served.MediaBaseURL = s.cfg.MediaPrefix
	served.Reindex()

	opts := s.cfg.Render
	opts.Policy = policy
	var buf bytes.Buffer
	if err := render.Render(&buf, &served, opts); err != nil {
		return err
	}

	ctrl := interaction.NewController(&served, policy)

	s.mu.Lock()
	s.view, s.ctrl, s.page = &served, ctrl, buf.Bytes()
	s.mu.Unlock()

	s.log.Info("View loaded", "buildId", served.BuildID, "records", len(served.Records))
	return nil
}

// current returns the loaded view and controller, or nil before SetView.
func (s *Server) current() (*core.View, *interaction.Controller, []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.ctrl, s.page
}

func (s *Server) setupRouter(r *gin.Engine) {
	r.Use(
		gin.CustomRecovery(func(c *gin.Context, err any) {
			s.log.ErrorContext(c.Request.Context(), "panic", "err", err, "stack", string(debug.Stack()))
			c.AbortWithStatus(http.StatusInternalServerError)
		}),
		accessLog(s.access),
	)

	r.GET("/", s.getDocument)
	r.GET("/healthcheck", s.getHealth)

	media := r.Group(s.cfg.MediaPrefix,
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet},
			AllowHeaders:    []string{"Origin", "Range", "Accept"},
			MaxAge:          12 * time.Hour,
		}),
		noCache(),
	)
	media.GET("/*filepath", s.getMedia)

	api := r.Group("/api", gzip.Gzip(gzip.DefaultCompression))
	api.GET("/view", s.getView)
	api.POST("/visibility", s.postVisibility)
	api.POST("/actions", s.postActions)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Run listens on cfg.Address until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Viewer listening", "address", "http://"+s.cfg.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		s.log.Info("Viewer stopped")
		return nil
	}
}
