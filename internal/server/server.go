// Package server provides the HTTP dashboard API over the session cache
// and the post-scheduling provider.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/publish"
	"github.com/jonathan/content-agent/internal/types"
)

// Store is the read surface the dashboard needs. *db.DB satisfies it.
type Store interface {
	pipeline.Store

	ListSessions(ctx context.Context, limit int) ([]types.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
	GetComposedPost(ctx context.Context, postID uuid.UUID) (*types.ComposedPost, error)
	Ping(ctx context.Context) error
}

// Publisher is the scheduling-provider surface. *publish.Client satisfies it.
type Publisher interface {
	CreateDraft(ctx context.Context, req publish.DraftRequest) (*publish.Draft, error)
	RecentlyScheduled(ctx context.Context, contentFilter string) ([]publish.Draft, error)
	RecentlyPublished(ctx context.Context, contentFilter string) ([]publish.Draft, error)
}

// Server holds the dashboard's dependencies.
type Server struct {
	store     Store
	publisher Publisher
}

// New creates a server over the given store. publisher may be nil when no
// scheduling credential is configured; publish routes then return 503.
func New(store Store, publisher Publisher) *Server {
	return &Server{store: store, publisher: publisher}
}

// Router builds the gin engine with all dashboard routes.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.handleHealth)

	api := r.Group("/api/v1")
	{
		api.GET("/sessions", s.handleListSessions)
		api.GET("/sessions/:id", s.handleGetSession)
		api.DELETE("/sessions/:id", s.handleDeleteSession)
		api.GET("/sessions/:id/research", s.handleSessionResearch)
		api.GET("/sessions/:id/social", s.handleSessionSocial)
		api.GET("/sessions/:id/distillation", s.handleSessionDistillation)
		api.GET("/sessions/:id/posts", s.handleSessionPosts)

		api.POST("/posts/:post_id/publish", s.handlePublishPost)
		api.GET("/drafts/scheduled", s.handleScheduledDrafts)
		api.GET("/drafts/published", s.handlePublishedDrafts)
	}

	return r
}

// Run serves the API until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.InfoWithFields("dashboard API listening", logger.Fields{"addr": addr})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serving dashboard API: %w", err)
	case sig := <-quit:
		logger.InfoWithFields("shutting down", logger.Fields{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down dashboard API: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
