package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonathan/content-agent/internal/compose"
	"github.com/jonathan/content-agent/internal/provider"
	"github.com/jonathan/content-agent/internal/publish"
)

// publishRequest is the dashboard's publish payload. ScheduleDate follows
// the same convention as the provider: empty, "next-free-slot", or RFC 3339.
type publishRequest struct {
	Threadify          bool   `json:"threadify"`
	Share              bool   `json:"share"`
	ScheduleDate       string `json:"schedule_date"`
	AutoRetweetEnabled bool   `json:"auto_retweet_enabled"`
	AutoPlugEnabled    bool   `json:"auto_plug_enabled"`
}

func (s *Server) handlePublishPost(c *gin.Context) {
	if s.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing is not configured"})
		return
	}

	postID, err := uuid.Parse(c.Param("post_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := s.store.GetComposedPost(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if compose.IsErrorPost(post) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "post carries a composition failure, not publishable"})
		return
	}

	draft, err := s.publisher.CreateDraft(c.Request.Context(), publish.DraftRequest{
		Content:            post.Body,
		Threadify:          req.Threadify,
		Share:              req.Share,
		ScheduleDate:       req.ScheduleDate,
		AutoRetweetEnabled: req.AutoRetweetEnabled,
		AutoPlugEnabled:    req.AutoPlugEnabled,
	})
	if err != nil {
		s.writeProviderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

func (s *Server) handleScheduledDrafts(c *gin.Context) {
	s.listDrafts(c, func(filter string) ([]publish.Draft, error) {
		return s.publisher.RecentlyScheduled(c.Request.Context(), filter)
	})
}

func (s *Server) handlePublishedDrafts(c *gin.Context) {
	s.listDrafts(c, func(filter string) ([]publish.Draft, error) {
		return s.publisher.RecentlyPublished(c.Request.Context(), filter)
	})
}

func (s *Server) listDrafts(c *gin.Context, fetch func(string) ([]publish.Draft, error)) {
	if s.publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing is not configured"})
		return
	}

	drafts, err := fetch(c.Query("content_filter"))
	if err != nil {
		s.writeProviderError(c, err)
		return
	}
	if drafts == nil {
		drafts = []publish.Draft{}
	}
	c.JSON(http.StatusOK, drafts)
}

// writeProviderError maps provider failure kinds onto dashboard status
// codes. Rate limits pass the provider's retry hint through to the caller.
func (s *Server) writeProviderError(c *gin.Context, err error) {
	switch provider.KindOf(err) {
	case provider.KindRateLimited:
		retryAfter, _ := provider.RetryAfter(err)
		c.Header("Retry-After", formatSeconds(retryAfter))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "provider rate limit",
			"retry_after_seconds": int(retryAfter.Seconds()),
		})
	case provider.KindAuth:
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider rejected credential"})
	case provider.KindNetwork, provider.KindMalformed:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds()))
}
