package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonathan/content-agent/internal/pipeline"
	"github.com/jonathan/content-agent/internal/types"
)

func (s *Server) handleListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	sessions, err := s.store.ListSessions(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sessions == nil {
		sessions = []types.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) handleGetSession(c *gin.Context) {
	session, ok := s.sessionFromPath(c)
	if !ok {
		return
	}

	stages, err := pipeline.StageStatus(c.Request.Context(), s.store, session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "stages": stages})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	session, ok := s.sessionFromPath(c)
	if !ok {
		return
	}
	if err := s.store.DeleteSession(c.Request.Context(), session.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSessionResearch(c *gin.Context) {
	session, ok := s.sessionFromPath(c)
	if !ok {
		return
	}
	records, err := s.store.GetResearchResults(c.Request.Context(), session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []types.ResearchRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleSessionSocial(c *gin.Context) {
	session, ok := s.sessionFromPath(c)
	if !ok {
		return
	}
	records, err := s.store.GetSocialResults(c.Request.Context(), session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if records == nil {
		records = []types.SocialRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleSessionDistillation(c *gin.Context) {
	session, ok := s.sessionFromPath(c)
	if !ok {
		return
	}
	dist, err := s.store.GetLatestDistillation(c.Request.Context(), session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if dist == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no distillation for session"})
		return
	}
	c.JSON(http.StatusOK, dist)
}

func (s *Server) handleSessionPosts(c *gin.Context) {
	session, ok := s.sessionFromPath(c)
	if !ok {
		return
	}
	posts, err := s.store.GetComposedPosts(c.Request.Context(), session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if posts == nil {
		posts = []types.ComposedPost{}
	}
	c.JSON(http.StatusOK, posts)
}

// sessionFromPath resolves the :id path param to a stored session,
// writing the error response itself when resolution fails.
func (s *Server) sessionFromPath(c *gin.Context) (*types.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return nil, false
	}
	session, err := s.store.GetSession(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return session, true
}
