package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/logger"
)

// Server exposes the review API over the classified partitions.
type Server struct {
	Reviewer *Reviewer
	Log      *logger.Logger
}

func NewServer(reviewer *Reviewer, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{Reviewer: reviewer, Log: log}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")
	api.GET("/summary", s.Summary)
	api.GET("/reload", s.Reload)
	api.GET("/edges/:classification", s.CurrentEdge)
	api.GET("/edges/:classification/:index", s.EdgeAt)
	api.POST("/edges/:classification/navigate", s.Navigate)
	api.GET("/lookup/:classification/:index/:role/:query", s.Lookup)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.Log.Debug("request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status())
	}
}

func (s *Server) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, s.Reviewer.Summary())
}

func (s *Server) Reload(c *gin.Context) {
	if err := s.Reviewer.Reload(); err != nil {
		s.Log.Error("failed to reload edges", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to reload edges"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": s.Reviewer.Summary()})
}

func classificationParam(c *gin.Context) (model.Classification, bool) {
	cl := model.Classification(c.Param("classification"))
	if !cl.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid classification"})
		return "", false
	}
	return cl, true
}

func indexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid index"})
		return 0, false
	}
	return idx, true
}

func (s *Server) CurrentEdge(c *gin.Context) {
	cl, ok := classificationParam(c)
	if !ok {
		return
	}
	idx, edge, found := s.Reviewer.Current(cl)
	s.respondEdge(c, cl, idx, edge, found)
}

func (s *Server) EdgeAt(c *gin.Context) {
	cl, ok := classificationParam(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	if idx >= s.Reviewer.Count(cl) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Edge not found"})
		return
	}
	idx = s.Reviewer.Goto(cl, idx)
	edge, found := s.Reviewer.Edge(cl, idx)
	s.respondEdge(c, cl, idx, edge, found)
}

func (s *Server) respondEdge(c *gin.Context, cl model.Classification, idx int, edge model.ClassifiedEdge, found bool) {
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Edge not found", "total_count": s.Reviewer.Count(cl)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"classification": cl,
		"current_index":  idx,
		"total_count":    s.Reviewer.Count(cl),
		"edge":           edge,
	})
}

type NavigateRequest struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

func (s *Server) Navigate(c *gin.Context) {
	cl, ok := classificationParam(c)
	if !ok {
		return
	}
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	var success bool
	switch req.Action {
	case "next":
		success = s.Reviewer.Next(cl)
	case "prev":
		success = s.Reviewer.Prev(cl)
	case "goto":
		s.Reviewer.Goto(cl, req.Index)
		success = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
		return
	}

	idx, edge, found := s.Reviewer.Current(cl)
	resp := gin.H{"success": success, "current_index": idx, "edge": nil}
	if found {
		resp["edge"] = edge
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) Lookup(c *gin.Context) {
	cl, ok := classificationParam(c)
	if !ok {
		return
	}
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	role := model.Role(c.Param("role"))
	if role != model.RoleSubject && role != model.RoleObject {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid entity type"})
		return
	}

	results, found := s.Reviewer.LookupData(cl, idx, role)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Edge not found"})
		return
	}
	if results == nil {
		results = []model.LookupCandidate{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"query":       c.Param("query"),
		"entity_type": role,
		"count":       len(results),
		"results":     results,
	})
}
