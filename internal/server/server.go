package server

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/bibalign/internal/core"
	"github.com/agenthands/bibalign/internal/core/model"
	"github.com/agenthands/bibalign/internal/core/reduce"
	"github.com/agenthands/bibalign/internal/core/repr"
	"github.com/agenthands/bibalign/internal/format"
	"github.com/agenthands/bibalign/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	Catalog *core.Catalog
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func NewServer(catalog *core.Catalog, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{Catalog: catalog, Metrics: m, Logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.Health)
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	r.POST("/publications", s.ReducePublications)
	r.POST("/publications/bibtex", s.PublicationsBibtex)
	r.POST("/publications/xml", s.PublicationsXML)
	r.GET("/authors/publications", s.AuthorPublications)
	r.POST("/alignments", s.Align)

	return r
}

// requestLogger tags every request with an id and logs it once done.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		start := time.Now()

		c.Next()

		s.Logger.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "graph": s.Catalog.Driver != nil})
}

type TuplesRequest struct {
	Tuples []model.RelationTuple `json:"tuples" binding:"required"`
	Save   bool                  `json:"save"`
}

type SubjectError struct {
	Subject string `json:"subject"`
	Error   string `json:"error"`
}

// reduceRequest binds a TuplesRequest and reduces it. It writes the error
// response itself and returns ok=false when the handler should stop.
func (s *Server) reduceRequest(c *gin.Context) (pubs []*repr.Publication, failed []SubjectError, ok bool) {
	var req TuplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return nil, nil, false
	}

	results, err := s.Catalog.ReducePublications(c.Request.Context(), req.Tuples)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	failed = []SubjectError{}
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, SubjectError{Subject: res.Subject, Error: res.Err.Error()})
		}
	}
	pubs = reduce.Publications(results)

	if req.Save {
		if err := s.Catalog.SavePublications(c.Request.Context(), pubs); err != nil {
			s.fail(c, "Failed to save publications", err)
			return nil, nil, false
		}
	}
	return pubs, failed, true
}

func (s *Server) ReducePublications(c *gin.Context) {
	pubs, failed, ok := s.reduceRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"publications": pubs, "errors": failed})
}

func (s *Server) PublicationsBibtex(c *gin.Context) {
	pubs, _, ok := s.reduceRequest(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := format.BibtexLibrary(&buf, pubs); err != nil {
		s.fail(c, "Failed to render bibtex", err)
		return
	}
	c.Data(http.StatusOK, "application/x-bibtex; charset=utf-8", buf.Bytes())
}

func (s *Server) PublicationsXML(c *gin.Context) {
	pubs, _, ok := s.reduceRequest(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := format.WriteXML(&buf, pubs); err != nil {
		s.fail(c, "Failed to render xml", err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}

func (s *Server) AuthorPublications(c *gin.Context) {
	author, err := model.ParseDblpAuthID(c.Query("pid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stored, err := s.Catalog.StoredPublications(c.Request.Context(), author)
	if err != nil {
		s.fail(c, "Failed to read publications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"author": author.PID(), "publications": stored})
}

// AlignRequest aligns either a dblp author against their OpenReview notes,
// fetched from the configured sources, or the notes and tuples supplied.
type AlignRequest struct {
	Author       string                `json:"author"`
	OpenReviewID string                `json:"openreview_id"`
	Notes        []model.Note          `json:"notes"`
	Tuples       []model.RelationTuple `json:"tuples"`
	Save         bool                  `json:"save"`
}

type AlignResponse struct {
	RunID        string         `json:"run_id"`
	Author       string         `json:"author,omitempty"`
	OpenReviewID string         `json:"openreview_id,omitempty"`
	Summary      format.Summary `json:"summary"`
}

func (s *Server) Align(c *gin.Context) {
	var req AlignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ctx := c.Request.Context()

	var run *core.AlignmentRun
	if req.Author != "" {
		author, err := model.ParseDblpAuthID(req.Author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		run, err = s.Catalog.AlignAuthor(ctx, author, req.OpenReviewID)
		if err != nil {
			s.fail(c, "Failed to align author", err)
			return
		}
	} else {
		results, err := s.Catalog.ReducePublications(ctx, req.Tuples)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		run = s.Catalog.Align(model.FilterValidNotes(req.Notes), reduce.Publications(results))
	}

	if req.Save {
		if err := s.Catalog.SaveAlignment(ctx, run); err != nil {
			s.fail(c, "Failed to save alignment", err)
			return
		}
	}

	c.JSON(http.StatusOK, AlignResponse{
		RunID:        run.ID,
		Author:       run.Author,
		OpenReviewID: run.OpenReviewID,
		Summary:      format.Summarize(run.Alignments),
	})
}

func (s *Server) fail(c *gin.Context, msg string, err error) {
	s.Logger.Error(msg, "error", err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNoGraph), errors.Is(err, core.ErrNoSource):
		status = http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNoProfile):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": msg})
}
