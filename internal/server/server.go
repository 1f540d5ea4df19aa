// Package server provides the serve-mode HTTP API: asynchronous render jobs
// over the flattening pipeline, with job status polling and a view endpoint
// serving the finished output.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoflat/internal/config"
	"github.com/fyrsmithlabs/repoflat/internal/flatten"
	"github.com/fyrsmithlabs/repoflat/internal/metrics"
	"github.com/fyrsmithlabs/repoflat/internal/render"
)

// RenderMode selects the output encoding for a render job.
type RenderMode string

const (
	ModeInteractive RenderMode = "interactive"
	ModeTranscript  RenderMode = "transcript"
)

func parseMode(s string) (RenderMode, error) {
	switch RenderMode(s) {
	case ModeInteractive, "":
		return ModeInteractive, nil
	case ModeTranscript:
		return ModeTranscript, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Flattener produces a flattened document for a repository reference.
// Implemented by flatten.Pipeline.
type Flattener interface {
	Flatten(ctx context.Context, ref flatten.RepoRef) (*flatten.Document, error)
}

// Server provides HTTP endpoints for repoflat serve mode.
type Server struct {
	echo      *echo.Echo
	pipeline  Flattener
	jobs      *JobStore
	logger    *zap.Logger
	cfg       config.ServerConfig
	transcpt  render.TranscriptOptions
	renderCtx context.Context
}

// NewServer creates the serve-mode HTTP server.
func NewServer(pipeline Flattener, cfg config.ServerConfig, flattenCfg config.FlattenConfig, logger *zap.Logger) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:      e,
		pipeline:  pipeline,
		jobs:      NewJobStore(cfg.JobTTL.Duration()),
		logger:    logger,
		cfg:       cfg,
		transcpt:  render.TranscriptOptions{SkippedPlaceholders: flattenCfg.SkippedPlaceholders},
		renderCtx: context.Background(),
	}

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/view/:id", s.handleView)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/render", s.handleRender)
	v1.GET("/render/:id", s.handleStatus)
}

// RenderRequest is the request body for POST /api/v1/render.
type RenderRequest struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Ref   string `json:"ref"`
	Mode  string `json:"mode"`
}

// RenderResponse is the response body for POST /api/v1/render.
type RenderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// StatusResponse is the response body for GET /api/v1/render/:id.
type StatusResponse struct {
	ID       string `json:"id"`
	Repo     string `json:"repo"`
	Mode     string `json:"mode"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Included int    `json:"included_files,omitempty"`
	Skipped  int    `json:"skipped_files,omitempty"`
	ViewURL  string `json:"view_url,omitempty"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleRender accepts a render request, registers a job and runs the render
// in the background. The response carries the job id for status polling.
func (s *Server) handleRender(c echo.Context) error {
	var req RenderRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid render request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ref := flatten.RepoRef{Owner: req.Owner, Name: req.Name, Ref: req.Ref}
	if err := ref.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	job := s.jobs.Create(ref, mode)
	go s.runJob(job.ID, ref, mode)

	return c.JSON(http.StatusAccepted, RenderResponse{ID: job.ID, Status: string(StatusPending)})
}

// runJob executes one render to completion. Detached from the request context
// so clients can disconnect and poll later.
func (s *Server) runJob(id string, ref flatten.RepoRef, mode RenderMode) {
	s.jobs.SetRunning(id)
	start := time.Now()

	doc, err := s.pipeline.Flatten(s.renderCtx, ref)
	if err != nil {
		metrics.Renders.WithLabelValues(string(mode), "error").Inc()
		s.logger.Error("render job failed",
			zap.String("job_id", id),
			zap.String("repo", ref.String()),
			zap.Error(err),
		)
		s.jobs.Fail(id, err)
		return
	}

	output, err := s.encode(doc, mode)
	if err != nil {
		metrics.Renders.WithLabelValues(string(mode), "error").Inc()
		s.jobs.Fail(id, err)
		return
	}

	metrics.Renders.WithLabelValues(string(mode), "ok").Inc()
	s.logger.Info("render job complete",
		zap.String("job_id", id),
		zap.String("repo", ref.String()),
		zap.Int("included", doc.Stats.Included),
		zap.Duration("duration", time.Since(start)),
	)
	s.jobs.Complete(id, output, doc.Stats)
}

// encode renders the document in the requested mode.
func (s *Server) encode(doc *flatten.Document, mode RenderMode) (string, error) {
	switch mode {
	case ModeTranscript:
		return render.Transcript(doc, s.transcpt), nil
	case ModeInteractive:
		model, err := render.Interactive(doc)
		if err != nil {
			return "", err
		}
		var buf strings.Builder
		if err := render.WritePage(&buf, model); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("unknown mode %q", mode)
	}
}

func (s *Server) handleStatus(c echo.Context) error {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown job")
	}

	resp := StatusResponse{
		ID:     job.ID,
		Repo:   job.Ref.String(),
		Mode:   string(job.Mode),
		Status: string(job.Status),
		Error:  job.Error,
	}
	if job.Status == StatusComplete {
		resp.Included = job.Stats.Included
		resp.Skipped = job.Stats.Total - job.Stats.Included
		resp.ViewURL = "/view/" + job.ID
	}
	return c.JSON(http.StatusOK, resp)
}

// handleView serves a finished job's rendered output with the content type
// matching its mode.
func (s *Server) handleView(c echo.Context) error {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown job")
	}

	switch job.Status {
	case StatusComplete:
	case StatusError:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, job.Error)
	default:
		return echo.NewHTTPError(http.StatusConflict, "render not finished")
	}

	if job.Mode == ModeTranscript {
		return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(job.Output))
	}
	return c.HTML(http.StatusOK, job.Output)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
