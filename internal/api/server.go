// Package api serves the derived dashboard views over HTTP. Rendering
// stays with the consumer; this surface only hands out projections.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"watchdeck/internal/core"
	"watchdeck/internal/engine"
	"watchdeck/internal/metrics"
	"watchdeck/internal/view"
)

// StreamStatus reports upstream connectivity for the UI indicator.
type StreamStatus interface {
	Connected() bool
	Reconnects() int64
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	MetricsPath string // empty disables the scrape endpoint
}

// Server is the HTTP server over the engine's projections.
type Server struct {
	echo   *echo.Echo
	logger *zap.Logger
	engine *engine.Engine
	stream StreamStatus
	addr   string
}

// NewServer creates the HTTP server.
func NewServer(cfg Config, eng *engine.Engine, stream StreamStatus, m *metrics.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	s := &Server{
		echo:   e,
		logger: logger,
		engine: eng,
		stream: stream,
		addr:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}

	e.HTTPErrorHandler = s.errorHandler

	e.GET("/healthz", s.handleHealth)

	g := e.Group("/api")
	g.GET("/feed", s.handleFeed)
	g.GET("/history", s.handleHistory)
	g.GET("/stats", s.handleStats)
	g.GET("/status", s.handleStatus)
	g.POST("/feed/clear", s.handleClear)

	if cfg.MetricsPath != "" && m != nil {
		e.GET(cfg.MetricsPath, echo.WrapHandler(m.Handler()))
	}

	return s
}

// Start blocks serving HTTP.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// feedEntry is the transport shape of one projected signal.
type feedEntry struct {
	Symbol       string  `json:"symbol"`
	Direction    string  `json:"direction"`
	Price        float64 `json:"price"`
	Volume       float64 `json:"volume"`
	AvgVolume    float64 `json:"avg_volume"`
	Timestamp    int64   `json:"timestamp"`
	Reason       string  `json:"reason"`
	BookRatio    float64 `json:"book_ratio,omitempty"`
	OpenInterest float64 `json:"open_interest,omitempty"`
	NetInflow    float64 `json:"net_inflow,omitempty"`
	Elapsed      string  `json:"elapsed"`
	Progress     float64 `json:"progress"`
	Expired      bool    `json:"expired"`
}

func toFeedEntries(entries []view.Entry) []feedEntry {
	out := make([]feedEntry, len(entries))
	for i, e := range entries {
		out[i] = feedEntry{
			Symbol:       e.Symbol,
			Direction:    string(e.Direction),
			Price:        e.Price,
			Volume:       e.Volume,
			AvgVolume:    e.AvgVolume,
			Timestamp:    e.Timestamp.UnixMilli(),
			Reason:       e.Reason,
			BookRatio:    e.BookRatio,
			OpenInterest: e.OpenInterest,
			NetInflow:    e.NetInflow,
			Elapsed:      e.Elapsed,
			Progress:     e.Progress,
			Expired:      e.Expired,
		}
	}
	return out
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFeed(c echo.Context) error {
	proj := s.engine.Projection()
	return respond(c, http.StatusOK, map[string]any{
		"entries": toFeedEntries(proj.Feed),
		"count":   len(proj.Feed),
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	proj := s.engine.Projection()
	return respond(c, http.StatusOK, map[string]any{
		"entries": toFeedEntries(proj.History),
		"count":   len(proj.History),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	return respond(c, http.StatusOK, s.engine.Projection().Stats)
}

func (s *Server) handleStatus(c echo.Context) error {
	proj := s.engine.Projection()

	connected := false
	var reconnects int64
	if s.stream != nil {
		connected = s.stream.Connected()
		reconnects = s.stream.Reconnects()
	}

	state := "down"
	if connected {
		state = "up"
	}

	return respond(c, http.StatusOK, map[string]any{
		"connection":     state,
		"reconnects":     reconnects,
		"active_signals": len(proj.Feed),
		"total_signals":  len(proj.History),
		"window_minutes": int(s.engine.ActiveWindow() / time.Minute),
		"updated_at":     proj.UpdatedAt.UTC(),
	})
}

func (s *Server) handleClear(c echo.Context) error {
	s.engine.RequestClear()
	return respond(c, http.StatusAccepted, map[string]string{"result": "clear requested"})
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	var httpErr *echo.HTTPError
	if he, ok := err.(*echo.HTTPError); ok {
		httpErr = he
		status = he.Code
	}

	if httpErr != nil {
		_ = respondError(c, status, core.WrapError(
			&core.Error{Code: "HTTP_ERROR", Message: http.StatusText(status)},
			err,
		))
		return
	}
	_ = respondError(c, status, err)
}
