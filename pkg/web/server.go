// Package web serves a live dashboard for a voice session: current state,
// running metrics, and a websocket stream of loop events.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-voiceqa/pkg/assistant"
	"github.com/teslashibe/go-voiceqa/pkg/hub"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
)

// maxEvents bounds the in-memory event history.
const maxEvents = 200

// Message types sent over /ws/events.
const (
	TypeHello   = "hello"
	TypeEvent   = "event"
	TypeMetrics = "metrics"
)

// Session is the read side of an interaction loop. *assistant.Loop satisfies it.
type Session interface {
	Session() string
	State() assistant.State
	Running() bool
}

// Status is the body of GET /api/status.
type Status struct {
	Session string          `json:"session"`
	State   assistant.State `json:"state"`
	Running bool            `json:"running"`
	Clients int             `json:"clients"`
}

// MetricsView is the body of GET /api/metrics.
type MetricsView struct {
	Snapshot metrics.Snapshot `json:"snapshot"`
	Summary  metrics.Summary  `json:"summary"`
}

// Server is the dashboard server.
type Server struct {
	app      *fiber.App
	hub      *hub.Hub
	session  Session
	recorder *metrics.Recorder
	logger   *slog.Logger

	eventsMu sync.RWMutex
	events   []assistant.Event
}

// NewServer creates a dashboard for session and its recorder.
func NewServer(session Session, rec *metrics.Recorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		hub:      hub.New(logger),
		session:  session,
		recorder: rec,
		logger:   logger.With("component", "web"),
		events:   make([]assistant.Event, 0, maxEvents),
	}

	app := fiber.New(fiber.Config{
		AppName:               "voiceqa dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/metrics", s.handleMetrics)
	api.Get("/events", s.handleEvents)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub returns the broadcast hub.
func (s *Server) Hub() *hub.Hub {
	return s.hub
}

// Observe records a loop event and pushes it to clients.
// Use it as the loop's observer.
func (s *Server) Observe(e assistant.Event) {
	s.eventsMu.Lock()
	s.events = append(s.events, e)
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
	s.eventsMu.Unlock()

	if err := s.hub.Publish(TypeEvent, e); err != nil {
		s.logger.Warn("publish event failed", "error", err)
	}
}

// MetricsUpdated pushes a fresh summary to clients.
// Use it as the recorder's OnUpdate callback.
func (s *Server) MetricsUpdated(snap metrics.Snapshot) {
	if err := s.hub.Publish(TypeMetrics, MetricsView{Snapshot: snap, Summary: metrics.Summarize(snap)}); err != nil {
		s.logger.Warn("publish metrics failed", "error", err)
	}
}

// Serve runs the hub and serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		errc <- s.app.Listener(ln)
	}()

	select {
	case <-ctx.Done():
		if err := s.app.Shutdown(); err != nil {
			return err
		}
		return nil
	case err := <-errc:
		return err
	}
}

// Start listens on addr and serves in the background. Errors after startup are logged.
func (s *Server) Start(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.logger.Info("dashboard listening", "url", "http://"+ln.Addr().String())

	go func() {
		if err := s.Serve(ctx, ln); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Error("dashboard stopped", "error", err)
		}
	}()
	return ln.Addr(), nil
}
