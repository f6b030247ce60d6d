package web

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-voiceqa/pkg/assistant"
	"github.com/teslashibe/go-voiceqa/pkg/hub"
	"github.com/teslashibe/go-voiceqa/pkg/metrics"
)

func (s *Server) status() Status {
	return Status{
		Session: s.session.Session(),
		State:   s.session.State(),
		Running: s.session.Running(),
		Clients: s.hub.ClientCount(),
	}
}

func (s *Server) metricsView() MetricsView {
	snap := s.recorder.Snapshot()
	return MetricsView{Snapshot: snap, Summary: metrics.Summarize(snap)}
}

func (s *Server) recentEvents() []assistant.Event {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	out := make([]assistant.Event, len(s.events))
	copy(out, s.events)
	return out
}

// handleStatus returns the session state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

// handleMetrics returns the raw recorder snapshot and its summary.
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.metricsView())
}

// handleEvents returns recent loop events, oldest first.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	return c.JSON(s.recentEvents())
}

// handleEventsWS greets the client with the current status and metrics,
// then streams every broadcast until the connection closes.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	for _, m := range []struct {
		typ string
		v   any
	}{
		{TypeHello, s.status()},
		{TypeMetrics, s.metricsView()},
	} {
		msg, err := hub.NewMessage(m.typ, m.v)
		if err != nil {
			continue
		}
		data, _ := json.Marshal(msg)
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}

	hub.NewClient(s.hub, c).Run()
}
