package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/downhill/internal/core/observability/log"
	"github.com/zeusync/downhill/internal/core/system"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// Frame types sent to spectators.
const (
	FrameHello    = "hello"
	FrameSnapshot = "snapshot"
	FrameError    = "error"
)

// Frame is one websocket message to a spectator. Snapshot vertices are only
// included when the terrain changed since the client's previous frame.
type Frame struct {
	Type     string           `json:"type"`
	ClientID string           `json:"client_id,omitempty"`
	Snapshot *system.Snapshot `json:"snapshot,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type client struct {
	id       uuid.UUID
	conn     *websocket.Conn
	send     chan Frame
	canInput bool

	// lastVersion and sentTerrain are only touched by the tick goroutine
	// once the client is registered.
	lastVersion uint64
	sentTerrain bool

	closeOnce sync.Once
	done      chan struct{}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// frameFor trims terrain geometry the client already has.
func (c *client) frameFor(snap system.Snapshot) Frame {
	if c.sentTerrain && snap.TerrainVersion == c.lastVersion {
		snap.Vertices = nil
	}
	c.lastVersion = snap.TerrainVersion
	c.sentTerrain = true
	return Frame{Type: FrameSnapshot, Snapshot: &snap}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.closed.Load() {
		writeError(w, http.StatusServiceUnavailable, ErrServerClosed)
		return
	}
	if int(s.count.Load()) >= s.config.MaxClients {
		writeError(w, http.StatusServiceUnavailable, ErrMaxClientsReached)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", log.Error(err))
		return
	}
	conn.SetReadLimit(int64(s.config.MaxMessageSize))

	c := &client{
		id:       uuid.New(),
		conn:     conn,
		send:     make(chan Frame, s.config.SendBuffer+2),
		canInput: s.auth.Authorize(r),
		done:     make(chan struct{}),
	}
	c.send <- Frame{Type: FrameHello, ClientID: c.id.String()}
	c.send <- c.frameFor(s.source.Latest())

	s.clients.Store(c.id, c)
	s.count.Add(1)
	logger := s.logger.With(log.String("client_id", c.id.String()))
	logger.Info("spectator connected", log.String("remote", conn.RemoteAddr().String()), log.Bool("input", c.canInput))

	go s.writeLoop(c, logger)
	s.readLoop(c, logger)

	c.close()
	s.clients.Delete(c.id)
	s.count.Add(-1)
	logger.Info("spectator disconnected")
}

// readLoop forwards commands until the connection fails.
func (s *Server) readLoop(c *client, logger log.Log) {
	for {
		var cmd system.Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("read failed", log.Error(err))
			}
			return
		}

		if !c.canInput {
			s.enqueue(c, Frame{Type: FrameError, Error: ErrUnauthorized.Error()})
			continue
		}
		if err := s.source.Submit(cmd); err != nil {
			s.enqueue(c, Frame{Type: FrameError, Error: err.Error()})
		}
	}
}

func (s *Server) writeLoop(c *client, logger log.Log) {
	defer c.close()
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteJSON(frame); err != nil {
				logger.Debug("write failed", log.Error(err))
				return
			}
		}
	}
}

func (s *Server) broadcast(snap system.Snapshot) {
	s.clients.Range(func(_, value any) bool {
		c := value.(*client)
		if !s.enqueue(c, c.frameFor(snap)) {
			// Resend geometry with the next frame that gets through.
			c.sentTerrain = false
		}
		return true
	})
}

// enqueue drops the frame for clients that do not keep up.
func (s *Server) enqueue(c *client, frame Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		s.logger.Debug("spectator lagging, frame dropped", log.String("client_id", c.id.String()))
		return false
	}
}
