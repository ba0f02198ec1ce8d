package hub

import (
	"net/http"
	"strings"
	"time"

	"shelfpick/backend/internal/logging"
	"shelfpick/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionSource is the slice of the session store the hub needs: the
// one-time fetch that rehydrates the roster cache on join.
type SessionSource interface {
	GetSession(code string) (*models.PickSession, error)
}

// Server owns the websocket endpoint for pick sessions and dispatches
// inbound events onto the registry.
type Server struct {
	registry *Registry
	store    SessionSource
}

func NewServer(registry *Registry, store SessionSource) *Server {
	return &Server{registry: registry, store: store}
}

// inboundMessage is the envelope clients send. Fields beyond Type are
// event-specific.
type inboundMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId,omitempty"`
	Progress int    `json:"progress,omitempty"`
}

// Handle godoc
// @Summary      Join a session's realtime channel
// @Description  Upgrades to a websocket carrying session roster and progress events.
// @Tags         sessions
// @Param        code path string true "Session code"
// @Router       /ws/sessions/{code} [get]
func (s *Server) Handle(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Log.Warnf("hub: upgrade failed for session %s: %v", code, err)
		return
	}

	client := newClient(conn, code)
	s.registry.Subscribe(code, client)

	go client.writePump()
	s.readPump(client)
}

func (s *Server) readPump(c *Client) {
	defer func() {
		s.registry.Unsubscribe(c.code, c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "join-session":
			s.handleJoin(c, msg)
		case "start-picking":
			s.registry.Broadcast(c.code, Event{Type: "picking-started"})
		case "player-progress":
			s.handleProgress(c, msg)
		case "player-done":
			s.handleDone(c, msg)
		case "end-session":
			s.registry.Broadcast(c.code, Event{Type: "session-ended"})
			s.registry.Evict(c.code)
		default:
			// ignore unknown types
		}
	}
}

// handleJoin rehydrates the roster cache from the store, then tells
// everyone the full roster and everyone-but-the-joiner who just arrived.
// A failed fetch is reported to the joining socket only; the client is
// expected to retry the join.
func (s *Server) handleJoin(c *Client, msg inboundMessage) {
	session, err := s.store.GetSession(c.code)
	if err != nil {
		logging.Log.Warnf("hub: join fetch failed for session %s: %v", c.code, err)
		c.sendEvent(Event{Type: "error", Payload: gin.H{"message": "failed to load session"}})
		return
	}

	snapshots := make([]PlayerSnapshot, 0, len(session.Players))
	var joiner *PlayerSnapshot
	for _, p := range session.Players {
		snap := PlayerSnapshot{
			ID:       p.ID,
			Name:     p.Name,
			IsHost:   p.IsHost,
			Status:   string(p.Status),
			Progress: p.Progress,
		}
		snapshots = append(snapshots, snap)
		if p.ID == msg.PlayerID {
			joinerCopy := snap
			joiner = &joinerCopy
		}
	}
	s.registry.SetPlayers(c.code, snapshots)

	s.registry.Broadcast(c.code, Event{Type: "session-update", Payload: gin.H{
		"session": gin.H{
			"code":   session.Code,
			"type":   session.Type,
			"status": session.Status,
		},
		"players": snapshots,
	}})

	if joiner != nil {
		s.registry.BroadcastExcept(c.code, c, Event{Type: "player-joined", Payload: joiner})
	}
}

// handleProgress updates the cache optimistically and fans the new value
// out. Durable progress travels on the REST vote path, not here.
func (s *Server) handleProgress(c *Client, msg inboundMessage) {
	for _, snap := range s.registry.Players(c.code) {
		if snap.ID == msg.PlayerID {
			snap.Progress = msg.Progress
			s.registry.UpdatePlayer(c.code, snap)
			break
		}
	}
	s.registry.Broadcast(c.code, Event{Type: "player-progress-update", Payload: gin.H{
		"playerId": msg.PlayerID,
		"progress": msg.Progress,
	}})
}

// handleDone mirrors the player's done flip into the cache and broadcasts
// it. The durable flip happens via the REST complete call, independently.
func (s *Server) handleDone(c *Client, msg inboundMessage) {
	for _, snap := range s.registry.Players(c.code) {
		if snap.ID == msg.PlayerID {
			snap.Status = string(models.PlayerStatusDone)
			s.registry.UpdatePlayer(c.code, snap)
			break
		}
	}
	s.registry.Broadcast(c.code, Event{Type: "player-completed", Payload: gin.H{
		"playerId": msg.PlayerID,
	}})
}
