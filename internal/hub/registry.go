// Package hub is the in-memory realtime layer for pick sessions: a
// per-process registry of connected sockets and last-known player snapshots,
// keyed by session code. It is a cache over the session store, never the
// source of truth; every join rehydrates it from the database.
package hub

import (
	"encoding/json"
	"sync"
	"time"

	"shelfpick/backend/internal/logging"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// PlayerSnapshot is the cached view of one session player, enough for a
// newly joining client to render the roster without another round trip.
type PlayerSnapshot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

type sessionEntry struct {
	clients    map[*Client]bool
	players    map[string]PlayerSnapshot
	lastActive time.Time
}

// Registry manages all live sessions and their connected clients. It is
// constructed once in main and passed to the handlers that need it; there
// is deliberately no package-level singleton.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	// staleAfter bounds the cache: entries idle longer than this are
	// swept, so an abandoned session does not hold its roster for the
	// life of the process.
	staleAfter time.Duration
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:   make(map[string]*sessionEntry),
		staleAfter: 6 * time.Hour,
	}
}

func (r *Registry) entry(code string) *sessionEntry {
	e, ok := r.sessions[code]
	if !ok {
		e = &sessionEntry{
			clients: make(map[*Client]bool),
			players: make(map[string]PlayerSnapshot),
		}
		r.sessions[code] = e
	}
	e.lastActive = time.Now()
	return e
}

// Subscribe adds a client connection to a session's channel.
func (r *Registry) Subscribe(code string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(code).clients[client] = true
}

// Unsubscribe removes a client connection. The session's snapshot cache is
// kept: a disconnect is not a leave, and the player is expected to rejoin.
func (r *Registry) Unsubscribe(code string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[code]
	if !ok {
		return
	}
	if _, ok := e.clients[client]; ok {
		delete(e.clients, client)
		close(client.done)
	}
}

// SetPlayers replaces the cached roster for a session. Called with the
// store's authoritative rows on every join.
func (r *Registry) SetPlayers(code string, players []PlayerSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entry(code)
	for _, p := range players {
		e.players[p.ID] = p
	}
}

// UpdatePlayer merges one player's snapshot into the cache.
func (r *Registry) UpdatePlayer(code string, snap PlayerSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(code).players[snap.ID] = snap
}

// Players returns the cached roster for a session.
func (r *Registry) Players(code string) []PlayerSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[code]
	if !ok {
		return []PlayerSnapshot{}
	}
	players := make([]PlayerSnapshot, 0, len(e.players))
	for _, p := range e.players {
		players = append(players, p)
	}
	return players
}

// Broadcast sends an event to all clients in a session's channel.
func (r *Registry) Broadcast(code string, event Event) {
	r.broadcast(code, nil, event)
}

// BroadcastExcept sends an event to all clients in a session's channel
// except the given one.
func (r *Registry) BroadcastExcept(code string, skip *Client, event Event) {
	r.broadcast(code, skip, event)
}

func (r *Registry) broadcast(code string, skip *Client, event Event) {
	// Write lock: broadcasts refresh lastActive, and two sockets in the
	// same session can broadcast at the same time.
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[code]
	if !ok {
		return
	}
	e.lastActive = time.Now()

	messageBytes, err := json.Marshal(event)
	if err != nil {
		logging.Log.Errorf("hub: failed to marshal %s event: %v", event.Type, err)
		return
	}

	for client := range e.clients {
		if client == skip {
			continue
		}
		// Non-blocking send so a slow client cannot stall the hub.
		select {
		case client.send <- messageBytes:
		default:
		}
	}
}

// Evict drops a session's entry entirely, shutting down any remaining
// clients. Called when the host ends the session; together with the stale
// sweep this is the cache's only cleanup path.
func (r *Registry) Evict(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked(code)
}

func (r *Registry) evictLocked(code string) {
	e, ok := r.sessions[code]
	if !ok {
		return
	}
	// Signal shutdown through done rather than closing send: the client's
	// readPump may be mid-sendEvent, and a send on a closed channel would
	// panic the process.
	for client := range e.clients {
		close(client.done)
	}
	delete(r.sessions, code)
}

// SweepStale evicts sessions idle longer than the registry's TTL and
// returns how many were removed.
func (r *Registry) SweepStale() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted int
	cutoff := time.Now().Add(-r.staleAfter)
	for code, e := range r.sessions {
		if e.lastActive.Before(cutoff) {
			r.evictLocked(code)
			evicted++
		}
	}
	return evicted
}

// StartSweeper runs SweepStale periodically until stop is closed.
func (r *Registry) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := r.SweepStale(); n > 0 {
					logging.Log.Infof("hub: swept %d stale session entries", n)
				}
			case <-stop:
				return
			}
		}
	}()
}
