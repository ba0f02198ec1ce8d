package hub

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"shelfpick/backend/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.Bootstrap()
}

func testClient() *Client {
	return &Client{send: make(chan []byte, 16), done: make(chan struct{})}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	r := NewRegistry()
	a, b := testClient(), testClient()
	r.Subscribe("ABC234", a)
	r.Subscribe("ABC234", b)

	r.Broadcast("ABC234", Event{Type: "picking-started"})

	assert.Equal(t, "picking-started", receive(t, a).Type)
	assert.Equal(t, "picking-started", receive(t, b).Type)
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	r := NewRegistry()
	a, b := testClient(), testClient()
	r.Subscribe("ABC234", a)
	r.Subscribe("ABC234", b)

	r.BroadcastExcept("ABC234", a, Event{Type: "player-joined"})

	assert.Equal(t, "player-joined", receive(t, b).Type)
	select {
	case <-a.send:
		t.Fatal("sender should not receive its own join notification")
	default:
	}
}

func TestBroadcastIsScopedToSessionCode(t *testing.T) {
	r := NewRegistry()
	a, b := testClient(), testClient()
	r.Subscribe("ABC234", a)
	r.Subscribe("XYZ789", b)

	r.Broadcast("ABC234", Event{Type: "session-update"})

	assert.Equal(t, "session-update", receive(t, a).Type)
	select {
	case <-b.send:
		t.Fatal("clients in other sessions must not receive the event")
	default:
	}
}

func TestPlayerSnapshotCache(t *testing.T) {
	r := NewRegistry()
	r.SetPlayers("ABC234", []PlayerSnapshot{
		{ID: "p1", Name: "Alice", IsHost: true, Status: "picking"},
		{ID: "p2", Name: "Bob", Status: "picking"},
	})

	r.UpdatePlayer("ABC234", PlayerSnapshot{ID: "p2", Name: "Bob", Status: "picking", Progress: 3})

	players := r.Players("ABC234")
	require.Len(t, players, 2)
	byID := make(map[string]PlayerSnapshot)
	for _, p := range players {
		byID[p.ID] = p
	}
	assert.Equal(t, 3, byID["p2"].Progress)
	assert.True(t, byID["p1"].IsHost)
}

func TestSetPlayersMergesConcurrentJoins(t *testing.T) {
	// Two joins that both read the pre-join roster still converge,
	// because SetPlayers adds entries instead of replacing the map.
	r := NewRegistry()
	r.SetPlayers("ABC234", []PlayerSnapshot{
		{ID: "p1", Name: "Alice"},
		{ID: "p2", Name: "Bob"},
	})
	r.SetPlayers("ABC234", []PlayerSnapshot{
		{ID: "p1", Name: "Alice"},
		{ID: "p3", Name: "Cara"},
	})

	assert.Len(t, r.Players("ABC234"), 3)
}

func TestEvictShutsDownClientsAndDropsEntry(t *testing.T) {
	r := NewRegistry()
	a := testClient()
	r.Subscribe("ABC234", a)
	r.SetPlayers("ABC234", []PlayerSnapshot{{ID: "p1", Name: "Alice"}})

	r.Evict("ABC234")

	select {
	case <-a.done:
	default:
		t.Fatal("evict must signal client shutdown")
	}
	assert.Empty(t, r.Players("ABC234"))

	// Broadcasting into an evicted session is a no-op.
	r.Broadcast("ABC234", Event{Type: "session-ended"})
}

func TestSendEventAfterEvictDoesNotPanic(t *testing.T) {
	// A client's readPump can be mid-handleJoin while another socket's
	// end-session evicts the whole entry; the scoped send must survive
	// that teardown.
	r := NewRegistry()
	a := testClient()
	r.Subscribe("ABC234", a)

	r.Evict("ABC234")
	a.sendEvent(Event{Type: "error"})

	assert.Equal(t, "error", receive(t, a).Type)
}

func TestConcurrentBroadcastsOnOneSession(t *testing.T) {
	r := NewRegistry()
	clients := make([]*Client, 8)
	for i := range clients {
		clients[i] = testClient()
		r.Subscribe("ABC234", clients[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Broadcast("ABC234", Event{Type: "player-progress-update"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "player-progress-update", receive(t, clients[0]).Type)
}

func TestUnsubscribeKeepsSnapshotCache(t *testing.T) {
	r := NewRegistry()
	a := testClient()
	r.Subscribe("ABC234", a)
	r.SetPlayers("ABC234", []PlayerSnapshot{{ID: "p1", Name: "Alice"}})

	r.Unsubscribe("ABC234", a)

	// A disconnect is not a leave; the roster survives for rejoin.
	assert.Len(t, r.Players("ABC234"), 1)
}

func TestSweepStaleEvictsIdleSessions(t *testing.T) {
	r := NewRegistry()
	r.staleAfter = 10 * time.Millisecond
	r.SetPlayers("ABC234", []PlayerSnapshot{{ID: "p1", Name: "Alice"}})

	assert.Zero(t, r.SweepStale())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, r.SweepStale())
	assert.Empty(t, r.Players("ABC234"))
}
