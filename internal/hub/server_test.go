package hub

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shelfpick/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	session *models.PickSession
	err     error
}

func (s stubSource) GetSession(code string) (*models.PickSession, error) {
	return s.session, s.err
}

func dialTestServer(t *testing.T, source SessionSource) (*websocket.Conn, *Registry) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	registry := NewRegistry()
	router := gin.New()
	router.GET("/ws/sessions/:code", NewServer(registry, source).Handle)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/sessions/ABC234"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, registry
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestHandleJoinBroadcastsRoster(t *testing.T) {
	source := stubSource{session: &models.PickSession{
		Code:   "ABC234",
		Type:   models.SessionTypeCollaborative,
		Status: models.SessionStatusActive,
		Players: []models.SessionPlayer{
			{ID: "p1", Name: "Alice", IsHost: true, Status: models.PlayerStatusPicking},
		},
	}}
	conn, registry := dialTestServer(t, source)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":     "join-session",
		"playerId": "p1",
	}))

	event := readEvent(t, conn)
	assert.Equal(t, "session-update", event.Type)

	payload, ok := event.Payload.(map[string]interface{})
	require.True(t, ok)
	players, ok := payload["players"].([]interface{})
	require.True(t, ok)
	require.Len(t, players, 1)

	assert.Len(t, registry.Players("ABC234"), 1)
}

func TestHandleJoinFetchFailureIsScopedError(t *testing.T) {
	conn, _ := dialTestServer(t, stubSource{err: errors.New("boom")})

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":     "join-session",
		"playerId": "p1",
	}))

	event := readEvent(t, conn)
	assert.Equal(t, "error", event.Type)
}

func TestHandleEndSessionBroadcastsAndEvicts(t *testing.T) {
	source := stubSource{session: &models.PickSession{
		Code:    "ABC234",
		Status:  models.SessionStatusActive,
		Players: []models.SessionPlayer{{ID: "p1", Name: "Alice", IsHost: true}},
	}}
	conn, registry := dialTestServer(t, source)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":     "join-session",
		"playerId": "p1",
	}))
	require.Equal(t, "session-update", readEvent(t, conn).Type)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "end-session"}))
	assert.Equal(t, "session-ended", readEvent(t, conn).Type)

	require.Eventually(t, func() bool {
		return len(registry.Players("ABC234")) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
