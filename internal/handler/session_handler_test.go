package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfpick/backend/internal/catalog"
	"shelfpick/backend/internal/database"
	"shelfpick/backend/internal/models"
	"shelfpick/backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSessionRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sessionHandler := NewSessionHandler(store.NewSessionStore(db), catalog.New(db))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/sessions", sessionHandler.Create)
	r.GET("/sessions/:code", sessionHandler.Get)
	r.POST("/sessions/:code/join", sessionHandler.Join)
	r.POST("/sessions/:code/vote", sessionHandler.Vote)
	r.POST("/sessions/:code/complete", sessionHandler.Complete)
	r.POST("/sessions/:code/end", sessionHandler.End)
	r.GET("/sessions/:code/results", sessionHandler.Results)

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSessionEndToEnd(t *testing.T) {
	r, db := setupSessionRouter(t)

	require.NoError(t, db.Create(&models.Game{BGGID: "g1", Name: "Azul", Rating: 7.8}).Error)
	require.NoError(t, db.Create(&models.Game{BGGID: "g2", Name: "Wingspan", Rating: 8.0}).Error)
	require.NoError(t, db.Create(&models.Game{BGGID: "g3", Name: "Root"}).Error)

	// Alice creates a collaborative session.
	w := doJSON(t, r, http.MethodPost, "/sessions", gin.H{
		"hostName": "Alice",
		"type":     "collaborative",
		"gameIds":  []string{"g1", "g2", "g3"},
		"filters":  gin.H{"players": 2, "kidFriendly": false},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)

	session := created["session"].(map[string]interface{})
	code := session["code"].(string)
	aliceID := created["playerId"].(string)
	assert.Equal(t, "active", session["status"])
	assert.Equal(t, float64(3), created["totalGames"])

	players := session["players"].([]interface{})
	require.Len(t, players, 1)
	alice := players[0].(map[string]interface{})
	assert.Equal(t, "Alice", alice["name"])
	assert.Equal(t, true, alice["isHost"])
	assert.Equal(t, "picking", alice["status"])
	assert.Equal(t, float64(0), alice["progress"])

	// Bob joins.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+code+"/join", gin.H{"playerName": "Bob"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	joined := decode(t, w)
	assert.Equal(t, false, joined["isRejoining"])
	bob := joined["player"].(map[string]interface{})
	bobID := bob["id"].(string)
	assert.Equal(t, "picking", bob["status"])

	// Votes: Alice like/g1 pick/g2 skip/g3; Bob pick/g1 like/g2 skip/g3.
	votes := []struct {
		playerID, gameID, decision string
		progress                   int
	}{
		{aliceID, "g1", "like", 1},
		{aliceID, "g2", "pick", 2},
		{aliceID, "g3", "skip", 3},
		{bobID, "g1", "pick", 1},
		{bobID, "g2", "like", 2},
		{bobID, "g3", "skip", 3},
	}
	for _, v := range votes {
		w = doJSON(t, r, http.MethodPost, "/sessions/"+code+"/vote", gin.H{
			"playerId": v.playerID,
			"gameId":   v.gameID,
			"decision": v.decision,
			"progress": v.progress,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	// Both finish; all-done flips on Bob's call.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+code+"/complete", gin.H{"playerId": aliceID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["allPlayersDone"])

	w = doJSON(t, r, http.MethodPost, "/sessions/"+code+"/complete", gin.H{"playerId": bobID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["allPlayersDone"])

	// Results while active: g1 and g2 unanimous, g3 absent.
	w = doJSON(t, r, http.MethodGet, "/sessions/"+code+"/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := decode(t, w)
	unanimous := results["unanimousMatches"].([]interface{})
	require.Len(t, unanimous, 2)
	for _, entry := range unanimous {
		e := entry.(map[string]interface{})
		assert.Equal(t, float64(1), e["likes"])
		assert.Equal(t, float64(1), e["picks"])
		assert.NotEqual(t, "g3", e["gameId"])
		assert.NotEqual(t, "Unknown Game", e["name"])
	}
	assert.Empty(t, results["rankedResults"])
	assert.Equal(t, false, results["completed"])

	// Bob cannot end the session.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+code+"/end", gin.H{"playerId": bobID})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Alice ends it; results freeze.
	w = doJSON(t, r, http.MethodPost, "/sessions/"+code+"/end", gin.H{"playerId": aliceID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/sessions/"+code, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["status"])

	first := doJSON(t, r, http.MethodGet, "/sessions/"+code+"/results", nil)
	second := doJSON(t, r, http.MethodGet, "/sessions/"+code+"/results", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String(),
		"frozen results must be byte-identical across reads")
	assert.Equal(t, true, decode(t, first)["completed"])
}

func TestCreateSessionRejectsBadInput(t *testing.T) {
	r, _ := setupSessionRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sessions", gin.H{
		"hostName": "Alice",
		"type":     "collaborative",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions", gin.H{
		"hostName": "Alice",
		"type":     "tournament",
		"gameIds":  []string{"g1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSoloSessionWithWinner(t *testing.T) {
	r, _ := setupSessionRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sessions", gin.H{
		"hostName":     "Alice",
		"type":         "solo",
		"gameIds":      []string{"g1", "g2"},
		"winnerGameId": "g2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)

	session := created["session"].(map[string]interface{})
	assert.Equal(t, "completed", session["status"])
	assert.Equal(t, "g2", session["winnerGameId"])
	assert.NotEmpty(t, session["completedAt"])

	host := session["players"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "done", host["status"])
	assert.Equal(t, float64(2), host["progress"])
}

func TestJoinUnknownAndCompletedSessions(t *testing.T) {
	r, _ := setupSessionRouter(t)

	w := doJSON(t, r, http.MethodPost, "/sessions/QQQQQQ/join", gin.H{"playerName": "Bob"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/sessions", gin.H{
		"hostName":     "Alice",
		"type":         "solo",
		"gameIds":      []string{"g1"},
		"winnerGameId": "g1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	code := decode(t, w)["session"].(map[string]interface{})["code"].(string)

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/sessions/%s/join", code), gin.H{"playerName": "Bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSessionResolvesGamesInCandidateOrder(t *testing.T) {
	r, db := setupSessionRouter(t)

	require.NoError(t, db.Create(&models.Game{BGGID: "g2", Name: "Wingspan"}).Error)

	w := doJSON(t, r, http.MethodPost, "/sessions", gin.H{
		"hostName": "Alice",
		"type":     "collaborative",
		"gameIds":  []string{"g2", "g1"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	code := decode(t, w)["session"].(map[string]interface{})["code"].(string)

	w = doJSON(t, r, http.MethodGet, "/sessions/"+code, nil)
	require.Equal(t, http.StatusOK, w.Code)

	games := decode(t, w)["games"].([]interface{})
	require.Len(t, games, 2)
	assert.Equal(t, "Wingspan", games[0].(map[string]interface{})["name"])
	assert.Equal(t, "Unknown Game", games[1].(map[string]interface{})["name"])
}
