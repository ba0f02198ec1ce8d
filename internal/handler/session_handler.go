package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"shelfpick/backend/internal/catalog"
	"shelfpick/backend/internal/models"
	"shelfpick/backend/internal/picker"
	"shelfpick/backend/internal/store"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type CreateSessionInput struct {
	HostName     string          `json:"hostName" binding:"required"`
	Type         string          `json:"type" binding:"required,oneof=solo collaborative"`
	Filters      json.RawMessage `json:"filters"`
	GameIDs      []string        `json:"gameIds" binding:"required"`
	WinnerGameID *string         `json:"winnerGameId"`
}

type JoinSessionInput struct {
	PlayerName string `json:"playerName" binding:"required"`
}

type CastVoteInput struct {
	PlayerID string `json:"playerId" binding:"required"`
	GameID   string `json:"gameId" binding:"required"`
	Decision string `json:"decision" binding:"required,oneof=like skip pick"`
	Progress int    `json:"progress"`
}

type PlayerActionInput struct {
	PlayerID string `json:"playerId" binding:"required"`
}

type SessionPlayerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

type SessionResponse struct {
	Code         string                  `json:"code"`
	Type         string                  `json:"type"`
	HostName     string                  `json:"hostName"`
	Status       string                  `json:"status"`
	Filters      json.RawMessage         `json:"filters,omitempty"`
	WinnerGameID *string                 `json:"winnerGameId,omitempty"`
	CreatedAt    time.Time               `json:"createdAt"`
	CompletedAt  *time.Time              `json:"completedAt,omitempty"`
	Players      []SessionPlayerResponse `json:"players"`
	Games        []catalog.ResolvedGame  `json:"games,omitempty"`
}

// ResultEntryResponse is one game's tally hydrated with catalog metadata.
// The tally fields come from the (possibly frozen) aggregation; the
// metadata is resolved fresh on every read.
type ResultEntryResponse struct {
	GameID    string   `json:"gameId"`
	Name      string   `json:"name"`
	Image     *string  `json:"image"`
	Rating    *float64 `json:"rating"`
	Likes     int      `json:"likes"`
	Picks     int      `json:"picks"`
	Skips     int      `json:"skips"`
	LikedBy   []string `json:"likedBy"`
	PickedBy  []string `json:"pickedBy"`
	Unanimous bool     `json:"unanimous"`
}

type SessionResultsResponse struct {
	UnanimousMatches []ResultEntryResponse `json:"unanimousMatches"`
	RankedResults    []ResultEntryResponse `json:"rankedResults"`
	TotalGames       int                   `json:"totalGames"`
	TotalPlayers     int                   `json:"totalPlayers"`
	Completed        bool                  `json:"completed"`
}

func newSessionPlayerResponse(p models.SessionPlayer) SessionPlayerResponse {
	return SessionPlayerResponse{
		ID:       p.ID,
		Name:     p.Name,
		IsHost:   p.IsHost,
		Status:   string(p.Status),
		Progress: p.Progress,
	}
}

func newSessionResponse(session *models.PickSession, games []catalog.ResolvedGame) SessionResponse {
	players := make([]SessionPlayerResponse, 0, len(session.Players))
	for _, p := range session.Players {
		players = append(players, newSessionPlayerResponse(p))
	}
	return SessionResponse{
		Code:         session.Code,
		Type:         string(session.Type),
		HostName:     session.HostName,
		Status:       string(session.Status),
		Filters:      session.Filters,
		WinnerGameID: session.WinnerGameID,
		CreatedAt:    session.CreatedAt,
		CompletedAt:  session.CompletedAt,
		Players:      players,
		Games:        games,
	}
}

// endregion

// SessionHandler serves the pick-session REST surface. Unlike the catalog
// handlers it carries its dependencies explicitly: the store and catalog
// are injected so the realtime layer and tests can share them.
type SessionHandler struct {
	store   *store.SessionStore
	catalog *catalog.Catalog
}

func NewSessionHandler(s *store.SessionStore, c *catalog.Catalog) *SessionHandler {
	return &SessionHandler{store: s, catalog: c}
}

// sessionErrorStatus maps store sentinels onto HTTP statuses.
func sessionErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func abortWithSessionError(c *gin.Context, err error) {
	status := sessionErrorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// Create godoc
// @Summary      Create a pick session
// @Description  Creates a session with a fixed candidate game list and returns the host's player id.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        input body CreateSessionInput true "Session Info"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Router       /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, host, err := h.store.CreateSession(
		input.HostName,
		models.SessionType(input.Type),
		input.Filters,
		input.GameIDs,
		input.WinnerGameID,
	)
	if err != nil {
		abortWithSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":    newSessionResponse(session, nil),
		"playerId":   host.ID,
		"totalGames": len(session.GameIDs),
	})
}

// Get godoc
// @Summary      Get a pick session
// @Description  Returns the session, its players, and its games in candidate order.
// @Tags         sessions
// @Produce      json
// @Param        code path string true "Session code"
// @Success      200  {object}  SessionResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{code} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.store.GetSession(c.Param("code"))
	if err != nil {
		abortWithSessionError(c, err)
		return
	}

	games, err := h.catalog.ResolveGames(session.GameIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve games"})
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session, games))
}

// Join godoc
// @Summary      Join a pick session
// @Description  Joins by code. A name matching an existing player (case-insensitive) resumes that player.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        code  path string           true "Session code"
// @Param        input body JoinSessionInput true "Player Info"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse "Session is not active"
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{code}/join [post]
func (h *SessionHandler) Join(c *gin.Context) {
	var input JoinSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, session, isRejoining, err := h.store.JoinSession(c.Param("code"), input.PlayerName)
	if err != nil {
		abortWithSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player":      newSessionPlayerResponse(*player),
		"session":     newSessionResponse(session, nil),
		"isRejoining": isRejoining,
	})
}

// Vote godoc
// @Summary      Cast a vote
// @Description  Upserts the player's decision for one game and records their progress.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        code  path string        true "Session code"
// @Param        input body CastVoteInput true "Vote"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{code}/vote [post]
func (h *SessionHandler) Vote(c *gin.Context) {
	var input CastVoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.store.CastVote(c.Param("code"), input.PlayerID, input.GameID, models.VoteDecision(input.Decision), input.Progress)
	if err != nil {
		abortWithSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Complete godoc
// @Summary      Mark a player done
// @Description  Flips the player to done and reports whether everyone has finished.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        code  path string            true "Session code"
// @Param        input body PlayerActionInput true "Player"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{code}/complete [post]
func (h *SessionHandler) Complete(c *gin.Context) {
	var input PlayerActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allDone, players, err := h.store.CompletePlayer(c.Param("code"), input.PlayerID)
	if err != nil {
		abortWithSessionError(c, err)
		return
	}

	playerResponses := make([]SessionPlayerResponse, 0, len(players))
	for _, p := range players {
		playerResponses = append(playerResponses, newSessionPlayerResponse(p))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"allPlayersDone": allDone,
		"players":        playerResponses,
	})
}

// End godoc
// @Summary      End a pick session (host only)
// @Description  Completes the session, computing and freezing results exactly once.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        code  path string            true "Session code"
// @Param        input body PlayerActionInput true "Host player"
// @Success      200  {object}  map[string]bool
// @Failure      403  {object}  ErrorResponse "Only the host can end the session"
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{code}/end [post]
func (h *SessionHandler) End(c *gin.Context) {
	var input PlayerActionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.EndSession(c.Param("code"), input.PlayerID); err != nil {
		abortWithSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Results godoc
// @Summary      Get session results
// @Description  Computes results on demand while the session is active; once completed, returns the frozen snapshot hydrated with fresh game metadata.
// @Tags         sessions
// @Produce      json
// @Param        code path string true "Session code"
// @Success      200  {object}  SessionResultsResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{code}/results [get]
func (h *SessionHandler) Results(c *gin.Context) {
	session, err := h.store.GetSession(c.Param("code"))
	if err != nil {
		abortWithSessionError(c, err)
		return
	}

	results := session.Results
	if results == nil {
		votes, err := h.store.VotesForSession(session.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load votes"})
			return
		}
		results = picker.Aggregate(session.GameIDs, session.Players, votes)
	}

	response, err := h.hydrateResults(session, results)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve games"})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *SessionHandler) hydrateResults(session *models.PickSession, results *models.SessionResults) (*SessionResultsResponse, error) {
	ids := make([]string, 0, len(results.UnanimousMatches)+len(results.RankedResults))
	for _, t := range results.UnanimousMatches {
		ids = append(ids, t.GameID)
	}
	for _, t := range results.RankedResults {
		ids = append(ids, t.GameID)
	}

	resolved, err := h.catalog.ResolveGames(ids)
	if err != nil {
		return nil, err
	}
	meta := make(map[string]catalog.ResolvedGame, len(resolved))
	for _, g := range resolved {
		meta[g.ID] = g
	}

	hydrate := func(tallies []models.VoteTally) []ResultEntryResponse {
		entries := make([]ResultEntryResponse, 0, len(tallies))
		for _, t := range tallies {
			g := meta[t.GameID]
			likedBy := t.LikedBy
			if likedBy == nil {
				likedBy = []string{}
			}
			pickedBy := t.PickedBy
			if pickedBy == nil {
				pickedBy = []string{}
			}
			entries = append(entries, ResultEntryResponse{
				GameID:    t.GameID,
				Name:      g.Name,
				Image:     g.Image,
				Rating:    g.Rating,
				Likes:     t.Likes,
				Picks:     t.Picks,
				Skips:     t.Skips,
				LikedBy:   likedBy,
				PickedBy:  pickedBy,
				Unanimous: t.Unanimous,
			})
		}
		return entries
	}

	return &SessionResultsResponse{
		UnanimousMatches: hydrate(results.UnanimousMatches),
		RankedResults:    hydrate(results.RankedResults),
		TotalGames:       results.TotalGames,
		TotalPlayers:     results.TotalPlayers,
		Completed:        session.Status == models.SessionStatusCompleted,
	}, nil
}
