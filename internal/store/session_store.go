package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shelfpick/backend/internal/models"
	"shelfpick/backend/internal/picker"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStore is the durable side of the pick-session workflow. The
// relational rows it manages are the source of truth; the realtime hub only
// mirrors them.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

// CreateSession creates a session plus its host player. For solo sessions
// created with the winner already known there is no voting phase: the
// session is completed on the spot and the host is marked done.
func (s *SessionStore) CreateSession(hostName string, sessionType models.SessionType, filters json.RawMessage, gameIDs []string, winnerGameID *string) (*models.PickSession, *models.SessionPlayer, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return nil, nil, fmt.Errorf("%w: host name is required", ErrValidation)
	}
	if len(gameIDs) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one game is required", ErrValidation)
	}
	if sessionType != models.SessionTypeSolo && sessionType != models.SessionTypeCollaborative {
		return nil, nil, fmt.Errorf("%w: unknown session type %q", ErrValidation, sessionType)
	}

	code, err := s.uniqueCode()
	if err != nil {
		return nil, nil, err
	}

	session := models.PickSession{
		Code:     code,
		Type:     sessionType,
		HostName: hostName,
		Status:   models.SessionStatusActive,
		GameIDs:  gameIDs,
		Filters:  filters,
	}

	host := models.SessionPlayer{
		ID:     uuid.NewString(),
		Name:   hostName,
		IsHost: true,
		Status: models.PlayerStatusPicking,
	}

	if sessionType == models.SessionTypeSolo && winnerGameID != nil && *winnerGameID != "" {
		now := time.Now()
		session.Status = models.SessionStatusCompleted
		session.CompletedAt = &now
		session.WinnerGameID = winnerGameID
		host.Status = models.PlayerStatusDone
		host.Progress = len(gameIDs)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		host.SessionID = session.ID
		return tx.Create(&host).Error
	})
	if err != nil {
		return nil, nil, err
	}

	session.Players = []models.SessionPlayer{host}
	return &session, &host, nil
}

// uniqueCode draws join codes until one does not collide, giving up after
// maxCodeAttempts.
func (s *SessionStore) uniqueCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := randomCode()
		var count int64
		if err := s.db.Model(&models.PickSession{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

// JoinSession adds a player to an active session. A name that matches an
// existing player case-insensitively returns that player instead of
// creating a duplicate, so a reconnecting client resumes its progress.
func (s *SessionStore) JoinSession(code, playerName string) (*models.SessionPlayer, *models.PickSession, bool, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, nil, false, fmt.Errorf("%w: player name is required", ErrValidation)
	}

	session, err := s.activeSession(code)
	if err != nil {
		return nil, nil, false, err
	}

	for i := range session.Players {
		if strings.EqualFold(session.Players[i].Name, playerName) {
			return &session.Players[i], session, true, nil
		}
	}

	player := models.SessionPlayer{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Name:      playerName,
		Status:    models.PlayerStatusPicking,
	}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, nil, false, err
	}

	session.Players = append(session.Players, player)
	return &player, session, false, nil
}

// CastVote upserts the player's decision for one game and records the
// caller-computed progress counter. The progress value is trusted as-is
// beyond being non-negative; it is advisory UI state, not a scoring input.
func (s *SessionStore) CastVote(code, playerID, gameID string, decision models.VoteDecision, progress int) error {
	switch decision {
	case models.DecisionLike, models.DecisionSkip, models.DecisionPick:
	default:
		return fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}
	if gameID == "" {
		return fmt.Errorf("%w: game id is required", ErrValidation)
	}
	if progress < 0 {
		return fmt.Errorf("%w: progress cannot be negative", ErrValidation)
	}

	session, err := s.activeSession(code)
	if err != nil {
		return err
	}
	if _, err := findPlayer(session, playerID); err != nil {
		return err
	}

	vote := models.SessionVote{
		SessionID: session.ID,
		PlayerID:  playerID,
		GameID:    gameID,
		Decision:  decision,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "player_id"}, {Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"decision", "updated_at"}),
	}).Create(&vote).Error
	if err != nil {
		return err
	}

	return s.db.Model(&models.SessionPlayer{}).
		Where("id = ?", playerID).
		Update("progress", progress).Error
}

// CompletePlayer marks the player done and reports whether every player in
// the session is now done. It does not transition the session itself; that
// is the host's call.
func (s *SessionStore) CompletePlayer(code, playerID string) (bool, []models.SessionPlayer, error) {
	session, err := s.activeSession(code)
	if err != nil {
		return false, nil, err
	}
	if _, err := findPlayer(session, playerID); err != nil {
		return false, nil, err
	}

	err = s.db.Model(&models.SessionPlayer{}).
		Where("id = ?", playerID).
		Update("status", models.PlayerStatusDone).Error
	if err != nil {
		return false, nil, err
	}

	var players []models.SessionPlayer
	if err := s.db.Where("session_id = ?", session.ID).Order("created_at").Find(&players).Error; err != nil {
		return false, nil, err
	}

	allDone := true
	for _, p := range players {
		if p.Status != models.PlayerStatusDone {
			allDone = false
			break
		}
	}
	return allDone, players, nil
}

// EndSession freezes the session: host-only, computes the vote aggregation
// exactly once and persists its output. Every later results read returns
// the stored snapshot verbatim, so tie-break ordering never changes after
// completion.
func (s *SessionStore) EndSession(code, playerID string) (*models.PickSession, error) {
	session, err := s.sessionByCode(code)
	if err != nil {
		return nil, err
	}

	player, err := findPlayer(session, playerID)
	if err != nil {
		return nil, err
	}
	if !player.IsHost {
		return nil, ErrForbidden
	}
	if session.Status != models.SessionStatusActive {
		return nil, ErrInvalidState
	}

	votes, err := s.VotesForSession(session.ID)
	if err != nil {
		return nil, err
	}

	results := picker.Aggregate(session.GameIDs, session.Players, votes)
	now := time.Now()

	session.Status = models.SessionStatusCompleted
	session.CompletedAt = &now
	session.Results = results
	err = s.db.Model(session).Select("status", "completed_at", "results").Updates(session).Error
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession hydrates a session and its players, ordered by join time.
func (s *SessionStore) GetSession(code string) (*models.PickSession, error) {
	return s.sessionByCode(code)
}

// VotesForSession returns every vote cast in the session.
func (s *SessionStore) VotesForSession(sessionID uint) ([]models.SessionVote, error) {
	var votes []models.SessionVote
	if err := s.db.Where("session_id = ?", sessionID).Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

// DeleteOlderThan removes sessions (and their players/votes) completed or
// abandoned before the cutoff. Administrative cleanup only.
func (s *SessionStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	var sessions []models.PickSession
	if err := s.db.Where("created_at < ?", cutoff).Find(&sessions).Error; err != nil {
		return 0, err
	}
	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, session := range sessions {
			if err := tx.Where("session_id = ?", session.ID).Delete(&models.SessionVote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("session_id = ?", session.ID).Delete(&models.SessionPlayer{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Delete(&models.PickSession{}, session.ID).Error; err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *SessionStore) sessionByCode(code string) (*models.PickSession, error) {
	var session models.PickSession
	err := s.db.Preload("Players", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at")
	}).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) activeSession(code string) (*models.PickSession, error) {
	session, err := s.sessionByCode(code)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusActive {
		return nil, ErrInvalidState
	}
	return session, nil
}

func findPlayer(session *models.PickSession, playerID string) (*models.SessionPlayer, error) {
	for i := range session.Players {
		if session.Players[i].ID == playerID {
			return &session.Players[i], nil
		}
	}
	return nil, fmt.Errorf("%w: player is not part of this session", ErrNotFound)
}
