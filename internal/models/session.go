package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type SessionType string

const (
	SessionTypeSolo          SessionType = "solo"
	SessionTypeCollaborative SessionType = "collaborative"
)

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

type PlayerStatus string

const (
	PlayerStatusPicking PlayerStatus = "picking"
	PlayerStatusDone    PlayerStatus = "done"
)

type VoteDecision string

const (
	DecisionLike VoteDecision = "like"
	DecisionSkip VoteDecision = "skip"
	DecisionPick VoteDecision = "pick"
)

// PickSession is one instance of the "swipe to pick a game" workflow,
// identified by a short human-enterable join code.
type PickSession struct {
	gorm.Model
	Code     string        `gorm:"size:6;uniqueIndex;not null"`
	Type     SessionType   `gorm:"size:20;not null"`
	HostName string        `gorm:"size:255;not null"`
	Status   SessionStatus `gorm:"size:20;not null;default:'active';index"`

	// GameIDs is the candidate list, fixed at creation. Order matters:
	// every read returns games in exactly this order.
	GameIDs []string `gorm:"serializer:json;type:text;not null"`

	// Filters is the filter-criteria snapshot the session was created
	// with. Stored and echoed back verbatim; nothing here interprets it.
	Filters json.RawMessage `gorm:"serializer:json;type:text"`

	WinnerGameID *string    `gorm:"size:32"`
	CompletedAt  *time.Time

	// Results is written exactly once, when the host ends the session.
	// It holds vote tallies only, never game metadata.
	Results *SessionResults `gorm:"serializer:json;type:text"`

	Players []SessionPlayer `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

// SessionPlayer is a participant within one pick session. Identified by a
// uuid handed to the client on join; no account required.
type SessionPlayer struct {
	ID        string       `gorm:"primaryKey;size:36"`
	SessionID uint         `gorm:"not null;index"`
	Name      string       `gorm:"size:255;not null"`
	IsHost    bool         `gorm:"not null;default:false"`
	Status    PlayerStatus `gorm:"size:20;not null;default:'picking'"`
	Progress  int          `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionVote is one player's current decision for one candidate game.
// Unique per (session, player, game); a new swipe overwrites the old row.
type SessionVote struct {
	ID        uint         `gorm:"primaryKey"`
	SessionID uint         `gorm:"not null;uniqueIndex:idx_vote_triple"`
	PlayerID  string       `gorm:"size:36;not null;uniqueIndex:idx_vote_triple"`
	GameID    string       `gorm:"size:32;not null;uniqueIndex:idx_vote_triple"`
	Decision  VoteDecision `gorm:"size:10;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteTally is the durable, metadata-free scoring record for one game.
// Display metadata (name, image, rating) is re-resolved from the catalog on
// every read so that catalog edits never invalidate stored results.
type VoteTally struct {
	GameID    string   `json:"gameId"`
	Likes     int      `json:"likes"`
	Picks     int      `json:"picks"`
	Skips     int      `json:"skips"`
	LikedBy   []string `json:"likedBy"`
	PickedBy  []string `json:"pickedBy"`
	Unanimous bool     `json:"unanimous"`
}

// SessionResults is the aggregated outcome of a session's votes.
type SessionResults struct {
	UnanimousMatches []VoteTally `json:"unanimousMatches"`
	RankedResults    []VoteTally `json:"rankedResults"`
	TotalGames       int         `json:"totalGames"`
	TotalPlayers     int         `json:"totalPlayers"`
}
