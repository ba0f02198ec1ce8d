package models

import (
	"time"

	"gorm.io/gorm"
)

// RegisteredPlayer is a person in the household player registry, used for
// logging plays. Distinct from SessionPlayer, which is scoped to one
// pick session.
type RegisteredPlayer struct {
	gorm.Model
	Name   string `gorm:"size:255;unique;not null"`
	Avatar string `gorm:"size:512"`
}

// Play is one logged play session of a game.
type Play struct {
	gorm.Model
	GameID   uint      `gorm:"not null;index"`
	PlayedAt time.Time `gorm:"not null;index"`
	Location string    `gorm:"size:255"`
	Notes    string

	Game         Game              `gorm:"foreignKey:GameID"`
	Participants []PlayParticipant `gorm:"foreignKey:PlayID;constraint:OnDelete:CASCADE"`
}

// PlayParticipant records one player's involvement in a play.
type PlayParticipant struct {
	gorm.Model
	PlayID   uint `gorm:"not null;index"`
	PlayerID uint `gorm:"not null;index"`
	Score    *int
	Won      bool
	IsNew    bool

	Player RegisteredPlayer `gorm:"foreignKey:PlayerID"`
}
