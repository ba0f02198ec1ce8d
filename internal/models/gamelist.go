package models

import "gorm.io/gorm"

// GameList is an admin-curated custom list of games (e.g. "Two-player
// favorites", "Gateway games").
type GameList struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	Slug        string `gorm:"size:255;uniqueIndex;not null"`
	Description string

	Entries []GameListEntry `gorm:"foreignKey:GameListID;constraint:OnDelete:CASCADE"`
}

// GameListEntry is one game's position within a list.
type GameListEntry struct {
	gorm.Model
	GameListID uint `gorm:"not null;index:idx_list_game,unique"`
	GameID     uint `gorm:"not null;index:idx_list_game,unique"`
	Position   int  `gorm:"not null"`

	Game Game `gorm:"foreignKey:GameID"`
}
