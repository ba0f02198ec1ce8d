package models

import "gorm.io/gorm"

// Game represents a board game in the catalog, imported from BoardGameGeek
// or created by an admin.
type Game struct {
	gorm.Model
	BGGID           string `gorm:"size:32;uniqueIndex;not null"`
	Name            string `gorm:"size:255;not null;index"`
	Description     string
	Image           string `gorm:"size:512"`
	Thumbnail       string `gorm:"size:512"`
	YearPublished   int
	MinPlayers      int
	MaxPlayers      int
	PlayTimeMinutes int
	Rating          float64
	Weight          float64
	KidFriendly     bool
	IsExpansion     bool `gorm:"index"`
	Owned           bool `gorm:"default:true"`

	Categories []*Category `gorm:"many2many:game_categories;"`
}
