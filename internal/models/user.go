package models

import "gorm.io/gorm"

// User represents an account that can log in to manage the collection.
// Pick-session participants are NOT users; see SessionPlayer.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`
}
