package models

import "gorm.io/gorm"

// Category represents a game category (e.g. "Strategy", "Party", "Co-op").
type Category struct {
	gorm.Model
	Name string `gorm:"size:100;unique;not null"`
}
