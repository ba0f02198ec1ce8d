package models

import "gorm.io/gorm"

// Setting is a single key/value application setting.
type Setting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"not null"`
}
