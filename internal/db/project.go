package db

import (
	"time"

	"gorm.io/gorm"
)

// Project is a construction project shown in the public portfolio.
type Project struct {
	gorm.Model
	Slug        string `gorm:"uniqueIndex;not null"`
	Title       string `gorm:"not null"`
	Summary     string
	Body        string `gorm:"type:text"`
	Location    string
	Client      string
	Status      string `gorm:"default:draft"` // draft, published
	CompletedAt *time.Time
	SortOrder   int `gorm:"default:0"`
}
