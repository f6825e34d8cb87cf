package db

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog article, stored as markdown.
type Post struct {
	gorm.Model
	Slug        string `gorm:"uniqueIndex;not null"`
	Title       string `gorm:"not null"`
	Summary     string
	Body        string `gorm:"type:text"`
	Status      string `gorm:"default:draft"` // draft, published
	PublishedAt *time.Time
}
