package db

import "gorm.io/gorm"

// Offering is a company service shown on the public services page,
// e.g. general contracting or design-build.
type Offering struct {
	gorm.Model
	Title     string `gorm:"not null"`
	Summary   string
	Body      string `gorm:"type:text"`
	Icon      string
	Published bool `gorm:"default:true"`
	SortOrder int  `gorm:"default:0"`
}
