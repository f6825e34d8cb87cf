package db

import "gorm.io/gorm"

// JobPosting is an open position on the careers page.
type JobPosting struct {
	gorm.Model
	Title          string `gorm:"not null"`
	Location       string
	EmploymentType string // full-time, part-time, contract
	Description    string `gorm:"type:text"`
	Open           bool   `gorm:"default:true"`
}
