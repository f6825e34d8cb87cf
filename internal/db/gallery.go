package db

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GalleryImage is one persisted image in an owner's gallery. The owner is
// either a project or a blog post, identified by kind plus id.
type GalleryImage struct {
	gorm.Model
	OwnerKind    string `gorm:"index:idx_gallery_owner;not null"`
	OwnerID      uint   `gorm:"index:idx_gallery_owner;not null"`
	ImageURL     string `gorm:"not null"`
	Caption      string
	DisplayOrder *int
	IsFeature    bool `gorm:"default:false"`
}

// UploadSession is the provider-side session ledger. A row is created when a
// batch upload starts; Committed marks its files as retained, and
// RetainedURLs holds the preserve set passed on the latest commit so the
// sweeper never reclaims a URL still in use.
type UploadSession struct {
	gorm.Model
	SessionID    string `gorm:"uniqueIndex;size:64;not null"`
	OwnerKey     string `gorm:"index"`
	Committed    bool   `gorm:"default:false"`
	RetainedURLs datatypes.JSON
}
