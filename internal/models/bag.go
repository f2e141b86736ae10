package models

import (
	"time"

	"gorm.io/gorm"
)

// Bag is a packing list with a weight goal. It owns categories.
// ExploreBags marks the bag for the public community listing; share links
// address a bag by ID regardless of that flag.
type Bag struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TripID      uint           `gorm:"not null;index" json:"trip_id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Goal        string         `json:"goal"`
	Passed      bool           `gorm:"not null;default:false" json:"passed"`
	Likes       int            `gorm:"not null;default:0" json:"likes"`
	ExploreBags bool           `gorm:"not null;default:false;index" json:"explore_bags"`
	ImageURL    string         `json:"image_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Categories  []Category     `gorm:"foreignKey:BagID" json:"categories,omitempty"`
}
