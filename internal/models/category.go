package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is a named grouping of items within a bag (e.g. "Clothes").
// Position is unique-ranked per bag; reordering rewrites the full sequence.
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TripID   uint   `gorm:"not null;index" json:"trip_id"`
	BagID    uint   `gorm:"not null;index" json:"bag_id"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	Name     string `gorm:"not null" json:"name"`
	Position int    `gorm:"not null;default:0" json:"position"`
	Color    string `json:"color"`
	// TotalWeight and TotalWornWeight are never persisted; they are recomputed
	// from items on every read so they cannot drift from source data.
	TotalWeight     float64        `gorm:"-" json:"total_weight"`
	TotalWornWeight float64        `gorm:"-" json:"total_worn_weight"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	Items           []Item         `gorm:"foreignKey:CategoryID" json:"items,omitempty"`
}
