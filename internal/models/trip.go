package models

import (
	"time"

	"gorm.io/gorm"
)

// Trip is the top-level container for a hiking journey. It owns bags.
type Trip struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Name      string         `gorm:"not null" json:"name"`
	About     string         `gorm:"type:text" json:"about"`
	Distance  float64        `json:"distance"`
	StartDate *time.Time     `json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	ImageURL  string         `json:"image_url"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Bags      []Bag          `gorm:"foreignKey:TripID" json:"bags,omitempty"`
}
