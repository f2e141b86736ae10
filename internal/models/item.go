package models

import (
	"time"

	"gorm.io/gorm"
)

// Item priorities.
const (
	PriorityLow  = "low"
	PriorityMed  = "med"
	PriorityHigh = "high"
)

// Item is a single packable thing with weight, quantity, and unit.
// WeightUnit may be empty, in which case the owner's preferred unit applies.
type Item struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TripID      uint           `gorm:"not null;index" json:"trip_id"`
	BagID       uint           `gorm:"not null;index" json:"bag_id"`
	CategoryID  uint           `gorm:"not null;index" json:"category_id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Name        string         `gorm:"not null" json:"name"`
	Qty         int            `gorm:"not null;default:1" json:"qty"`
	Description string         `gorm:"type:text" json:"description"`
	Weight      float64        `json:"weight"`
	WeightUnit  string         `json:"weight_unit"`
	Priority    string         `gorm:"not null;default:low" json:"priority"`
	Worn        bool           `gorm:"not null;default:false" json:"worn"`
	Link        string         `json:"link"`
	ImageURL    string         `json:"image_url"`
	Position    int            `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidPriority reports whether p is a supported item priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMed, PriorityHigh:
		return true
	}
	return false
}
