// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Weight units a user can prefer. Items fall back to their owner's unit.
const (
	UnitPound    = "lb"
	UnitKilogram = "kg"
	UnitGram     = "g"
	UnitOunce    = "oz"
)

// Distance units for trip distances.
const (
	DistanceMiles      = "mi"
	DistanceKilometers = "km"
)

// User represents a registered Packtrail account.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"unique;not null" json:"username"`
	Email        string         `gorm:"unique;not null" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	WeightUnit   string         `gorm:"not null;default:lb" json:"weight_unit"`
	DistanceUnit string         `gorm:"not null;default:mi" json:"distance_unit"`
	IsAdmin      bool           `gorm:"not null;default:false" json:"is_admin"`
	Verified     bool           `gorm:"not null;default:false" json:"verified"`
	VerifyToken  string         `gorm:"index" json:"-"`
	ResetToken   string         `gorm:"index" json:"-"`
	ResetExpiry  *time.Time     `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Trips        []Trip         `gorm:"foreignKey:UserID" json:"trips,omitempty"`
}

// ValidWeightUnit reports whether u is one of the four supported units.
func ValidWeightUnit(u string) bool {
	switch u {
	case UnitPound, UnitKilogram, UnitGram, UnitOunce:
		return true
	}
	return false
}
