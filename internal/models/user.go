// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered user. The stored location anchors
// radius-filtered browsing for this user.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Nickname string `gorm:"not null;uniqueIndex" json:"nickname"`
	Email    string `gorm:"uniqueIndex" json:"email"`
	Password string `gorm:"not null" json:"-"`
	// ProfileImage is projected as an empty string when unset, never null.
	ProfileImage      string    `json:"profile_image"`
	LocationName      string    `json:"location_name"`
	LocationLatitude  float64   `json:"location_latitude"`
	LocationLongitude float64   `json:"location_longitude"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
