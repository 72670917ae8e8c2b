package models

import (
	"fmt"
	"strings"
	"time"
)

// PostType distinguishes items offered for sharing from borrow requests.
type PostType string

const (
	PostTypeShare  PostType = "SHARE"
	PostTypeBorrow PostType = "BORROW"
)

// ParsePostType maps a wire value onto the closed PostType enum.
// Matching is case-insensitive; unknown values fail with a validation error.
func ParsePostType(s string) (PostType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(PostTypeShare):
		return PostTypeShare, nil
	case string(PostTypeBorrow):
		return PostTypeBorrow, nil
	}
	return "", NewValidationError(fmt.Sprintf("Invalid post type %q", s))
}

// Category is the closed set of listing categories.
type Category string

const (
	CategoryDigital   Category = "DIGITAL"
	CategoryFurniture Category = "FURNITURE"
	CategoryClothing  Category = "CLOTHING"
	CategoryBooks     Category = "BOOKS"
	CategorySports    Category = "SPORTS"
	CategoryLiving    Category = "LIVING"
	CategoryEtc       Category = "ETC"
)

// CategoryAll is the request sentinel meaning "all categories". It is not a
// member of the enum and never appears on a stored post.
const CategoryAll = "ALL"

// Categories lists every member of the Category enum.
func Categories() []Category {
	return []Category{
		CategoryDigital, CategoryFurniture, CategoryClothing,
		CategoryBooks, CategorySports, CategoryLiving, CategoryEtc,
	}
}

// ParseCategory maps a wire value onto the closed Category enum.
func ParseCategory(s string) (Category, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range Categories() {
		if up == string(c) {
			return c, nil
		}
	}
	return "", NewValidationError(fmt.Sprintf("Invalid category %q", s))
}

// PostStatus is the listing lifecycle state. Completed is terminal.
type PostStatus string

const (
	PostStatusActive    PostStatus = "ACTIVE"
	PostStatusReserved  PostStatus = "RESERVED"
	PostStatusCompleted PostStatus = "COMPLETED"
)

// Distance is the author's preferred meeting radius, shown on the detail
// view. It is a display bucket, unrelated to the browse-time radius filter.
type Distance string

const (
	DistanceWithin3km  Distance = "3km"
	DistanceWithin5km  Distance = "5km"
	DistanceWithin10km Distance = "10km"
	DistanceUnlimited  Distance = "unlimited"
)

// ParseDistance maps a wire value onto the closed Distance enum.
func ParseDistance(s string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(DistanceWithin3km):
		return DistanceWithin3km, nil
	case string(DistanceWithin5km):
		return DistanceWithin5km, nil
	case string(DistanceWithin10km):
		return DistanceWithin10km, nil
	case string(DistanceUnlimited):
		return DistanceUnlimited, nil
	}
	return "", NewValidationError(fmt.Sprintf("Invalid distance %q", s))
}

// ExpirationWindow is the fixed lifetime of a listing from creation.
const ExpirationWindow = 180 * 24 * time.Hour

// Post represents a marketplace listing.
type Post struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	WriterID          uint       `gorm:"not null;index" json:"writer_id"`
	Writer            User       `gorm:"foreignKey:WriterID" json:"-"`
	Type              PostType   `gorm:"type:varchar(16);not null;index" json:"type"`
	Category          Category   `gorm:"type:varchar(16);not null;index" json:"category"`
	Title             string     `gorm:"not null" json:"title"`
	Content           string     `gorm:"type:text" json:"content"`
	Price             int        `gorm:"not null" json:"price"`
	Distance          Distance   `gorm:"type:varchar(16);not null" json:"distance"`
	LocationName      string     `json:"location_name"`
	LocationLatitude  float64    `json:"location_latitude"`
	LocationLongitude float64    `json:"location_longitude"`
	Status            PostStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	// ExpiresAt is always CreatedAt + ExpirationWindow, set at creation.
	ExpiresAt time.Time   `gorm:"not null;index" json:"expires_at"`
	Images    []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Active reports whether the listing is still visible in filtered browsing
// at the given instant. Expired listings stay visible to their own author.
func (p *Post) Active(now time.Time) bool {
	return p.ExpiresAt.After(now)
}

// PostImage belongs to exactly one post. Sequence is 1-based and gapless by
// construction; the image with sequence 1 is the listing's representative.
type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_images_post_seq" json:"post_id"`
	URL       string    `gorm:"not null" json:"url"`
	Sequence  int       `gorm:"not null;uniqueIndex:idx_post_images_post_seq" json:"sequence"`
	CreatedAt time.Time `json:"created_at"`
}
