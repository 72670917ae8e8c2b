package models

import "time"

// Review links a completed listing transaction to the reviewer and the user
// being reviewed. It is surfaced on the owner's listing view so the client
// can tell whether a review for a completed trade already exists.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	Post       Post      `gorm:"foreignKey:PostID" json:"-"`
	ReviewerID uint      `gorm:"not null;index" json:"reviewer_id"`
	RevieweeID uint      `gorm:"not null;index" json:"reviewee_id"`
	Content    string    `gorm:"type:text" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
