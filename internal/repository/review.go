package repository

import (
	"context"
	"errors"

	"biling/internal/models"
	"biling/internal/observability"

	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	// GetByPostAndReviewee returns the review written for the given post
	// about the given user, or nil when none exists.
	GetByPostAndReviewee(ctx context.Context, postID, revieweeID uint) (*models.Review, error)
}

// reviewRepository implements ReviewRepository
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	defer observability.TrackQuery("create", "reviews")()
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) GetByPostAndReviewee(ctx context.Context, postID, revieweeID uint) (*models.Review, error) {
	defer observability.TrackQuery("get_by_post_and_reviewee", "reviews")()

	var review models.Review
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND reviewee_id = ?", postID, revieweeID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}
