package repository

import (
	"context"
	"errors"

	"biling/internal/models"
	"biling/internal/observability"

	"gorm.io/gorm"
)

// PostImageRepository defines the interface for listing image data operations
type PostImageRepository interface {
	// CreateBatch persists all images in one transaction.
	CreateBatch(ctx context.Context, images []*models.PostImage) error
	// GetByPostID returns the post's images in ascending sequence order.
	GetByPostID(ctx context.Context, postID uint) ([]*models.PostImage, error)
	// GetTopByPostID returns the image with the lowest sequence, or nil when
	// the post has no images. Zero images is a normal state, not an error.
	GetTopByPostID(ctx context.Context, postID uint) (*models.PostImage, error)
}

// postImageRepository implements PostImageRepository
type postImageRepository struct {
	db *gorm.DB
}

// NewPostImageRepository creates a new post image repository
func NewPostImageRepository(db *gorm.DB) PostImageRepository {
	return &postImageRepository{db: db}
}

func (r *postImageRepository) CreateBatch(ctx context.Context, images []*models.PostImage) error {
	if len(images) == 0 {
		return nil
	}
	defer observability.TrackQuery("create_batch", "post_images")()
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *postImageRepository) GetByPostID(ctx context.Context, postID uint) ([]*models.PostImage, error) {
	defer observability.TrackQuery("get_by_post_id", "post_images")()

	var images []*models.PostImage
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("sequence ASC").
		Find(&images).Error
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *postImageRepository) GetTopByPostID(ctx context.Context, postID uint) (*models.PostImage, error) {
	defer observability.TrackQuery("get_top_by_post_id", "post_images")()

	var img models.PostImage
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("sequence ASC").
		First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &img, nil
}
