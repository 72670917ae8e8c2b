package repository

import (
	"context"
	"errors"

	"biling/internal/models"
	"biling/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID loads a post with its writer and images in sequence order.
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetByWriterID returns every post by the writer, newest first,
	// including expired ones.
	GetByWriterID(ctx context.Context, writerID uint) ([]*models.Post, error)
	// List returns all posts, newest first.
	List(ctx context.Context) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "posts")()

	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Writer").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_images.sequence ASC")
		}).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByWriterID(ctx context.Context, writerID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("get_by_writer_id", "posts")()

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("writer_id = ?", writerID).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	var posts []*models.Post
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}
