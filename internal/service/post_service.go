// Package service contains the business logic for listings: authoring,
// detail shaping, per-user views and the filtered browse pipeline.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"biling/internal/middleware"
	"biling/internal/models"
	"biling/internal/repository"
	"biling/internal/storage"
)

// PostService coordinates listing reads and writes across the stores and the
// media uploader.
type PostService struct {
	postRepo   repository.PostRepository
	imageRepo  repository.PostImageRepository
	userRepo   repository.UserRepository
	reviewRepo repository.ReviewRepository
	uploader   storage.Uploader
	now        func() time.Time
}

// NewPostService creates a new post service.
func NewPostService(
	postRepo repository.PostRepository,
	imageRepo repository.PostImageRepository,
	userRepo repository.UserRepository,
	reviewRepo repository.ReviewRepository,
	uploader storage.Uploader,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		imageRepo:  imageRepo,
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		uploader:   uploader,
		now:        time.Now,
	}
}

// CreatePostInput carries the raw authoring fields. Enum fields arrive as
// wire strings and are parsed against their closed sets here.
type CreatePostInput struct {
	Type              string
	Category          string
	Distance          string
	Title             string
	Content           string
	Price             int
	LocationName      string
	LocationLatitude  float64
	LocationLongitude float64
}

// PostDetail is the full single-listing projection.
type PostDetail struct {
	PostID             uint              `json:"post_id"`
	IsMyPost           bool              `json:"is_my_post"`
	WriterID           uint              `json:"writer_id"`
	WriterNickname     string            `json:"writer_nickname"`
	WriterProfileImage string            `json:"writer_profile_image"`
	Type               models.PostType   `json:"type"`
	Category           models.Category   `json:"category"`
	Distance           models.Distance   `json:"distance"`
	Status             models.PostStatus `json:"status"`
	Title              string            `json:"title"`
	Content            string            `json:"content"`
	Price              int               `json:"price"`
	LocationName       string            `json:"location_name"`
	LocationLatitude   float64           `json:"location_latitude"`
	LocationLongitude  float64           `json:"location_longitude"`
	CreatedAt          time.Time         `json:"created_at"`
	ImageURLs          []string          `json:"image_urls"`
}

// PostPreview is the list projection for a user's own listings. ReviewID is
// present only for completed listings that already have a review about the
// owner.
type PostPreview struct {
	PostID       uint              `json:"post_id"`
	Title        string            `json:"title"`
	Price        int               `json:"price"`
	PreviewImage *string           `json:"preview_image,omitempty"`
	LocationName string            `json:"location_name"`
	Type         models.PostType   `json:"post_type"`
	Status       models.PostStatus `json:"post_status"`
	ReviewID     *uint             `json:"review_id,omitempty"`
}

// FilteredPostPreview is the browse-list projection.
type FilteredPostPreview struct {
	PostID       uint              `json:"post_id"`
	Title        string            `json:"title"`
	Price        int               `json:"price"`
	PreviewImage *string           `json:"preview_image,omitempty"`
	LocationName string            `json:"location_name"`
	Type         models.PostType   `json:"post_type"`
	Status       models.PostStatus `json:"post_status"`
}

// CreatePost validates the fields, persists the listing and then its images.
// The post row must exist before any upload because its ID namespaces the
// stored objects; the row commit and the storage writes are therefore not
// atomic. If an upload or the image batch insert fails, the already-committed
// row is removed again (compensating cleanup) so no half-created listing
// stays visible.
func (s *PostService) CreatePost(ctx context.Context, writerID uint, in CreatePostInput, images []storage.File) (*models.Post, error) {
	writer, err := s.userRepo.GetByID(ctx, writerID)
	if err != nil {
		return nil, err
	}

	postType, err := models.ParsePostType(in.Type)
	if err != nil {
		return nil, err
	}
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	distance, err := models.ParseDistance(in.Distance)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Price < 0 {
		return nil, models.NewValidationError("Price must not be negative")
	}

	now := s.now()
	post := &models.Post{
		WriterID:          writer.ID,
		Type:              postType,
		Category:          category,
		Distance:          distance,
		Title:             in.Title,
		Content:           in.Content,
		Price:             in.Price,
		LocationName:      in.LocationName,
		LocationLatitude:  in.LocationLatitude,
		LocationLongitude: in.LocationLongitude,
		Status:            models.PostStatusActive,
		ExpiresAt:         now.Add(models.ExpirationWindow),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if len(images) > 0 {
		urls, err := s.uploader.UploadMany(ctx, images, fmt.Sprintf("posts/%d", post.ID))
		if err != nil {
			s.cleanupPost(ctx, post.ID)
			return nil, err
		}

		rows := make([]*models.PostImage, len(urls))
		for i, url := range urls {
			rows[i] = &models.PostImage{
				PostID:   post.ID,
				URL:      url,
				Sequence: i + 1,
			}
		}
		if err := s.imageRepo.CreateBatch(ctx, rows); err != nil {
			s.cleanupPost(ctx, post.ID)
			return nil, err
		}

		post.Images = make([]models.PostImage, len(rows))
		for i, row := range rows {
			post.Images[i] = *row
		}
	}

	return post, nil
}

// cleanupPost removes a listing whose image pipeline failed after the row was
// committed. Best effort: a failed cleanup is logged, not returned, since the
// original failure is the error the caller needs.
func (s *PostService) cleanupPost(ctx context.Context, postID uint) {
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to clean up post after image failure",
			slog.Uint64("post_id", uint64(postID)),
			slog.String("error", err.Error()),
		)
	}
}

// GetPostDetail shapes a single listing for display to the given viewer.
func (s *PostService) GetPostDetail(ctx context.Context, postID, viewerID uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	imageURLs := make([]string, 0, len(post.Images))
	for _, img := range post.Images {
		imageURLs = append(imageURLs, img.URL)
	}

	return &PostDetail{
		PostID:             post.ID,
		IsMyPost:           post.WriterID == viewerID,
		WriterID:           post.WriterID,
		WriterNickname:     post.Writer.Nickname,
		WriterProfileImage: post.Writer.ProfileImage,
		Type:               post.Type,
		Category:           post.Category,
		Distance:           post.Distance,
		Status:             post.Status,
		Title:              post.Title,
		Content:            post.Content,
		Price:              post.Price,
		LocationName:       post.LocationName,
		LocationLatitude:   post.LocationLatitude,
		LocationLongitude:  post.LocationLongitude,
		CreatedAt:          post.CreatedAt,
		ImageURLs:          imageURLs,
	}, nil
}

// GetPostsByUser returns every listing the user authored, newest first.
// Expired listings are included: the author keeps seeing their own history.
func (s *PostService) GetPostsByUser(ctx context.Context, ownerID uint) ([]*PostPreview, error) {
	posts, err := s.postRepo.GetByWriterID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	previews := make([]*PostPreview, 0, len(posts))
	for _, post := range posts {
		previewImage, err := s.previewImage(ctx, post.ID)
		if err != nil {
			return nil, err
		}

		preview := &PostPreview{
			PostID:       post.ID,
			Title:        post.Title,
			Price:        post.Price,
			PreviewImage: previewImage,
			LocationName: post.LocationName,
			Type:         post.Type,
			Status:       post.Status,
		}

		// A review can only exist once the trade is completed.
		if post.Status == models.PostStatusCompleted {
			review, err := s.reviewRepo.GetByPostAndReviewee(ctx, post.ID, ownerID)
			if err != nil {
				return nil, err
			}
			if review != nil {
				id := review.ID
				preview.ReviewID = &id
			}
		}

		previews = append(previews, preview)
	}

	return previews, nil
}

// GetFilteredPosts runs the browse pipeline: a conjunction of type, category,
// radius, keyword and expiration predicates over all listings, anchored at
// the viewer's stored location. Results are newest first. An empty result is
// valid; malformed filter values are caller errors.
func (s *PostService) GetFilteredPosts(ctx context.Context, typ, category, radius, keyword string, viewerID uint) ([]*FilteredPostPreview, error) {
	postType, err := models.ParsePostType(typ)
	if err != nil {
		return nil, err
	}

	filterCategory := false
	var wantCategory models.Category
	if category != "" && !strings.EqualFold(category, models.CategoryAll) {
		wantCategory, err = models.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		filterCategory = true
	}

	radiusKm, filterRadius, err := parseRadiusKm(radius)
	if err != nil {
		return nil, err
	}

	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	previews := make([]*FilteredPostPreview, 0)
	for _, post := range posts {
		if post.Type != postType {
			continue
		}
		if filterCategory && post.Category != wantCategory {
			continue
		}
		if filterRadius {
			dist := haversineKm(
				viewer.LocationLatitude, viewer.LocationLongitude,
				post.LocationLatitude, post.LocationLongitude,
			)
			// Boundary is inclusive: a listing at exactly radiusKm stays in.
			if dist > radiusKm {
				continue
			}
		}
		if !matchesKeyword(post.Title, keyword) {
			continue
		}
		if !post.Active(now) {
			continue
		}

		previewImage, err := s.previewImage(ctx, post.ID)
		if err != nil {
			return nil, err
		}
		previews = append(previews, &FilteredPostPreview{
			PostID:       post.ID,
			Title:        post.Title,
			Price:        post.Price,
			PreviewImage: previewImage,
			LocationName: post.LocationName,
			Type:         post.Type,
			Status:       post.Status,
		})
	}

	return previews, nil
}

// previewImage resolves the representative image URL (lowest sequence) for a
// listing, or nil when the listing has no images.
func (s *PostService) previewImage(ctx context.Context, postID uint) (*string, error) {
	img, err := s.imageRepo.GetTopByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, nil
	}
	url := img.URL
	return &url, nil
}
