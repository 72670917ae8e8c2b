package seed

import (
	"fmt"
	"math/rand"
	"time"

	"biling/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, r *rand.Rand) *Factory {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Factory{db: db, r: r}
}

// CreateUser constructs and persists a demo user located somewhere in the
// seeded metro area. Optional override functions may modify the generated
// user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Nickname:          gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:             gofakeit.Email(),
		Password:          hashPassword("password123"),
		ProfileImage:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		LocationName:      neighborhoods[f.r.Intn(len(neighborhoods))],
		LocationLatitude:  f.randomLatitude(),
		LocationLongitude: f.randomLongitude(),
	}

	// A few users have never set a profile image.
	if f.r.Intn(5) == 0 {
		user.ProfileImage = ""
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a demo listing for the given writer,
// together with 0-4 images. Status, age and expiry are spread so the browse
// filters have something to include and exclude.
func (f *Factory) CreatePost(writer *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	types := []models.PostType{models.PostTypeShare, models.PostTypeBorrow}
	categories := models.Categories()
	distances := []models.Distance{
		models.DistanceWithin3km, models.DistanceWithin5km,
		models.DistanceWithin10km, models.DistanceUnlimited,
	}
	statuses := []models.PostStatus{
		models.PostStatusActive, models.PostStatusActive, models.PostStatusActive,
		models.PostStatusReserved, models.PostStatusCompleted,
	}

	createdAt := time.Now().Add(-time.Duration(f.r.Intn(200*24)) * time.Hour)

	post := &models.Post{
		WriterID:          writer.ID,
		Type:              types[f.r.Intn(len(types))],
		Category:          categories[f.r.Intn(len(categories))],
		Distance:          distances[f.r.Intn(len(distances))],
		Title:             gofakeit.ProductName(),
		Content:           gofakeit.Paragraph(1, 3, 8, "\n"),
		Price:             gofakeit.Number(0, 50) * 1000,
		LocationName:      writer.LocationName,
		LocationLatitude:  writer.LocationLatitude + f.jitter(),
		LocationLongitude: writer.LocationLongitude + f.jitter(),
		Status:            statuses[f.r.Intn(len(statuses))],
		ExpiresAt:         createdAt.Add(models.ExpirationWindow),
		CreatedAt:         createdAt,
	}

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}

	numImages := f.r.Intn(5)
	if numImages > 0 {
		images := make([]*models.PostImage, numImages)
		for i := range images {
			images[i] = &models.PostImage{
				PostID:   post.ID,
				Sequence: i + 1,
				URL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
			}
		}
		if err := f.db.Create(&images).Error; err != nil {
			return nil, err
		}
		post.Images = make([]models.PostImage, numImages)
		for i, img := range images {
			post.Images[i] = *img
		}
	}

	return post, nil
}

// CreateReview persists a review about the post's writer.
func (f *Factory) CreateReview(post *models.Post, reviewer *models.User) error {
	review := &models.Review{
		PostID:     post.ID,
		ReviewerID: reviewer.ID,
		RevieweeID: post.WriterID,
		Content:    gofakeit.Sentence(12),
	}
	return f.db.Create(review).Error
}

func (f *Factory) randomLatitude() float64 {
	return minLat + f.r.Float64()*(maxLat-minLat)
}

func (f *Factory) randomLongitude() float64 {
	return minLon + f.r.Float64()*(maxLon-minLon)
}

// jitter offsets a listing slightly from its writer's home coordinates.
func (f *Factory) jitter() float64 {
	return (f.r.Float64() - 0.5) * 0.01
}
