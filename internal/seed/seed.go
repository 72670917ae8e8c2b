// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"biling/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Neighborhood names used for listing and user locations.
var neighborhoods = []string{
	"Yeoksam-dong", "Seocho-dong", "Banpo-dong", "Jamsil-dong", "Sinsa-dong",
	"Cheongdam-dong", "Daechi-dong", "Gaepo-dong", "Songpa-dong", "Garak-dong",
}

// Seoul-ish bounding box for generated coordinates. Keeping everything inside
// one metro area makes the radius filters return useful demo results.
const (
	minLat = 37.49
	maxLat = 37.57
	minLon = 126.97
	maxLon = 127.10
)

// Run populates the database with demo users, listings, images and reviews.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 100
	}

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("failed to clean tables: %w", err)
		}
	}

	f := NewFactory(db, r)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		writer := users[r.Intn(len(users))]
		post, err := f.CreatePost(writer)
		if err != nil {
			return fmt.Errorf("failed to create post %d: %w", i, err)
		}
		posts = append(posts, post)
	}
	log.Printf("Seeded %d posts", len(posts))

	reviews := 0
	for _, post := range posts {
		if post.Status != models.PostStatusCompleted {
			continue
		}
		// Roughly two thirds of completed trades get a review.
		if r.Intn(3) == 0 {
			continue
		}
		reviewer := users[r.Intn(len(users))]
		if reviewer.ID == post.WriterID {
			continue
		}
		if err := f.CreateReview(post, reviewer); err != nil {
			return fmt.Errorf("failed to create review for post %d: %w", post.ID, err)
		}
		reviews++
	}
	log.Printf("Seeded %d reviews", reviews)

	return nil
}

func clean(db *gorm.DB) error {
	tables := []string{"reviews", "post_images", "posts", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	log.Println("Cleaned existing seed tables")
	return nil
}

// hashPassword hashes the shared demo password once per call site.
func hashPassword(plain string) string {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(hashed)
}
