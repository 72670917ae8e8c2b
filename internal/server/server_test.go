package server

import (
	"net/http/httptest"
	"testing"

	"biling/internal/config"
	"biling/internal/repository"
	"biling/internal/service"
	"biling/internal/storage"
	"biling/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "unit-test-secret"

// newTestServer wires a Server over an in-memory database, skipping the
// metrics middleware so repeated constructions do not re-register collectors.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db := testutil.OpenTestDB(t)
	cfg := &config.Config{
		JWTSecret:     testJWTSecret,
		Env:           "test",
		UploadDir:     t.TempDir(),
		UploadBaseURL: "http://localhost:8370/uploads",
		UploadMaxMB:   10,
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	imageRepo := repository.NewPostImageRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	uploader := storage.NewDiskUploader(cfg)

	s := &Server{
		config:     cfg,
		db:         db,
		userRepo:   userRepo,
		postRepo:   postRepo,
		imageRepo:  imageRepo,
		reviewRepo: reviewRepo,
		uploader:   uploader,
	}
	s.postService = service.NewPostService(postRepo, imageRepo, userRepo, reviewRepo, uploader)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

func TestLivenessCheck(t *testing.T) {
	t.Parallel()

	_, app, _ := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestReadinessCheck(t *testing.T) {
	t.Parallel()

	_, app, _ := newTestServer(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/ready", nil))
	require.NoError(t, err)
	// Database is up, redis is absent; the probe still reports ready.
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	_, app, _ := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		resp, err := app.Test(httptest.NewRequest("GET", "/api/users/me/posts", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/api/users/me/posts", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest("GET", "/api/users/me/posts", nil)
		req.Header.Set("Authorization", "Bearer "+testutil.MintToken(t, "other-secret", 1))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
