package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"biling/internal/models"
	"biling/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	getByWriterIDFn func(context.Context, uint) ([]*models.Post, error)
	listFn          func(context.Context) ([]*models.Post, error)
	deleteFn        func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetByWriterID(ctx context.Context, writerID uint) ([]*models.Post, error) {
	return s.getByWriterIDFn(ctx, writerID)
}
func (s *postRepoStub) List(ctx context.Context) ([]*models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn:       func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		getByWriterIDFn: func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		listFn:          func(_ context.Context) ([]*models.Post, error) { return nil, nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// imageRepoStub is a stub for repository.PostImageRepository.
type imageRepoStub struct {
	createBatchFn    func(context.Context, []*models.PostImage) error
	getByPostIDFn    func(context.Context, uint) ([]*models.PostImage, error)
	getTopByPostIDFn func(context.Context, uint) (*models.PostImage, error)
}

func (s *imageRepoStub) CreateBatch(ctx context.Context, images []*models.PostImage) error {
	return s.createBatchFn(ctx, images)
}
func (s *imageRepoStub) GetByPostID(ctx context.Context, postID uint) ([]*models.PostImage, error) {
	return s.getByPostIDFn(ctx, postID)
}
func (s *imageRepoStub) GetTopByPostID(ctx context.Context, postID uint) (*models.PostImage, error) {
	return s.getTopByPostIDFn(ctx, postID)
}

func noopImageRepo() *imageRepoStub {
	return &imageRepoStub{
		createBatchFn:    func(_ context.Context, _ []*models.PostImage) error { return nil },
		getByPostIDFn:    func(_ context.Context, _ uint) ([]*models.PostImage, error) { return nil, nil },
		getTopByPostIDFn: func(_ context.Context, _ uint) (*models.PostImage, error) { return nil, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn  func(context.Context, *models.User) error
	getByIDFn func(context.Context, uint) (*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Nickname: "tester"}, nil
		},
	}
}

// reviewRepoStub is a stub for repository.ReviewRepository.
type reviewRepoStub struct {
	createFn               func(context.Context, *models.Review) error
	getByPostAndRevieweeFn func(context.Context, uint, uint) (*models.Review, error)
}

func (s *reviewRepoStub) Create(ctx context.Context, review *models.Review) error {
	return s.createFn(ctx, review)
}
func (s *reviewRepoStub) GetByPostAndReviewee(ctx context.Context, postID, revieweeID uint) (*models.Review, error) {
	return s.getByPostAndRevieweeFn(ctx, postID, revieweeID)
}

func noopReviewRepo() *reviewRepoStub {
	return &reviewRepoStub{
		createFn:               func(_ context.Context, _ *models.Review) error { return nil },
		getByPostAndRevieweeFn: func(_ context.Context, _, _ uint) (*models.Review, error) { return nil, nil },
	}
}

// uploaderStub is a stub for storage.Uploader.
type uploaderStub struct {
	uploadManyFn func(context.Context, []storage.File, string) ([]string, error)
}

func (s *uploaderStub) UploadMany(ctx context.Context, files []storage.File, namespace string) ([]string, error) {
	return s.uploadManyFn(ctx, files, namespace)
}

func noopUploader() *uploaderStub {
	return &uploaderStub{
		uploadManyFn: func(_ context.Context, files []storage.File, _ string) ([]string, error) {
			urls := make([]string, len(files))
			for i := range files {
				urls[i] = "http://cdn.test/" + files[i].Name
			}
			return urls, nil
		},
	}
}

func newTestService(posts *postRepoStub, images *imageRepoStub, users *userRepoStub, reviews *reviewRepoStub, up *uploaderStub) *PostService {
	svc := NewPostService(posts, images, users, reviews, up)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func validInput() CreatePostInput {
	return CreatePostInput{
		Type:              "SHARE",
		Category:          "BOOKS",
		Distance:          "5km",
		Title:             "Hardcover atlas",
		Content:           "Barely used",
		Price:             5000,
		LocationName:      "Seocho-dong",
		LocationLatitude:  37.49,
		LocationLongitude: 127.01,
	}
}

func TestCreatePost(t *testing.T) {
	t.Parallel()

	t.Run("persists post and numbers images from one", func(t *testing.T) {
		t.Parallel()

		var created *models.Post
		var batch []*models.PostImage
		posts := noopPostRepo()
		posts.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 42
			created = p
			return nil
		}
		images := noopImageRepo()
		images.createBatchFn = func(_ context.Context, rows []*models.PostImage) error {
			batch = rows
			return nil
		}

		svc := newTestService(posts, images, noopUserRepo(), noopReviewRepo(), noopUploader())
		post, err := svc.CreatePost(context.Background(), 7, validInput(), []storage.File{
			{Name: "front.png"}, {Name: "back.png"}, {Name: "spine.png"},
		})
		require.NoError(t, err)

		require.NotNil(t, created)
		assert.Equal(t, uint(7), created.WriterID)
		assert.Equal(t, models.PostTypeShare, created.Type)
		assert.Equal(t, models.PostStatusActive, created.Status)
		assert.Equal(t, svc.now().Add(models.ExpirationWindow), created.ExpiresAt)

		require.Len(t, batch, 3)
		for i, row := range batch {
			assert.Equal(t, uint(42), row.PostID)
			assert.Equal(t, i+1, row.Sequence)
		}
		assert.Equal(t, "http://cdn.test/front.png", batch[0].URL)
		require.Len(t, post.Images, 3)
	})

	t.Run("no images is allowed", func(t *testing.T) {
		t.Parallel()

		up := &uploaderStub{uploadManyFn: func(_ context.Context, _ []storage.File, _ string) ([]string, error) {
			t.Fatal("uploader must not be called without images")
			return nil, nil
		}}
		svc := newTestService(noopPostRepo(), noopImageRepo(), noopUserRepo(), noopReviewRepo(), up)

		post, err := svc.CreatePost(context.Background(), 7, validInput(), nil)
		require.NoError(t, err)
		assert.Empty(t, post.Images)
	})

	t.Run("unknown writer fails before validation", func(t *testing.T) {
		t.Parallel()

		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := newTestService(noopPostRepo(), noopImageRepo(), users, noopReviewRepo(), noopUploader())

		_, err := svc.CreatePost(context.Background(), 99, validInput(), nil)
		require.Error(t, err)
		assert.Equal(t, 404, models.StatusForError(err))
	})

	t.Run("rejects bad fields", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name   string
			mutate func(*CreatePostInput)
		}{
			{"invalid type", func(in *CreatePostInput) { in.Type = "LEND" }},
			{"invalid category", func(in *CreatePostInput) { in.Category = "VEHICLES" }},
			{"invalid distance", func(in *CreatePostInput) { in.Distance = "7km" }},
			{"blank title", func(in *CreatePostInput) { in.Title = "   " }},
			{"negative price", func(in *CreatePostInput) { in.Price = -1 }},
		}

		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()

				posts := noopPostRepo()
				posts.createFn = func(_ context.Context, _ *models.Post) error {
					t.Fatal("create must not be called for invalid input")
					return nil
				}
				svc := newTestService(posts, noopImageRepo(), noopUserRepo(), noopReviewRepo(), noopUploader())

				in := validInput()
				tc.mutate(&in)
				_, err := svc.CreatePost(context.Background(), 7, in, nil)
				require.Error(t, err)
				assert.Equal(t, 400, models.StatusForError(err))
			})
		}
	})

	t.Run("upload failure removes the committed post", func(t *testing.T) {
		t.Parallel()

		deleted := uint(0)
		posts := noopPostRepo()
		posts.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 42
			return nil
		}
		posts.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		up := &uploaderStub{uploadManyFn: func(_ context.Context, _ []storage.File, _ string) ([]string, error) {
			return nil, errors.New("disk full")
		}}

		svc := newTestService(posts, noopImageRepo(), noopUserRepo(), noopReviewRepo(), up)
		_, err := svc.CreatePost(context.Background(), 7, validInput(), []storage.File{{Name: "a.png"}})
		require.Error(t, err)
		assert.Equal(t, uint(42), deleted)
	})

	t.Run("image batch failure removes the committed post", func(t *testing.T) {
		t.Parallel()

		deleted := uint(0)
		posts := noopPostRepo()
		posts.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 43
			return nil
		}
		posts.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		images := noopImageRepo()
		images.createBatchFn = func(_ context.Context, _ []*models.PostImage) error {
			return errors.New("constraint violation")
		}

		svc := newTestService(posts, images, noopUserRepo(), noopReviewRepo(), noopUploader())
		_, err := svc.CreatePost(context.Background(), 7, validInput(), []storage.File{{Name: "a.png"}})
		require.Error(t, err)
		assert.Equal(t, uint(43), deleted)
	})
}

func TestGetPostDetail(t *testing.T) {
	t.Parallel()

	stored := &models.Post{
		ID:       5,
		WriterID: 7,
		Writer:   models.User{ID: 7, Nickname: "neighbor", ProfileImage: ""},
		Type:     models.PostTypeBorrow,
		Category: models.CategorySports,
		Distance: models.DistanceWithin3km,
		Status:   models.PostStatusActive,
		Title:    "Tennis racket",
		Images: []models.PostImage{
			{PostID: 5, Sequence: 1, URL: "http://cdn.test/one.jpg"},
			{PostID: 5, Sequence: 2, URL: "http://cdn.test/two.jpg"},
		},
	}
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		if id != 5 {
			return nil, models.NewNotFoundError("Post", id)
		}
		return stored, nil
	}
	svc := newTestService(posts, noopImageRepo(), noopUserRepo(), noopReviewRepo(), noopUploader())

	t.Run("owner view", func(t *testing.T) {
		t.Parallel()

		detail, err := svc.GetPostDetail(context.Background(), 5, 7)
		require.NoError(t, err)
		assert.True(t, detail.IsMyPost)
		assert.Equal(t, "neighbor", detail.WriterNickname)
		assert.Equal(t, "", detail.WriterProfileImage)
		assert.Equal(t, []string{"http://cdn.test/one.jpg", "http://cdn.test/two.jpg"}, detail.ImageURLs)
	})

	t.Run("stranger view", func(t *testing.T) {
		t.Parallel()

		detail, err := svc.GetPostDetail(context.Background(), 5, 8)
		require.NoError(t, err)
		assert.False(t, detail.IsMyPost)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()

		_, err := svc.GetPostDetail(context.Background(), 99, 7)
		require.Error(t, err)
		assert.Equal(t, 404, models.StatusForError(err))
	})
}

func TestGetPostsByUser(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	posts.getByWriterIDFn = func(_ context.Context, writerID uint) ([]*models.Post, error) {
		return []*models.Post{
			{ID: 3, WriterID: writerID, Title: "newest", Status: models.PostStatusCompleted},
			{ID: 2, WriterID: writerID, Title: "middle", Status: models.PostStatusCompleted},
			{ID: 1, WriterID: writerID, Title: "oldest", Status: models.PostStatusActive},
		}, nil
	}
	images := noopImageRepo()
	images.getTopByPostIDFn = func(_ context.Context, postID uint) (*models.PostImage, error) {
		if postID == 3 {
			return &models.PostImage{PostID: 3, Sequence: 1, URL: "http://cdn.test/top.jpg"}, nil
		}
		return nil, nil
	}
	reviews := noopReviewRepo()
	reviews.getByPostAndRevieweeFn = func(_ context.Context, postID, _ uint) (*models.Review, error) {
		if postID == 3 {
			return &models.Review{ID: 77, PostID: 3}, nil
		}
		return nil, nil
	}

	svc := newTestService(posts, images, noopUserRepo(), reviews, noopUploader())
	previews, err := svc.GetPostsByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, previews, 3)

	// Repository order (newest first) is preserved.
	assert.Equal(t, "newest", previews[0].Title)
	assert.Equal(t, "oldest", previews[2].Title)

	// Review attaches only where the trade is completed and a review exists.
	require.NotNil(t, previews[0].ReviewID)
	assert.Equal(t, uint(77), *previews[0].ReviewID)
	assert.Nil(t, previews[1].ReviewID)
	assert.Nil(t, previews[2].ReviewID)

	require.NotNil(t, previews[0].PreviewImage)
	assert.Equal(t, "http://cdn.test/top.jpg", *previews[0].PreviewImage)
	assert.Nil(t, previews[1].PreviewImage)
}

func TestGetFilteredPosts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)

	viewer := &models.User{ID: 1, LocationLatitude: 37.5000, LocationLongitude: 127.0000}

	newService := func(stored []*models.Post) *PostService {
		posts := noopPostRepo()
		posts.listFn = func(_ context.Context) ([]*models.Post, error) { return stored, nil }
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			if id == viewer.ID {
				return viewer, nil
			}
			return nil, models.NewNotFoundError("User", id)
		}
		return newTestService(posts, noopImageRepo(), users, noopReviewRepo(), noopUploader())
	}

	base := func(id uint, mutate func(*models.Post)) *models.Post {
		p := &models.Post{
			ID:                id,
			Type:              models.PostTypeShare,
			Category:          models.CategoryBooks,
			Title:             "Novel bundle",
			LocationLatitude:  viewer.LocationLatitude,
			LocationLongitude: viewer.LocationLongitude,
			Status:            models.PostStatusActive,
			ExpiresAt:         future,
		}
		if mutate != nil {
			mutate(p)
		}
		return p
	}

	t.Run("each predicate excludes independently", func(t *testing.T) {
		t.Parallel()

		svc := newService([]*models.Post{
			base(1, nil),
			base(2, func(p *models.Post) { p.Type = models.PostTypeBorrow }),
			base(3, func(p *models.Post) { p.Category = models.CategoryDigital }),
			base(4, func(p *models.Post) { p.LocationLatitude += 1.0 }), // ~111km away
			base(5, func(p *models.Post) { p.Title = "Standing desk" }),
			base(6, func(p *models.Post) { p.ExpiresAt = now.Add(-time.Hour) }),
		})

		got, err := svc.GetFilteredPosts(context.Background(), "SHARE", "BOOKS", "5km", "novel", viewer.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].PostID)
	})

	t.Run("ALL sentinel and empty category bypass the category filter", func(t *testing.T) {
		t.Parallel()

		stored := []*models.Post{
			base(1, nil),
			base(2, func(p *models.Post) { p.Category = models.CategoryDigital }),
		}

		for _, category := range []string{"ALL", "all", ""} {
			svc := newService(stored)
			got, err := svc.GetFilteredPosts(context.Background(), "SHARE", category, "", "", viewer.ID)
			require.NoError(t, err)
			assert.Len(t, got, 2)
		}
	})

	t.Run("radius boundary is inclusive", func(t *testing.T) {
		t.Parallel()

		// ~0.045 degrees of latitude is just inside 5km; ~0.046 just outside.
		svc := newService([]*models.Post{
			base(1, func(p *models.Post) { p.LocationLatitude += 0.0449 }),
			base(2, func(p *models.Post) { p.LocationLatitude += 0.0460 }),
		})

		got, err := svc.GetFilteredPosts(context.Background(), "SHARE", "ALL", "5km", "", viewer.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, uint(1), got[0].PostID)
	})

	t.Run("widening the radius admits more posts", func(t *testing.T) {
		t.Parallel()

		// ~6.3km from the viewer at (37.50, 127.00).
		svc := newService([]*models.Post{
			base(1, func(p *models.Post) {
				p.LocationLatitude = 37.51
				p.LocationLongitude = 127.07
			}),
		})

		got, err := svc.GetFilteredPosts(context.Background(), "SHARE", "ALL", "5km", "", viewer.ID)
		require.NoError(t, err)
		assert.Empty(t, got)

		got, err = svc.GetFilteredPosts(context.Background(), "SHARE", "ALL", "10km", "", viewer.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("unlimited radius keeps distant posts", func(t *testing.T) {
		t.Parallel()

		svc := newService([]*models.Post{
			base(1, func(p *models.Post) { p.LocationLatitude += 2.0 }),
		})

		got, err := svc.GetFilteredPosts(context.Background(), "SHARE", "ALL", "unlimited", "", viewer.ID)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("store order is preserved", func(t *testing.T) {
		t.Parallel()

		svc := newService([]*models.Post{base(9, nil), base(4, nil), base(7, nil)})
		got, err := svc.GetFilteredPosts(context.Background(), "SHARE", "", "", "", viewer.ID)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, uint(9), got[0].PostID)
		assert.Equal(t, uint(4), got[1].PostID)
		assert.Equal(t, uint(7), got[2].PostID)
	})

	t.Run("no matches yields an empty non-nil slice", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)
		got, err := svc.GetFilteredPosts(context.Background(), "SHARE", "", "", "", viewer.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("malformed filters are caller errors", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)

		_, err := svc.GetFilteredPosts(context.Background(), "LEND", "", "", "", viewer.ID)
		require.Error(t, err)
		assert.Equal(t, 400, models.StatusForError(err))

		_, err = svc.GetFilteredPosts(context.Background(), "SHARE", "VEHICLES", "", "", viewer.ID)
		require.Error(t, err)
		assert.Equal(t, 400, models.StatusForError(err))

		_, err = svc.GetFilteredPosts(context.Background(), "SHARE", "", "nearby", "", viewer.ID)
		require.Error(t, err)
		assert.Equal(t, 400, models.StatusForError(err))
	})

	t.Run("unknown viewer is a not-found error", func(t *testing.T) {
		t.Parallel()

		svc := newService(nil)
		_, err := svc.GetFilteredPosts(context.Background(), "SHARE", "", "", "", 999)
		require.Error(t, err)
		assert.Equal(t, 404, models.StatusForError(err))
	})
}
