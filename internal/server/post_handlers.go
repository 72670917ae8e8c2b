package server

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"biling/internal/models"
	"biling/internal/service"
	"biling/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles listing creation. The request is multipart/form-data:
// text fields carry the listing attributes and the "images" parts carry the
// photos, in the order the client wants them displayed.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return respondServiceError(c, models.NewValidationError("Request must be multipart/form-data"))
	}

	price, err := formInt(c, "price")
	if err != nil {
		return respondServiceError(c, err)
	}
	latitude, err := formFloat(c, "location_latitude")
	if err != nil {
		return respondServiceError(c, err)
	}
	longitude, err := formFloat(c, "location_longitude")
	if err != nil {
		return respondServiceError(c, err)
	}

	input := service.CreatePostInput{
		Type:              c.FormValue("type"),
		Category:          c.FormValue("category"),
		Distance:          c.FormValue("distance"),
		Title:             c.FormValue("title"),
		Content:           c.FormValue("content"),
		Price:             price,
		LocationName:      c.FormValue("location_name"),
		LocationLatitude:  latitude,
		LocationLongitude: longitude,
	}

	images, err := readImageParts(form.File["images"])
	if err != nil {
		return respondServiceError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), userID, input, images)
	if err != nil {
		return respondServiceError(c, err)
	}

	detail, err := s.postService.GetPostDetail(c.UserContext(), post.ID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(detail)
}

// GetPostDetail returns a single listing with the viewer's ownership flag.
func (s *Server) GetPostDetail(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	postID, err := parseID(c, "id")
	if err != nil {
		return respondServiceError(c, err)
	}

	detail, err := s.postService.GetPostDetail(c.UserContext(), postID, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(detail)
}

// GetFilteredPosts returns the browse feed for the viewer. Filters arrive as
// query parameters; "type" is required, the rest are optional.
func (s *Server) GetFilteredPosts(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	posts, err := s.postService.GetFilteredPosts(
		c.UserContext(),
		c.Query("type"),
		c.Query("category"),
		c.Query("radius"),
		c.Query("keyword"),
		userID,
	)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetMyPosts returns every listing the authenticated user authored.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	posts, err := s.postService.GetPostsByUser(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

func formInt(c *fiber.Ctx, field string) (int, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, models.NewValidationError(field + " is required")
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError("Invalid " + field + " value")
	}
	return value, nil
}

func formFloat(c *fiber.Ctx, field string) (float64, error) {
	raw := strings.TrimSpace(c.FormValue(field))
	if raw == "" {
		return 0, models.NewValidationError(field + " is required")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, models.NewValidationError("Invalid " + field + " value")
	}
	return value, nil
}

// readImageParts buffers the uploaded image parts, preserving the client's
// ordering so the stored sequence matches what the user arranged.
func readImageParts(headers []*multipart.FileHeader) ([]storage.File, error) {
	files := make([]storage.File, 0, len(headers))
	for _, header := range headers {
		part, err := header.Open()
		if err != nil {
			return nil, models.NewValidationError("Unreadable image part " + header.Filename)
		}
		content, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, models.NewValidationError("Unreadable image part " + header.Filename)
		}
		files = append(files, storage.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	return files, nil
}
