package server

import (
	"strings"
	"time"

	"trackback/internal/cache"
	"trackback/internal/models"
	"trackback/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts?kind=LOST|FOUND.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	kind := models.PostKind(strings.ToUpper(c.Query("kind", string(models.KindLost))))
	p := parsePagination(c, cache.PostListPageSize)

	posts, err := s.postService.ListPosts(c.Context(), kind, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if post.Hidden {
		// Hidden posts are only visible in the admin console.
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Post", postID))
	}
	return c.JSON(post)
}

// SearchDevice handles GET /api/posts/search?q=<identifier>.
func (s *Server) SearchDevice(c *fiber.Ctx) error {
	posts, err := s.postService.SearchDevice(c.Context(), c.Query("q"))
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(posts)
}

// GetPostsByUser handles GET /api/posts/user/:id. The listing is
// public, so hidden posts are filtered out.
func (s *Server) GetPostsByUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListMyPosts(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	visible := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !p.Hidden {
			visible = append(visible, p)
		}
	}
	return c.JSON(visible)
}

// CreatePost handles POST /api/posts.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	claims, err := s.callerClaims(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title        string          `json:"title"`
		Description  string          `json:"description"`
		Location     string          `json:"location"`
		Date         time.Time       `json:"date"`
		Time         string          `json:"time"`
		ItemType     models.ItemType `json:"type"`
		Kind         models.PostKind `json:"kind"`
		Images       []string        `json:"images"`
		IMEI         string          `json:"imei"`
		SerialNumber string          `json:"serial_number"`
		IDNumber     string          `json:"id_number"`
		Color        string          `json:"color"`
		ContactPhone string          `json:"contact_phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:       claims.UserID,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		Date:         req.Date,
		Time:         req.Time,
		ItemType:     req.ItemType,
		Kind:         req.Kind,
		Images:       req.Images,
		IMEI:         req.IMEI,
		SerialNumber: req.SerialNumber,
		IDNumber:     req.IDNumber,
		Color:        req.Color,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	claims, err := s.callerClaims(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title        string   `json:"title"`
		Description  string   `json:"description"`
		Location     string   `json:"location"`
		ContactPhone string   `json:"contact_phone"`
		Images       []string `json:"images"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		PostID:       postID,
		CallerID:     claims.UserID,
		IsAdmin:      claims.Roles.AtLeast(models.RoleAdmin),
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		Images:       req.Images,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	claims, err := s.callerClaims(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), postID, claims.UserID,
		claims.Roles.AtLeast(models.RoleAdmin)); err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}
