package server

import (
	"trackback/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAdminStats handles GET /api/admin/stats.
func (s *Server) GetAdminStats(c *fiber.Ctx) error {
	stats, err := s.adminService.Stats(c.Context())
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(stats)
}

// GetAdminUsers handles GET /api/admin/users. Users are returned with
// their posts, most recently active first.
func (s *Server) GetAdminUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	users, err := s.adminService.ListUsers(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

// SetUserBlocked handles PUT /api/admin/users/:id/block.
func (s *Server) SetUserBlocked(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.adminService.SetUserBlocked(c.Context(), userID, req.Blocked)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/admin/users/:id. Deleting an account
// also removes every post it created.
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.adminService.DeleteUser(c.Context(), userID); err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}

// GetAdminPosts handles GET /api/admin/posts.
func (s *Server) GetAdminPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	posts, err := s.adminService.ListAllPosts(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(posts)
}

// SetPostVisibility handles PUT /api/admin/posts/:id/visibility.
func (s *Server) SetPostVisibility(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Hidden bool `json:"hidden"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.adminService.SetPostHidden(c.Context(), postID, req.Hidden); err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(fiber.Map{"id": postID, "hidden": req.Hidden})
}

// AdminDeletePost handles DELETE /api/admin/posts/:id.
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.adminService.DeletePost(c.Context(), postID); err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ApproveFacebook handles POST /api/admin/posts/:id/facebook.
func (s *Server) ApproveFacebook(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.adminService.ApproveFacebook(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(post)
}

// CreateAdmin handles POST /api/admin/admins. Owner only.
func (s *Server) CreateAdmin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		FullName string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.adminService.CreateAdmin(c.Context(), req.Email, req.FullName)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// RemoveAdmin handles DELETE /api/admin/admins/:id. Owner only.
func (s *Server) RemoveAdmin(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.adminService.RemoveAdmin(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(user)
}

// ResetAdminPassword handles POST /api/admin/admins/:id/reset-password.
// Owner only.
func (s *Server) ResetAdminPassword(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.adminService.ResetAdminPassword(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(user)
}
