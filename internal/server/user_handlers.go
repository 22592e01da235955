package server

import (
	"trackback/internal/models"
	"trackback/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SyncUser handles POST /api/users/sync. The client calls this after
// authenticating the user with its identity provider; the API upserts
// the profile and issues its own token pair.
func (s *Server) SyncUser(c *fiber.Ctx) error {
	var req struct {
		Email         string `json:"email"`
		FullName      string `json:"name"`
		PhoneNumber   string `json:"phone_number"`
		TermsAccepted bool   `json:"terms_accepted"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SyncUser(c.Context(), service.SyncUserInput{
		Email:         req.Email,
		FullName:      req.FullName,
		PhoneNumber:   req.PhoneNumber,
		TermsAccepted: req.TermsAccepted,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return s.respondWithTokenPair(c, fiber.StatusOK, user)
}

// GetMyProfile handles GET /api/users/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	claims, err := s.callerClaims(c)
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.Context(), claims.UserID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(user)
}

// GetUserByEmail handles GET /api/users/:email. Non-admin callers can
// only look up their own account.
func (s *Server) GetUserByEmail(c *fiber.Ctx) error {
	email, err := s.emailParamForCaller(c)
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByEmail(c.Context(), email)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(user)
}

// GetMyPosts handles GET /api/users/me/posts.
func (s *Server) GetMyPosts(c *fiber.Ctx) error {
	claims, err := s.callerClaims(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.ListMyPosts(c.Context(), claims.UserID)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return c.JSON(posts)
}
