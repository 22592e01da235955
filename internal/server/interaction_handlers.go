package server

import (
	"trackback/internal/models"
	"trackback/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReportFound handles POST /api/interactions/found. Anyone can file a
// found report; an account is not required.
func (s *Server) ReportFound(c *fiber.Ctx) error {
	var req struct {
		PostID        uint   `json:"post_id"`
		FinderName    string `json:"finder_name"`
		FinderContact string `json:"finder_contact"`
		FinderPhone   string `json:"finder_phone"`
		Message       string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	claim, err := s.claimService.ReportFound(c.Context(), service.ReportFoundInput{
		PostID:        req.PostID,
		FinderName:    req.FinderName,
		FinderContact: req.FinderContact,
		FinderPhone:   req.FinderPhone,
		Message:       req.Message,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(claim)
}

// ConfirmClaim handles POST /api/interactions/:id/confirm. Only the
// post owner (or an admin) may confirm; confirming resolves the post.
func (s *Server) ConfirmClaim(c *fiber.Ctx) error {
	claimID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	claims, err := s.callerClaims(c)
	if err != nil {
		return nil
	}

	confirmed, err := s.claimService.ConfirmClaim(c.Context(), claimID,
		claims.Email, claims.Roles.AtLeast(models.RoleAdmin))
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.JSON(confirmed)
}

// GetClaimsForOwner handles GET /api/interactions/user/:email/claims.
func (s *Server) GetClaimsForOwner(c *fiber.Ctx) error {
	email, err := s.emailParamForCaller(c)
	if err != nil {
		return nil
	}

	claims, err := s.claimService.ListClaimsForOwner(c.Context(), email)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if claims == nil {
		claims = []models.ClaimSummary{}
	}

	return c.JSON(claims)
}

// GetFoundByFinder handles GET /api/interactions/user/:email/found.
func (s *Server) GetFoundByFinder(c *fiber.Ctx) error {
	email, err := s.emailParamForCaller(c)
	if err != nil {
		return nil
	}

	posts, err := s.claimService.ListFoundByFinder(c.Context(), email)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	return c.JSON(posts)
}
