package server

import (
	"trackback/internal/models"
	"trackback/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitSupport handles POST /api/support.
func (s *Server) SubmitSupport(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.supportService.Submit(c.Context(), service.SubmitSupportInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// ListSupport handles GET /api/support. Admin only.
func (s *Server) ListSupport(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	messages, err := s.supportService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	if messages == nil {
		messages = []models.SupportMessage{}
	}
	return c.JSON(messages)
}

// UpdateSupportStatus handles PUT /api/support/:id/status. Admin only.
func (s *Server) UpdateSupportStatus(c *fiber.Ctx) error {
	messageID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status models.SupportStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.supportService.UpdateStatus(c.Context(), messageID, req.Status)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}
	return c.JSON(message)
}
