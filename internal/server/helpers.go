package server

import (
	"errors"
	"net/url"
	"strings"

	"trackback/internal/middleware"
	"trackback/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was
// already committed by a helper. Handlers must return nil (not this
// error) to avoid Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+strings.ToUpper(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// callerClaims returns the verified token claims, or writes a 401 and
// returns errResponseWritten when they are absent.
func (s *Server) callerClaims(c *fiber.Ctx) (*middleware.TokenClaims, error) {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
		return nil, errResponseWritten
	}
	return claims, nil
}

// emailParamForCaller reads the :email route parameter and enforces
// that non-admin callers can only reference their own email.
func (s *Server) emailParamForCaller(c *fiber.Ctx) (string, error) {
	claims, err := s.callerClaims(c)
	if err != nil {
		return "", err
	}

	// Route params arrive percent-encoded ("owner%40example.com").
	raw := c.Params("email")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email parameter is required"))
		return "", errResponseWritten
	}

	if !strings.EqualFold(claims.Email, email) && !claims.Roles.AtLeast(models.RoleAdmin) {
		_ = models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You can only access your own records"))
		return "", errResponseWritten
	}
	return email, nil
}
