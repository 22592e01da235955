package server

import (
	"fmt"
	"strconv"
	"time"

	"trackback/internal/middleware"
	"trackback/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminLogin handles POST /api/auth/admin/login.
//
// Admin accounts are provisioned without a local password: the first
// login with any non-trivial password sets it. Subsequent logins
// require that password.
func (s *Server) AdminLogin(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if !user.Roles.AtLeast(models.RoleAdmin) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Admin access required"))
	}
	if user.Blocked {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Account is blocked"))
	}

	if !user.HasPassword() {
		// First login claims the account by setting the password.
		if len(req.Password) < 8 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Password must be at least 8 characters"))
		}
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(hashErr))
		}
		user.PasswordHash = string(hashed)
		if updateErr := s.userRepo.Update(c.Context(), user); updateErr != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, updateErr)
		}
	} else if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	return s.respondWithTokenPair(c, fiber.StatusOK, user)
}

// Refresh handles POST /api/auth/refresh. It exchanges a valid refresh
// token for a new access/refresh pair, re-checking the account on the
// way so revoked or blocked users cannot rotate forever.
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("refresh_token is required"))
	}

	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}
	if claims.TokenType != middleware.TokenTypeRefresh {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Not a refresh token"))
	}

	user, err := s.userRepo.GetByID(c.Context(), claims.UserID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Account no longer exists"))
	}
	if user.Blocked {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Account is blocked"))
	}

	return s.respondWithTokenPair(c, fiber.StatusOK, user)
}

// respondWithTokenPair issues fresh access and refresh tokens for the user.
func (s *Server) respondWithTokenPair(c *fiber.Ctx, status int, user *models.User) error {
	accessToken, err := s.generateToken(user, middleware.TokenTypeAccess, s.config.JWTAccessTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	refreshToken, err := s.generateToken(user, middleware.TokenTypeRefresh, s.config.JWTRefreshTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

// generateToken creates a signed JWT for the given user.
func (s *Server) generateToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"email": user.Email,
		"roles": user.Roles,
		"typ":   tokenType,
		"iss":   middleware.TokenIssuer,
		"aud":   middleware.TokenAudience,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"jti":   s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
