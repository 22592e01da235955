// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"trackback/internal/config"
	"trackback/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenIssuer is the expected iss claim on every token.
	TokenIssuer = "trackback-api"
	// TokenAudience is the expected aud claim on every token.
	TokenAudience = "trackback-client"
)

// Token types carried in the typ claim. Refresh tokens are only good
// for the refresh endpoint, never for authenticating requests.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenClaims is the verified identity extracted from a bearer token.
type TokenClaims struct {
	UserID    uint
	Email     string
	Roles     models.RoleSet
	TokenType string
}

// BlockChecker reports whether the given account is currently blocked.
// It is consulted on every authenticated request so that blocking takes
// effect before a previously issued token expires.
type BlockChecker func(ctx context.Context, userID uint) (bool, error)

var (
	cfg          *config.Config
	blockChecker BlockChecker
)

// InitMiddleware initializes authentication middleware with the given
// config and an optional live block checker.
func InitMiddleware(c *config.Config, check BlockChecker) {
	cfg = c
	blockChecker = check
}

// ParseToken verifies a raw token string and extracts its claims.
func ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != TokenIssuer {
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != TokenAudience {
		return nil, models.NewUnauthorizedError("Invalid token audience")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}
	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	email, _ := claims["email"].(string)

	var roles models.RoleSet
	if rawRoles, ok := claims["roles"].([]interface{}); ok {
		for _, raw := range rawRoles {
			if s, ok := raw.(string); ok {
				roles = append(roles, models.Role(s))
			}
		}
	}

	tokenType, _ := claims["typ"].(string)
	if tokenType == "" {
		tokenType = TokenTypeAccess
	}

	return &TokenClaims{
		UserID:    uint(userID),
		Email:     email,
		Roles:     roles,
		TokenType: tokenType,
	}, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString, ok := bearerToken(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	claims, err := ParseToken(tokenString)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, err)
	}
	if claims.TokenType == TokenTypeRefresh {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Refresh tokens cannot authenticate requests"))
	}

	// Re-check live block status so a blocked account cannot keep using
	// a still-valid token until expiry.
	if blockChecker != nil {
		blocked, checkErr := blockChecker(c.Context(), claims.UserID)
		if checkErr != nil {
			Logger.Warn("block status check failed",
				slog.Uint64("user_id", uint64(claims.UserID)),
				slog.String("error", checkErr.Error()))
		} else if blocked {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Account is blocked"))
		}
	}

	c.Locals("userID", claims.UserID)
	c.Locals("claims", claims)

	return c.Next()
}

// RequireAtLeast returns a middleware enforcing that the authenticated
// caller holds a role meeting or exceeding the required tier. It must
// run after AuthRequired.
func RequireAtLeast(required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*TokenClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		if !claims.Roles.AtLeast(required) {
			message := "Admin access required"
			if required == models.RoleOwner {
				message = "Owner access required"
			}
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError(message))
		}
		return c.Next()
	}
}

// ClaimsFromCtx returns the verified claims stored by AuthRequired.
func ClaimsFromCtx(c *fiber.Ctx) (*TokenClaims, bool) {
	claims, ok := c.Locals("claims").(*TokenClaims)
	return claims, ok
}
