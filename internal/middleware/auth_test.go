package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trackback/internal/config"
	"trackback/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func initTestMiddleware(t *testing.T, check BlockChecker) {
	t.Helper()
	InitMiddleware(&config.Config{JWTSecret: testSecret}, check)
}

type tokenOpts struct {
	secret    string
	issuer    string
	audience  string
	tokenType string
	expiresIn time.Duration
	roles     []string
}

func signToken(t *testing.T, opts tokenOpts) string {
	t.Helper()

	if opts.secret == "" {
		opts.secret = testSecret
	}
	if opts.issuer == "" {
		opts.issuer = TokenIssuer
	}
	if opts.audience == "" {
		opts.audience = TokenAudience
	}
	if opts.tokenType == "" {
		opts.tokenType = TokenTypeAccess
	}
	if opts.expiresIn == 0 {
		opts.expiresIn = time.Hour
	}
	if opts.roles == nil {
		opts.roles = []string{string(models.RoleUser)}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   "42",
		"email": "user@example.com",
		"roles": opts.roles,
		"typ":   opts.tokenType,
		"iss":   opts.issuer,
		"aud":   opts.audience,
		"exp":   now.Add(opts.expiresIn).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(opts.secret))
	require.NoError(t, err)
	return signed
}

func protectedApp(handlers ...fiber.Handler) *fiber.App {
	app := fiber.New()
	chain := append([]fiber.Handler{AuthRequired}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/protected", chain...)
	return app
}

func get(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestParseToken(t *testing.T) {
	initTestMiddleware(t, nil)

	t.Run("valid token", func(t *testing.T) {
		claims, err := ParseToken(signToken(t, tokenOpts{roles: []string{"USER", "ADMIN"}}))
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "user@example.com", claims.Email)
		assert.True(t, claims.Roles.AtLeast(models.RoleAdmin))
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ParseToken(signToken(t, tokenOpts{secret: "some-other-secret"}))
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := ParseToken(signToken(t, tokenOpts{issuer: "someone-else"}))
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		_, err := ParseToken(signToken(t, tokenOpts{audience: "other-client"}))
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := ParseToken(signToken(t, tokenOpts{expiresIn: -time.Minute}))
		assert.Error(t, err)
	})

	t.Run("missing typ defaults to access", func(t *testing.T) {
		now := time.Now()
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "42",
			"iss": TokenIssuer,
			"aud": TokenAudience,
			"exp": now.Add(time.Hour).Unix(),
			"iat": now.Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		claims, err := ParseToken(raw)
		require.NoError(t, err)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
	})
}

func TestAuthRequired(t *testing.T) {
	initTestMiddleware(t, nil)
	app := protectedApp()

	t.Run("missing header", func(t *testing.T) {
		resp := get(t, app, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		resp := get(t, app, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid access token", func(t *testing.T) {
		resp := get(t, app, "Bearer "+signToken(t, tokenOpts{}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		resp := get(t, app, "Bearer "+signToken(t, tokenOpts{tokenType: TokenTypeRefresh}))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthRequiredBlockCheck(t *testing.T) {
	t.Run("blocked account rejected", func(t *testing.T) {
		initTestMiddleware(t, func(ctx context.Context, userID uint) (bool, error) {
			return true, nil
		})
		resp := get(t, protectedApp(), "Bearer "+signToken(t, tokenOpts{}))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("checker failure fails open", func(t *testing.T) {
		initTestMiddleware(t, func(ctx context.Context, userID uint) (bool, error) {
			return false, assert.AnError
		})
		resp := get(t, protectedApp(), "Bearer "+signToken(t, tokenOpts{}))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRequireAtLeast(t *testing.T) {
	initTestMiddleware(t, nil)

	cases := []struct {
		name     string
		roles    []string
		required models.Role
		want     int
	}{
		{"user denied admin route", []string{"USER"}, models.RoleAdmin, http.StatusForbidden},
		{"admin allowed admin route", []string{"USER", "ADMIN"}, models.RoleAdmin, http.StatusOK},
		{"admin denied owner route", []string{"USER", "ADMIN"}, models.RoleOwner, http.StatusForbidden},
		{"owner allowed admin route", []string{"USER", "ADMIN", "OWNER"}, models.RoleAdmin, http.StatusOK},
		{"owner allowed owner route", []string{"USER", "ADMIN", "OWNER"}, models.RoleOwner, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := protectedApp(RequireAtLeast(tc.required))
			resp := get(t, app, "Bearer "+signToken(t, tokenOpts{roles: tc.roles}))
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
