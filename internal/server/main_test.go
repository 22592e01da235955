package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"trackback/internal/config"
	"trackback/internal/database"
	"trackback/internal/middleware"
	"trackback/internal/models"
	"trackback/internal/notify"
	"trackback/internal/repository"
	"trackback/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Port:          "8082",
		Env:           "test",
		JWTSecret:     "test-secret-used-only-in-unit-tests",
		JWTAccessTTL:  15 * time.Minute,
		JWTRefreshTTL: 168 * time.Hour,
		ClientURL:     "http://localhost:5173",
		SupportInbox:  "trackback.help@gmail.com",
	}
}

// newTestServer wires a Server against a fresh in-memory database.
// Handler tests exercise the full stack below the HTTP layer, so they
// must not run in parallel: the auth middleware holds package config.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	cfg := testConfig()
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	supportRepo := repository.NewSupportRepository(db)
	mailer := notify.NewMailer(cfg) // no SMTP credentials: disabled

	s := &Server{
		config:          cfg,
		db:              db,
		userRepo:        userRepo,
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
		supportRepo:     supportRepo,
		mailer:          mailer,
	}
	s.userService = service.NewUserService(userRepo)
	s.postService = service.NewPostService(postRepo, userRepo)
	s.claimService = service.NewClaimService(interactionRepo, postRepo, userRepo, mailer)
	s.adminService = service.NewAdminService(userRepo, postRepo, interactionRepo, nil)
	s.supportService = service.NewSupportService(supportRepo, mailer)

	middleware.InitMiddleware(cfg, userRepo.IsBlocked)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

// createUser stores a user and returns it with a valid access token.
func createUser(t *testing.T, s *Server, email string, roles models.RoleSet) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Email:        email,
		PasswordHash: models.PasswordSentinel,
		FullName:     "Test User",
		Roles:        roles,
	}
	require.NoError(t, s.userRepo.Create(context.Background(), user))

	token, err := s.generateToken(user, middleware.TokenTypeAccess, s.config.JWTAccessTTL)
	require.NoError(t, err)
	return user, token
}

func createPost(t *testing.T, s *Server, userID uint, kind models.PostKind, status models.PostStatus) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:       "Black iPhone 13",
		Description: "Lost near the market",
		Location:    "Nairobi CBD",
		Date:        time.Now(),
		ItemType:    models.ItemPhone,
		Kind:        kind,
		Status:      status,
		UserID:      userID,
	}
	require.NoError(t, s.postRepo.Create(context.Background(), post))
	return post
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}
