package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"trackback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFound(t *testing.T) {
	s, app := newTestServer(t)
	owner, _ := createUser(t, s, "owner@example.com", models.RoleSet{models.RoleUser})
	post := createPost(t, s, owner.ID, models.KindLost, models.StatusActive)

	report := func(contact string) *http.Response {
		return doJSON(t, app, http.MethodPost, "/api/interactions/found", "", map[string]interface{}{
			"post_id":        post.ID,
			"finder_name":    "Good Samaritan",
			"finder_contact": contact,
			"finder_phone":   "0700111222",
			"message":        "Found it at the bus stop",
		})
	}

	t.Run("creates pending claim", func(t *testing.T) {
		resp := report("finder@example.com")
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var claim models.FoundInteraction
		decodeBody(t, resp, &claim)
		assert.Equal(t, models.ClaimPending, claim.Status)
		assert.Equal(t, post.ID, claim.PostID)
	})

	t.Run("duplicate report conflicts", func(t *testing.T) {
		resp := report("finder@example.com")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("unknown post is 404", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/interactions/found", "", map[string]interface{}{
			"post_id":        9999,
			"finder_name":    "Someone",
			"finder_contact": "x@example.com",
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing contact is 400", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodPost, "/api/interactions/found", "", map[string]interface{}{
			"post_id":     post.ID,
			"finder_name": "Someone",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("found-kind post conflicts", func(t *testing.T) {
		foundPost := createPost(t, s, owner.ID, models.KindFound, models.StatusActive)
		resp := doJSON(t, app, http.MethodPost, "/api/interactions/found", "", map[string]interface{}{
			"post_id":        foundPost.ID,
			"finder_name":    "Someone",
			"finder_contact": "y@example.com",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func confirmPath(claimID uint) string {
	return fmt.Sprintf("/api/interactions/%d/confirm", claimID)
}

func TestConfirmClaim(t *testing.T) {
	s, app := newTestServer(t)
	owner, ownerToken := createUser(t, s, "owner@example.com", models.RoleSet{models.RoleUser})
	_, strangerToken := createUser(t, s, "stranger@example.com", models.RoleSet{models.RoleUser})
	_, adminToken := createUser(t, s, "admin@example.com", models.RoleSet{models.RoleUser, models.RoleAdmin})

	newClaim := func() (*models.Post, *models.FoundInteraction) {
		post := createPost(t, s, owner.ID, models.KindLost, models.StatusActive)
		claim := &models.FoundInteraction{
			PostID:        post.ID,
			FinderName:    "Finder",
			FinderContact: "finder@example.com",
			Status:        models.ClaimPending,
		}
		require.NoError(t, s.interactionRepo.Create(context.Background(), claim))
		return post, claim
	}

	t.Run("requires auth", func(t *testing.T) {
		_, claim := newClaim()
		resp := doJSON(t, app, http.MethodPost, confirmPath(claim.ID), "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		_, claim := newClaim()
		resp := doJSON(t, app, http.MethodPost, confirmPath(claim.ID), strangerToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("owner confirms and post resolves", func(t *testing.T) {
		post, claim := newClaim()
		resp := doJSON(t, app, http.MethodPost, confirmPath(claim.ID), ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var confirmed models.FoundInteraction
		decodeBody(t, resp, &confirmed)
		assert.Equal(t, models.ClaimAccepted, confirmed.Status)

		stored, err := s.postRepo.GetByID(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusResolved, stored.Status)
	})

	t.Run("confirm is idempotent", func(t *testing.T) {
		_, claim := newClaim()
		first := doJSON(t, app, http.MethodPost, confirmPath(claim.ID), ownerToken, nil)
		require.Equal(t, http.StatusOK, first.StatusCode)
		second := doJSON(t, app, http.MethodPost, confirmPath(claim.ID), ownerToken, nil)
		assert.Equal(t, http.StatusOK, second.StatusCode)
	})

	t.Run("admin can confirm", func(t *testing.T) {
		_, claim := newClaim()
		resp := doJSON(t, app, http.MethodPost, confirmPath(claim.ID), adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestClaimListings(t *testing.T) {
	s, app := newTestServer(t)
	owner, ownerToken := createUser(t, s, "owner@example.com", models.RoleSet{models.RoleUser})
	_, otherToken := createUser(t, s, "other@example.com", models.RoleSet{models.RoleUser})
	_, adminToken := createUser(t, s, "admin@example.com", models.RoleSet{models.RoleUser, models.RoleAdmin})

	post := createPost(t, s, owner.ID, models.KindLost, models.StatusActive)
	claim := &models.FoundInteraction{
		PostID:        post.ID,
		FinderName:    "Finder",
		FinderContact: "other@example.com",
		Status:        models.ClaimPending,
	}
	require.NoError(t, s.interactionRepo.Create(context.Background(), claim))

	t.Run("owner sees pending claims", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/interactions/user/owner@example.com/claims", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var claims []models.ClaimSummary
		decodeBody(t, resp, &claims)
		require.Len(t, claims, 1)
		assert.Equal(t, "Black iPhone 13", claims[0].PostTitle)
	})

	t.Run("percent-encoded email matches the caller", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/interactions/user/owner%40example.com/claims", ownerToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var claims []models.ClaimSummary
		decodeBody(t, resp, &claims)
		require.Len(t, claims, 1)
	})

	t.Run("cannot read someone else's claims", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/interactions/user/owner@example.com/claims", otherToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin can read any claims", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/interactions/user/owner@example.com/claims", adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("finder sees reported posts", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/api/interactions/user/other@example.com/found", otherToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var posts []models.Post
		decodeBody(t, resp, &posts)
		require.Len(t, posts, 1)
		assert.Equal(t, post.ID, posts[0].ID)
	})
}
