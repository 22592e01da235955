package repository

import (
	"context"
	"testing"
	"time"

	"trackback/internal/cache"
	"trackback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := newTestUser(email)
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func seedPost(t *testing.T, db *gorm.DB, userID uint, kind models.PostKind, status models.PostStatus) *models.Post {
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
	require.NoError(t, NewPostRepository(db).Create(context.Background(), post))
	return post
}

func TestPostRepository_ListActiveCachesDefaultPage(t *testing.T) {
	withTestRedis(t)
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	first := seedPost(t, db, owner.ID, models.KindLost, models.StatusActive)

	posts, err := repo.ListActive(ctx, models.KindLost, cache.PostListPageSize, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	// A write the repository does not see leaves the cached page in
	// place until something invalidates it.
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", first.ID).Update("hidden", true).Error)
	stale, err := repo.ListActive(ctx, models.KindLost, cache.PostListPageSize, 0)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	// Non-default pages bypass the cache entirely.
	direct, err := repo.ListActive(ctx, models.KindLost, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, direct)

	// Repository mutations evict the feed.
	second := seedPost(t, db, owner.ID, models.KindLost, models.StatusActive)
	fresh, err := repo.ListActive(ctx, models.KindLost, cache.PostListPageSize, 0)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, second.ID, fresh[0].ID)
}

func TestPostRepository_ListActive(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")

	seedPost(t, db, owner.ID, models.KindLost, models.StatusActive)
	seedPost(t, db, owner.ID, models.KindLost, models.StatusResolved)
	seedPost(t, db, owner.ID, models.KindFound, models.StatusActive)
	hidden := seedPost(t, db, owner.ID, models.KindLost, models.StatusActive)
	require.NoError(t, repo.SetHidden(ctx, hidden.ID, true))

	lost, err := repo.ListActive(ctx, models.KindLost, 50, 0)
	require.NoError(t, err)
	assert.Len(t, lost, 1)

	found, err := repo.ListActive(ctx, models.KindFound, 50, 0)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	all, err := repo.ListAll(ctx, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestPostRepository_SearchDevice(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")

	post := seedPost(t, db, owner.ID, models.KindLost, models.StatusActive)
	post.IMEI = "356938035643809"
	post.SerialNumber = "C02XK0AAJGH5"
	require.NoError(t, repo.Update(ctx, post))

	byIMEI, err := repo.SearchDevice(ctx, "356938035643809")
	require.NoError(t, err)
	require.Len(t, byIMEI, 1)
	assert.Equal(t, post.ID, byIMEI[0].ID)

	bySerial, err := repo.SearchDevice(ctx, "C02XK0AAJGH5")
	require.NoError(t, err)
	assert.Len(t, bySerial, 1)

	none, err := repo.SearchDevice(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_SetHidden(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	post := seedPost(t, db, owner.ID, models.KindLost, models.StatusActive)

	require.NoError(t, repo.SetHidden(ctx, post.ID, true))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, got.Hidden)

	err = repo.SetHidden(ctx, 9999, true)
	require.Error(t, err)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestPostRepository_SetFacebookPublished(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")
	post := seedPost(t, db, owner.ID, models.KindLost, models.StatusActive)

	require.NoError(t, repo.SetFacebookPublished(ctx, post.ID, "1234567890_987"))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234567890_987", got.FacebookPostID)
	require.NotNil(t, got.FacebookPublishedAt)
}

func TestPostRepository_Counts(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	owner := seedUser(t, db, "owner@example.com")

	seedPost(t, db, owner.ID, models.KindLost, models.StatusActive)
	seedPost(t, db, owner.ID, models.KindLost, models.StatusResolved)
	seedPost(t, db, owner.ID, models.KindFound, models.StatusActive)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	resolved, err := repo.CountByStatus(ctx, models.StatusResolved)
	require.NoError(t, err)
	assert.EqualValues(t, 1, resolved)

	lost, err := repo.CountByKind(ctx, models.KindLost)
	require.NoError(t, err)
	assert.EqualValues(t, 2, lost)
}
