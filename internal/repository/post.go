package repository

import (
	"context"
	"errors"
	"time"

	"trackback/internal/cache"
	"trackback/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for lost/found posts.
type PostRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ListActive(ctx context.Context, kind models.PostKind, limit, offset int) ([]models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByUserID(ctx context.Context, userID uint) ([]models.Post, error)
	SearchDevice(ctx context.Context, identifier string) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.PostStatus) (int64, error)
	CountByKind(ctx context.Context, kind models.PostKind) (int64, error)
	SetHidden(ctx context.Context, id uint, hidden bool) error
	SetFacebookPublished(ctx context.Context, id uint, fbPostID string) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	key := cache.PostKey(id)

	err := cache.Aside(ctx, key, &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// ListActive returns the public feed for one kind: active, unhidden
// posts, newest first. The default first page is served through the
// cache; deeper pages and custom limits go straight to the database.
func (r *postRepository) ListActive(ctx context.Context, kind models.PostKind, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	fetch := func() error {
		if err := r.db.WithContext(ctx).
			Where("kind = ? AND status = ? AND hidden = ?", kind, models.StatusActive, false).
			Order("created_at DESC").
			Limit(limit).Offset(offset).
			Find(&posts).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	}

	if offset == 0 && limit == cache.PostListPageSize {
		if err := cache.Aside(ctx, cache.PostListKey(string(kind)), &posts, cache.PostListTTL, fetch); err != nil {
			return nil, err
		}
		return posts, nil
	}

	if err := fetch(); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListAll returns every post regardless of status or visibility. Admin only.
func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// SearchDevice looks up posts by device identifier (IMEI, serial number
// or national ID written on the item).
func (r *postRepository) SearchDevice(ctx context.Context, identifier string) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).
		Where("imei = ? OR serial_number = ? OR id_number = ?", identifier, identifier, identifier).
		Where("hidden = ?", false).
		Order("created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountByStatus(ctx context.Context, status models.PostStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) CountByKind(ctx context.Context, kind models.PostKind) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("kind = ?", kind).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) SetHidden(ctx context.Context, id uint, hidden bool) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("hidden", hidden)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

func (r *postRepository) SetFacebookPublished(ctx context.Context, id uint, fbPostID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"facebook_post_id":      fbPostID,
			"facebook_published_at": &now,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
