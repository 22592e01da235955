package repository

import (
	"context"
	"errors"

	"trackback/internal/cache"
	"trackback/internal/models"

	"gorm.io/gorm"
)

// InteractionRepository defines persistence operations for found-item claims.
type InteractionRepository interface {
	Create(ctx context.Context, interaction *models.FoundInteraction) error
	GetByID(ctx context.Context, id uint) (*models.FoundInteraction, error)
	ExistsForPostAndContact(ctx context.Context, postID uint, contact string) (bool, error)
	Confirm(ctx context.Context, id uint) (*models.FoundInteraction, error)
	PendingClaimsForOwner(ctx context.Context, ownerEmail string) ([]models.ClaimSummary, error)
	PostsByFinderContact(ctx context.Context, contact string) ([]models.Post, error)
	Count(ctx context.Context) (int64, error)
}

type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository returns a new InteractionRepository implementation.
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) Create(ctx context.Context, interaction *models.FoundInteraction) error {
	if err := r.db.WithContext(ctx).Create(interaction).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *interactionRepository) GetByID(ctx context.Context, id uint) (*models.FoundInteraction, error) {
	var interaction models.FoundInteraction
	if err := r.db.WithContext(ctx).Preload("Post").First(&interaction, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Interaction", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &interaction, nil
}

func (r *interactionRepository) ExistsForPostAndContact(ctx context.Context, postID uint, contact string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FoundInteraction{}).
		Where("post_id = ? AND finder_contact = ?", postID, contact).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Confirm accepts a claim and resolves its post in one transaction.
// Confirming an already accepted claim is a no-op that returns the
// current state, so retried confirmations stay safe.
func (r *interactionRepository) Confirm(ctx context.Context, id uint) (*models.FoundInteraction, error) {
	var interaction models.FoundInteraction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Post").First(&interaction, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Interaction", id)
			}
			return err
		}

		if interaction.Status == models.ClaimAccepted {
			return nil
		}

		if err := tx.Model(&models.FoundInteraction{}).
			Where("id = ?", id).
			Update("status", models.ClaimAccepted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).
			Where("id = ?", interaction.PostID).
			Update("status", models.StatusResolved).Error; err != nil {
			return err
		}

		interaction.Status = models.ClaimAccepted
		interaction.Post.Status = models.StatusResolved
		return nil
	})

	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}

	// Resolving the post must be visible immediately, not after PostTTL.
	cache.InvalidatePost(ctx, interaction.PostID)
	return &interaction, nil
}

// PendingClaimsForOwner returns the open claims filed against posts
// owned by the given account email, newest first.
func (r *interactionRepository) PendingClaimsForOwner(ctx context.Context, ownerEmail string) ([]models.ClaimSummary, error) {
	var claims []models.ClaimSummary
	if err := r.db.WithContext(ctx).Model(&models.FoundInteraction{}).
		Select(`found_interactions.id,
			found_interactions.post_id,
			posts.title AS post_title,
			found_interactions.finder_name,
			found_interactions.finder_contact AS finder_email,
			found_interactions.finder_phone,
			found_interactions.status,
			found_interactions.created_at`).
		Joins("JOIN posts ON posts.id = found_interactions.post_id").
		Joins("JOIN users ON users.id = posts.user_id").
		Where("users.email = ? AND found_interactions.status = ?", ownerEmail, models.ClaimPending).
		Order("found_interactions.created_at DESC").
		Scan(&claims).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return claims, nil
}

// PostsByFinderContact returns the posts a finder has reported found,
// identified by the contact email they supplied.
func (r *interactionRepository) PostsByFinderContact(ctx context.Context, contact string) ([]models.Post, error) {
	var posts []models.Post
	if err := r.db.WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN found_interactions ON found_interactions.post_id = posts.id").
		Where("found_interactions.finder_contact = ?", contact).
		Order("found_interactions.created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *interactionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.FoundInteraction{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
