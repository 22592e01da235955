package repository

import (
	"context"
	"errors"

	"trackback/internal/models"

	"gorm.io/gorm"
)

// SupportRepository defines persistence operations for support messages.
type SupportRepository interface {
	Create(ctx context.Context, message *models.SupportMessage) error
	GetByID(ctx context.Context, id uint) (*models.SupportMessage, error)
	List(ctx context.Context, limit, offset int) ([]models.SupportMessage, error)
	UpdateStatus(ctx context.Context, id uint, status models.SupportStatus) error
}

type supportRepository struct {
	db *gorm.DB
}

// NewSupportRepository returns a new SupportRepository implementation.
func NewSupportRepository(db *gorm.DB) SupportRepository {
	return &supportRepository{db: db}
}

func (r *supportRepository) Create(ctx context.Context, message *models.SupportMessage) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *supportRepository) GetByID(ctx context.Context, id uint) (*models.SupportMessage, error) {
	var message models.SupportMessage
	if err := r.db.WithContext(ctx).First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("SupportMessage", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

func (r *supportRepository) List(ctx context.Context, limit, offset int) ([]models.SupportMessage, error) {
	var messages []models.SupportMessage
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *supportRepository) UpdateStatus(ctx context.Context, id uint, status models.SupportStatus) error {
	result := r.db.WithContext(ctx).Model(&models.SupportMessage{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("SupportMessage", id)
	}
	return nil
}
