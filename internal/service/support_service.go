package service

import (
	"context"
	"strings"

	"trackback/internal/models"
	"trackback/internal/repository"
)

// SupportNotifier forwards a stored support message to the support
// inbox. Implementations must not block.
type SupportNotifier interface {
	SupportReceived(message *models.SupportMessage)
}

type SupportService struct {
	supportRepo repository.SupportRepository
	notifier    SupportNotifier
}

type SubmitSupportInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func NewSupportService(supportRepo repository.SupportRepository, notifier SupportNotifier) *SupportService {
	return &SupportService{supportRepo: supportRepo, notifier: notifier}
}

// Submit stores a support request and forwards it to the support inbox.
// The message is accepted even if forwarding fails.
func (s *SupportService) Submit(ctx context.Context, in SubmitSupportInput) (*models.SupportMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	if len(in.Name) < 2 {
		return nil, models.NewValidationError("Name must be at least 2 characters")
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, models.NewValidationError("A valid email is required")
	}
	if len(in.Subject) < 3 {
		return nil, models.NewValidationError("Subject must be at least 3 characters")
	}
	if len(in.Message) < 10 {
		return nil, models.NewValidationError("Message must be at least 10 characters")
	}

	message := &models.SupportMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
		Status:  models.SupportNew,
	}
	if err := s.supportRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.SupportReceived(message)
	}
	return message, nil
}

func (s *SupportService) List(ctx context.Context, limit, offset int) ([]models.SupportMessage, error) {
	return s.supportRepo.List(ctx, limit, offset)
}

func (s *SupportService) UpdateStatus(ctx context.Context, id uint, status models.SupportStatus) (*models.SupportMessage, error) {
	switch status {
	case models.SupportNew, models.SupportReplied, models.SupportClosed:
	default:
		return nil, models.NewValidationError("Unknown support status")
	}

	if err := s.supportRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.supportRepo.GetByID(ctx, id)
}
