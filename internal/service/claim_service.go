// Package service contains the business logic between handlers and repositories.
package service

import (
	"context"
	"strings"

	"trackback/internal/models"
	"trackback/internal/observability"
	"trackback/internal/repository"
)

// ClaimNotifier delivers claim-related notifications. Implementations
// must not block: delivery happens in the background and failures never
// affect the request that triggered them.
type ClaimNotifier interface {
	ClaimReported(post *models.Post, claim *models.FoundInteraction, ownerEmail string)
	ClaimConfirmed(post *models.Post, claim *models.FoundInteraction)
}

type ClaimService struct {
	interactionRepo repository.InteractionRepository
	postRepo        repository.PostRepository
	userRepo        repository.UserRepository
	notifier        ClaimNotifier
}

type ReportFoundInput struct {
	PostID        uint
	FinderName    string
	FinderContact string
	FinderPhone   string
	Message       string
}

func NewClaimService(
	interactionRepo repository.InteractionRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifier ClaimNotifier,
) *ClaimService {
	return &ClaimService{
		interactionRepo: interactionRepo,
		postRepo:        postRepo,
		userRepo:        userRepo,
		notifier:        notifier,
	}
}

// ReportFound records that someone found the item described by a loss
// report. The owner is notified by email after the claim is stored;
// notification failures never fail the report.
func (s *ClaimService) ReportFound(ctx context.Context, in ReportFoundInput) (*models.FoundInteraction, error) {
	in.FinderName = strings.TrimSpace(in.FinderName)
	in.FinderContact = strings.TrimSpace(in.FinderContact)

	if in.FinderName == "" {
		return nil, models.NewValidationError("Finder name is required")
	}
	if in.FinderContact == "" {
		return nil, models.NewValidationError("Finder contact is required")
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !post.Claimable() {
		return nil, models.NewConflictError("Post is not open for found reports")
	}

	exists, err := s.interactionRepo.ExistsForPostAndContact(ctx, post.ID, in.FinderContact)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("You have already reported this item as found")
	}

	interaction := &models.FoundInteraction{
		PostID:        post.ID,
		FinderName:    in.FinderName,
		FinderContact: in.FinderContact,
		FinderPhone:   strings.TrimSpace(in.FinderPhone),
		Message:       strings.TrimSpace(in.Message),
		Status:        models.ClaimPending,
	}
	if err := s.interactionRepo.Create(ctx, interaction); err != nil {
		return nil, err
	}

	observability.ClaimsReported.Inc()

	if s.notifier != nil {
		owner, ownerErr := s.userRepo.GetByID(ctx, post.UserID)
		if ownerErr == nil && owner != nil {
			s.notifier.ClaimReported(post, interaction, owner.Email)
		}
	}

	return interaction, nil
}

// ConfirmClaim lets the item owner accept a found report. Accepting
// also resolves the post; both happen atomically. Re-confirming an
// already accepted claim succeeds without side effects.
func (s *ClaimService) ConfirmClaim(ctx context.Context, claimID uint, callerEmail string, isAdmin bool) (*models.FoundInteraction, error) {
	interaction, err := s.interactionRepo.GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !isAdmin {
		owner, err := s.userRepo.GetByID(ctx, interaction.Post.UserID)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(owner.Email, callerEmail) {
			return nil, models.NewForbiddenError("Only the post owner can confirm this claim")
		}
	}

	alreadyAccepted := interaction.Status == models.ClaimAccepted

	confirmed, err := s.interactionRepo.Confirm(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !alreadyAccepted {
		observability.ClaimsConfirmed.Inc()
		if s.notifier != nil {
			s.notifier.ClaimConfirmed(&confirmed.Post, confirmed)
		}
	}

	return confirmed, nil
}

// ListClaimsForOwner returns the pending found reports filed against
// the given owner's posts, newest first.
func (s *ClaimService) ListClaimsForOwner(ctx context.Context, ownerEmail string) ([]models.ClaimSummary, error) {
	ownerEmail = strings.TrimSpace(ownerEmail)
	if ownerEmail == "" {
		return nil, models.NewValidationError("Owner email is required")
	}
	return s.interactionRepo.PendingClaimsForOwner(ctx, ownerEmail)
}

// ListFoundByFinder returns the posts a finder has reported found.
func (s *ClaimService) ListFoundByFinder(ctx context.Context, finderContact string) ([]models.Post, error) {
	finderContact = strings.TrimSpace(finderContact)
	if finderContact == "" {
		return nil, models.NewValidationError("Finder email is required")
	}
	return s.interactionRepo.PostsByFinderContact(ctx, finderContact)
}
