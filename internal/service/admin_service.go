package service

import (
	"context"
	"strings"

	"trackback/internal/cache"
	"trackback/internal/models"
	"trackback/internal/repository"
)

// FacebookPublisher cross-posts a report to the public Facebook page
// and returns the identifier of the created page post.
type FacebookPublisher interface {
	Publish(ctx context.Context, post *models.Post) (string, error)
}

type AdminService struct {
	userRepo        repository.UserRepository
	postRepo        repository.PostRepository
	interactionRepo repository.InteractionRepository
	publisher       FacebookPublisher
}

// AdminStats is the dashboard summary shown on the admin console.
type AdminStats struct {
	TotalUsers    int64 `json:"total_users"`
	BlockedUsers  int64 `json:"blocked_users"`
	TotalPosts    int64 `json:"total_posts"`
	LostPosts     int64 `json:"lost_posts"`
	FoundPosts    int64 `json:"found_posts"`
	ResolvedPosts int64 `json:"resolved_posts"`
	TotalClaims   int64 `json:"total_claims"`
}

func NewAdminService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	interactionRepo repository.InteractionRepository,
	publisher FacebookPublisher,
) *AdminService {
	return &AdminService{
		userRepo:        userRepo,
		postRepo:        postRepo,
		interactionRepo: interactionRepo,
		publisher:       publisher,
	}
}

// Stats aggregates the dashboard counters. Results are cached briefly
// since the dashboard polls.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	var stats AdminStats
	err := cache.Aside(ctx, cache.AdminStatsKey, &stats, cache.AdminStatsTTL, func() error {
		var err error
		if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
			return err
		}
		if stats.BlockedUsers, err = s.userRepo.CountBlocked(ctx); err != nil {
			return err
		}
		if stats.TotalPosts, err = s.postRepo.Count(ctx); err != nil {
			return err
		}
		if stats.LostPosts, err = s.postRepo.CountByKind(ctx, models.KindLost); err != nil {
			return err
		}
		if stats.FoundPosts, err = s.postRepo.CountByKind(ctx, models.KindFound); err != nil {
			return err
		}
		if stats.ResolvedPosts, err = s.postRepo.CountByStatus(ctx, models.StatusResolved); err != nil {
			return err
		}
		if stats.TotalClaims, err = s.interactionRepo.Count(ctx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers returns accounts with their posts, most recently active first.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.ListWithPosts(ctx, limit, offset)
}

// ListAllPosts returns every post including hidden and resolved ones.
func (s *AdminService) ListAllPosts(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.postRepo.ListAll(ctx, limit, offset)
}

// SetUserBlocked flips the blocked flag on an account. Accounts
// holding ADMIN or OWNER cannot be blocked.
func (s *AdminService) SetUserBlocked(ctx context.Context, userID uint, blocked bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if blocked && user.Roles.AtLeast(models.RoleAdmin) {
		return nil, models.NewForbiddenError("Admin accounts cannot be blocked")
	}

	user.Blocked = blocked
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account and everything it posted. Admin and
// owner accounts must be demoted before deletion.
func (s *AdminService) DeleteUser(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Roles.AtLeast(models.RoleAdmin) {
		return models.NewForbiddenError("Admin accounts cannot be deleted")
	}
	return s.userRepo.Delete(ctx, userID)
}

func (s *AdminService) SetPostHidden(ctx context.Context, postID uint, hidden bool) error {
	return s.postRepo.SetHidden(ctx, postID, hidden)
}

func (s *AdminService) DeletePost(ctx context.Context, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// ApproveFacebook cross-posts a report to the Facebook page and records
// the page post ID. Re-approving an already published post is a no-op.
func (s *AdminService) ApproveFacebook(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.FacebookPostID != "" {
		return post, nil
	}
	if s.publisher == nil {
		return nil, models.NewValidationError("Facebook publishing is not configured")
	}

	fbPostID, err := s.publisher.Publish(ctx, post)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.SetFacebookPublished(ctx, post.ID, fbPostID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// CreateAdmin grants the ADMIN role to an account, creating it first if
// the email is unknown. New admin accounts carry no password until
// their first console login sets one.
func (s *AdminService) CreateAdmin(ctx context.Context, email, fullName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, models.NewValidationError("A valid email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		fullName = strings.TrimSpace(fullName)
		if fullName == "" {
			return nil, models.NewValidationError("Full name is required for a new admin account")
		}
		user = &models.User{
			Email:        email,
			PasswordHash: models.PasswordSentinel,
			FullName:     fullName,
			Roles:        models.RoleSet{models.RoleUser, models.RoleAdmin},
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if user.Roles.Has(models.RoleAdmin) {
		return nil, models.NewConflictError("User is already an admin")
	}
	user.Roles = user.Roles.Add(models.RoleAdmin)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RemoveAdmin revokes the ADMIN role. Owner accounts cannot be demoted.
func (s *AdminService) RemoveAdmin(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Roles.Has(models.RoleOwner) {
		return nil, models.NewForbiddenError("The owner account cannot be demoted")
	}
	if !user.Roles.Has(models.RoleAdmin) {
		return nil, models.NewConflictError("User is not an admin")
	}

	user.Roles = user.Roles.Remove(models.RoleAdmin)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetAdminPassword clears an admin's local password so their next
// console login sets a new one.
func (s *AdminService) ResetAdminPassword(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Roles.Has(models.RoleAdmin) {
		return nil, models.NewValidationError("User is not an admin")
	}
	if user.Roles.Has(models.RoleOwner) {
		return nil, models.NewForbiddenError("The owner password cannot be reset here")
	}

	user.PasswordHash = models.PasswordSentinel
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
