package service

import (
	"context"
	"regexp"
	"strings"

	"trackback/internal/models"
	"trackback/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserService struct {
	userRepo repository.UserRepository
}

// SyncUserInput carries the profile fields pushed by the client after
// it authenticates the user with its identity provider.
type SyncUserInput struct {
	Email         string
	FullName      string
	PhoneNumber   string
	TermsAccepted bool
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// SyncUser upserts an account from the client's identity provider.
// New accounts get the USER role and no local password; existing
// accounts have their profile fields refreshed.
func (s *UserService) SyncUser(ctx context.Context, in SyncUserInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)

	if !emailPattern.MatchString(in.Email) {
		return nil, models.NewValidationError("A valid email is required")
	}
	if in.FullName == "" {
		return nil, models.NewValidationError("Full name is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		user = &models.User{
			Email:         in.Email,
			PasswordHash:  models.PasswordSentinel,
			FullName:      in.FullName,
			PhoneNumber:   strings.TrimSpace(in.PhoneNumber),
			TermsAccepted: in.TermsAccepted,
			Roles:         models.RoleSet{models.RoleUser},
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	if user.Blocked {
		return nil, models.NewForbiddenError("Account is blocked")
	}

	user.FullName = in.FullName
	if phone := strings.TrimSpace(in.PhoneNumber); phone != "" {
		user.PhoneNumber = phone
	}
	if in.TermsAccepted {
		user.TermsAccepted = true
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", email)
	}
	return user, nil
}
