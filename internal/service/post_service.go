package service

import (
	"context"
	"strings"
	"time"

	"trackback/internal/models"
	"trackback/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	UserID       uint
	Title        string
	Description  string
	Location     string
	Date         time.Time
	Time         string
	ItemType     models.ItemType
	Kind         models.PostKind
	Images       []string
	IMEI         string
	SerialNumber string
	IDNumber     string
	Color        string
	ContactPhone string
}

type UpdatePostInput struct {
	PostID       uint
	CallerID     uint
	IsAdmin      bool
	Title        string
	Description  string
	Location     string
	ContactPhone string
	Images       []string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)

	if len(in.Title) < 3 {
		return nil, models.NewValidationError("Title must be at least 3 characters")
	}
	if in.Description == "" {
		return nil, models.NewValidationError("Description is required")
	}
	if in.Location == "" {
		return nil, models.NewValidationError("Location is required")
	}
	if !in.ItemType.Valid() {
		return nil, models.NewValidationError("Unknown item type")
	}
	if in.Kind != models.KindLost && in.Kind != models.KindFound {
		return nil, models.NewValidationError("Kind must be LOST or FOUND")
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		Date:         in.Date,
		Time:         in.Time,
		ItemType:     in.ItemType,
		Kind:         in.Kind,
		Status:       models.StatusActive,
		UserID:       user.ID,
		UserName:     user.FullName,
		UserInitial:  initialOf(user.FullName),
		Images:       in.Images,
		IMEI:         strings.TrimSpace(in.IMEI),
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		IDNumber:     strings.TrimSpace(in.IDNumber),
		Color:        in.Color,
		ContactPhone: strings.TrimSpace(in.ContactPhone),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func initialOf(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1])
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) ListPosts(ctx context.Context, kind models.PostKind, limit, offset int) ([]models.Post, error) {
	if kind != models.KindLost && kind != models.KindFound {
		return nil, models.NewValidationError("Kind must be LOST or FOUND")
	}
	return s.postRepo.ListActive(ctx, kind, limit, offset)
}

func (s *PostService) ListMyPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.postRepo.ListByUserID(ctx, userID)
}

// SearchDevice finds posts matching a device identifier. Identifiers
// shorter than 5 characters are rejected to avoid scraping the feed.
func (s *PostService) SearchDevice(ctx context.Context, identifier string) ([]models.Post, error) {
	identifier = strings.TrimSpace(identifier)
	if len(identifier) < 5 {
		return nil, models.NewValidationError("Identifier must be at least 5 characters")
	}
	return s.postRepo.SearchDevice(ctx, identifier)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.CallerID && !in.IsAdmin {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if len(title) < 3 {
			return nil, models.NewValidationError("Title must be at least 3 characters")
		}
		post.Title = title
	}
	if desc := strings.TrimSpace(in.Description); desc != "" {
		post.Description = desc
	}
	if loc := strings.TrimSpace(in.Location); loc != "" {
		post.Location = loc
	}
	if phone := strings.TrimSpace(in.ContactPhone); phone != "" {
		post.ContactPhone = phone
	}
	if in.Images != nil {
		post.Images = in.Images
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, postID, callerID uint, isAdmin bool) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != callerID && !isAdmin {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}
