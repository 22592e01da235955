package service

import (
	"context"
	"testing"

	"trackback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Function-field stubs for repository interfaces. Unset functions
// return zero values so each test only wires what it exercises.

type userRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByEmailFn    func(ctx context.Context, email string) (*models.User, error)
	createFn        func(ctx context.Context, user *models.User) error
	updateFn        func(ctx context.Context, user *models.User) error
	deleteFn        func(ctx context.Context, id uint) error
	listFn          func(ctx context.Context, limit, offset int) ([]models.User, error)
	listWithPostsFn func(ctx context.Context, limit, offset int) ([]models.User, error)
	countFn         func(ctx context.Context) (int64, error)
	countBlockedFn  func(ctx context.Context) (int64, error)
	isBlockedFn     func(ctx context.Context, id uint) (bool, error)
}

func noopUserRepo() *userRepoStub { return &userRepoStub{} }

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn != nil {
		return s.getByEmailFn(ctx, email)
	}
	return nil, nil
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn != nil {
		return s.createFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *userRepoStub) ListWithPosts(ctx context.Context, limit, offset int) ([]models.User, error) {
	if s.listWithPostsFn != nil {
		return s.listWithPostsFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	if s.countFn != nil {
		return s.countFn(ctx)
	}
	return 0, nil
}

func (s *userRepoStub) CountBlocked(ctx context.Context) (int64, error) {
	if s.countBlockedFn != nil {
		return s.countBlockedFn(ctx)
	}
	return 0, nil
}

func (s *userRepoStub) IsBlocked(ctx context.Context, id uint) (bool, error) {
	if s.isBlockedFn != nil {
		return s.isBlockedFn(ctx, id)
	}
	return false, nil
}

type postRepoStub struct {
	getByIDFn              func(ctx context.Context, id uint) (*models.Post, error)
	createFn               func(ctx context.Context, post *models.Post) error
	updateFn               func(ctx context.Context, post *models.Post) error
	deleteFn               func(ctx context.Context, id uint) error
	listActiveFn           func(ctx context.Context, kind models.PostKind, limit, offset int) ([]models.Post, error)
	listAllFn              func(ctx context.Context, limit, offset int) ([]models.Post, error)
	listByUserIDFn         func(ctx context.Context, userID uint) ([]models.Post, error)
	searchDeviceFn         func(ctx context.Context, identifier string) ([]models.Post, error)
	countFn                func(ctx context.Context) (int64, error)
	countByStatusFn        func(ctx context.Context, status models.PostStatus) (int64, error)
	countByKindFn          func(ctx context.Context, kind models.PostKind) (int64, error)
	setHiddenFn            func(ctx context.Context, id uint, hidden bool) error
	setFacebookPublishedFn func(ctx context.Context, id uint, fbPostID string) error
}

func noopPostRepo() *postRepoStub { return &postRepoStub{} }

func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if s.createFn != nil {
		return s.createFn(ctx, post)
	}
	return nil
}

func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, post)
	}
	return nil
}

func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id)
	}
	return nil
}

func (s *postRepoStub) ListActive(ctx context.Context, kind models.PostKind, limit, offset int) ([]models.Post, error) {
	if s.listActiveFn != nil {
		return s.listActiveFn(ctx, kind, limit, offset)
	}
	return nil, nil
}

func (s *postRepoStub) ListAll(ctx context.Context, limit, offset int) ([]models.Post, error) {
	if s.listAllFn != nil {
		return s.listAllFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *postRepoStub) ListByUserID(ctx context.Context, userID uint) ([]models.Post, error) {
	if s.listByUserIDFn != nil {
		return s.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (s *postRepoStub) SearchDevice(ctx context.Context, identifier string) ([]models.Post, error) {
	if s.searchDeviceFn != nil {
		return s.searchDeviceFn(ctx, identifier)
	}
	return nil, nil
}

func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	if s.countFn != nil {
		return s.countFn(ctx)
	}
	return 0, nil
}

func (s *postRepoStub) CountByStatus(ctx context.Context, status models.PostStatus) (int64, error) {
	if s.countByStatusFn != nil {
		return s.countByStatusFn(ctx, status)
	}
	return 0, nil
}

func (s *postRepoStub) CountByKind(ctx context.Context, kind models.PostKind) (int64, error) {
	if s.countByKindFn != nil {
		return s.countByKindFn(ctx, kind)
	}
	return 0, nil
}

func (s *postRepoStub) SetHidden(ctx context.Context, id uint, hidden bool) error {
	if s.setHiddenFn != nil {
		return s.setHiddenFn(ctx, id, hidden)
	}
	return nil
}

func (s *postRepoStub) SetFacebookPublished(ctx context.Context, id uint, fbPostID string) error {
	if s.setFacebookPublishedFn != nil {
		return s.setFacebookPublishedFn(ctx, id, fbPostID)
	}
	return nil
}

type interactionRepoStub struct {
	createFn                func(ctx context.Context, interaction *models.FoundInteraction) error
	getByIDFn               func(ctx context.Context, id uint) (*models.FoundInteraction, error)
	existsFn                func(ctx context.Context, postID uint, contact string) (bool, error)
	confirmFn               func(ctx context.Context, id uint) (*models.FoundInteraction, error)
	pendingClaimsForOwnerFn func(ctx context.Context, ownerEmail string) ([]models.ClaimSummary, error)
	postsByFinderContactFn  func(ctx context.Context, contact string) ([]models.Post, error)
	countFn                 func(ctx context.Context) (int64, error)
}

func noopInteractionRepo() *interactionRepoStub { return &interactionRepoStub{} }

func (s *interactionRepoStub) Create(ctx context.Context, interaction *models.FoundInteraction) error {
	if s.createFn != nil {
		return s.createFn(ctx, interaction)
	}
	return nil
}

func (s *interactionRepoStub) GetByID(ctx context.Context, id uint) (*models.FoundInteraction, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Interaction", id)
}

func (s *interactionRepoStub) ExistsForPostAndContact(ctx context.Context, postID uint, contact string) (bool, error) {
	if s.existsFn != nil {
		return s.existsFn(ctx, postID, contact)
	}
	return false, nil
}

func (s *interactionRepoStub) Confirm(ctx context.Context, id uint) (*models.FoundInteraction, error) {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, id)
	}
	return nil, models.NewNotFoundError("Interaction", id)
}

func (s *interactionRepoStub) PendingClaimsForOwner(ctx context.Context, ownerEmail string) ([]models.ClaimSummary, error) {
	if s.pendingClaimsForOwnerFn != nil {
		return s.pendingClaimsForOwnerFn(ctx, ownerEmail)
	}
	return nil, nil
}

func (s *interactionRepoStub) PostsByFinderContact(ctx context.Context, contact string) ([]models.Post, error) {
	if s.postsByFinderContactFn != nil {
		return s.postsByFinderContactFn(ctx, contact)
	}
	return nil, nil
}

func (s *interactionRepoStub) Count(ctx context.Context) (int64, error) {
	if s.countFn != nil {
		return s.countFn(ctx)
	}
	return 0, nil
}

type supportRepoStub struct {
	createFn       func(ctx context.Context, message *models.SupportMessage) error
	getByIDFn      func(ctx context.Context, id uint) (*models.SupportMessage, error)
	listFn         func(ctx context.Context, limit, offset int) ([]models.SupportMessage, error)
	updateStatusFn func(ctx context.Context, id uint, status models.SupportStatus) error
}

func noopSupportRepo() *supportRepoStub { return &supportRepoStub{} }

func (s *supportRepoStub) Create(ctx context.Context, message *models.SupportMessage) error {
	if s.createFn != nil {
		return s.createFn(ctx, message)
	}
	return nil
}

func (s *supportRepoStub) GetByID(ctx context.Context, id uint) (*models.SupportMessage, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("SupportMessage", id)
}

func (s *supportRepoStub) List(ctx context.Context, limit, offset int) ([]models.SupportMessage, error) {
	if s.listFn != nil {
		return s.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (s *supportRepoStub) UpdateStatus(ctx context.Context, id uint, status models.SupportStatus) error {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, id, status)
	}
	return nil
}

// notifierRecorder records notification calls for assertions.
type notifierRecorder struct {
	reported  []string // owner emails
	confirmed []uint   // claim IDs
	support   []uint   // message IDs
}

func (n *notifierRecorder) ClaimReported(post *models.Post, claim *models.FoundInteraction, ownerEmail string) {
	n.reported = append(n.reported, ownerEmail)
}

func (n *notifierRecorder) ClaimConfirmed(post *models.Post, claim *models.FoundInteraction) {
	n.confirmed = append(n.confirmed, claim.ID)
}

func (n *notifierRecorder) SupportReceived(message *models.SupportMessage) {
	n.support = append(n.support, message.ID)
}

// publisherStub fakes the Facebook page publisher.
type publisherStub struct {
	publishFn func(ctx context.Context, post *models.Post) (string, error)
	calls     int
}

func (p *publisherStub) Publish(ctx context.Context, post *models.Post) (string, error) {
	p.calls++
	if p.publishFn != nil {
		return p.publishFn(ctx, post)
	}
	return "page_post_1", nil
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, 400, models.StatusFor(err))
}

func assertConflictError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, 409, models.StatusFor(err))
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, 403, models.StatusFor(err))
}
