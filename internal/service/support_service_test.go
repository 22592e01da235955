package service

import (
	"context"
	"testing"

	"trackback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportService_Submit(t *testing.T) {
	t.Parallel()

	valid := SubmitSupportInput{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "Login trouble",
		Message: "I cannot sign in to my account since yesterday",
	}

	t.Run("stores and forwards message", func(t *testing.T) {
		t.Parallel()
		repo := noopSupportRepo()
		repo.createFn = func(_ context.Context, m *models.SupportMessage) error {
			m.ID = 1
			return nil
		}
		notifier := &notifierRecorder{}
		svc := NewSupportService(repo, notifier)

		msg, err := svc.Submit(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, models.SupportNew, msg.Status)
		assert.Equal(t, []uint{1}, notifier.support)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc := NewSupportService(noopSupportRepo(), nil)

		cases := []struct {
			name   string
			mutate func(in *SubmitSupportInput)
		}{
			{"short name", func(in *SubmitSupportInput) { in.Name = "J" }},
			{"bad email", func(in *SubmitSupportInput) { in.Email = "not-an-email" }},
			{"short subject", func(in *SubmitSupportInput) { in.Subject = "hi" }},
			{"short message", func(in *SubmitSupportInput) { in.Message = "help" }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				in := valid
				tc.mutate(&in)
				_, err := svc.Submit(context.Background(), in)
				assertValidationError(t, err)
			})
		}
	})
}

func TestSupportService_UpdateStatus(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown status", func(t *testing.T) {
		t.Parallel()
		svc := NewSupportService(noopSupportRepo(), nil)
		_, err := svc.UpdateStatus(context.Background(), 1, "archived")
		assertValidationError(t, err)
	})

	t.Run("updates and reloads", func(t *testing.T) {
		t.Parallel()
		repo := noopSupportRepo()
		var gotStatus models.SupportStatus
		repo.updateStatusFn = func(_ context.Context, id uint, status models.SupportStatus) error {
			gotStatus = status
			return nil
		}
		repo.getByIDFn = func(_ context.Context, id uint) (*models.SupportMessage, error) {
			return &models.SupportMessage{ID: id, Status: gotStatus}, nil
		}
		svc := NewSupportService(repo, nil)
		msg, err := svc.UpdateStatus(context.Background(), 1, models.SupportReplied)
		require.NoError(t, err)
		assert.Equal(t, models.SupportReplied, msg.Status)
	})
}
