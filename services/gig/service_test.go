package gig

import (
	"context"
	"testing"

	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestGigLifecycleAndAward(t *testing.T) {
	store, err := database.NewMemoryStore(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	db := store.GetDB()
	ctx := context.Background()

	svc := NewService(db, services.NewNotificationService(db))
	user := &model.User{Name: "Asha", Email: "asha@x.com", PasswordHash: "x", ReferralCode: "asha1000"}
	require.NoError(t, db.Create(user).Error)

	_, err = svc.Create(ctx, Input{Title: ptr("Share"), Description: ptr("Share a post"), Reward: ptr(decimal.Zero)}, 1)
	assert.ErrorIs(t, err, ErrInvalidReward)

	gig, err := svc.Create(ctx, Input{Title: ptr("Share"), Description: ptr("Share a post"), Reward: ptr(decimal.RequireFromString("25.5"))}, 1)
	require.NoError(t, err)

	gig, err = svc.Update(ctx, gig.ID, Input{Reward: ptr(decimal.NewFromInt(30))})
	require.NoError(t, err)
	assert.Equal(t, "30", gig.Reward.String())

	earning, err := svc.Award(ctx, gig.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SourceGig, earning.Source)
	assert.Equal(t, "30", earning.Amount.String())

	_, err = svc.Award(ctx, gig.ID, user.ID)
	assert.ErrorIs(t, err, ErrAlreadyAwarded)

	_, err = svc.Award(ctx, gig.ID, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.Award(ctx, 999, user.ID)
	assert.ErrorIs(t, err, ErrGigNotFound)

	var count int64
	db.Model(&model.Earning{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	db.Model(&model.UserNotification{}).Where("user_id = ? AND category = ?", user.ID, model.NotificationCategoryGig).Count(&count)
	assert.Equal(t, int64(1), count)

	require.NoError(t, svc.Delete(ctx, gig.ID))
	assert.ErrorIs(t, svc.Delete(ctx, gig.ID), ErrGigNotFound)
	gigs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, gigs)
}
