package payout

import (
	"context"
	"testing"

	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T, earned int64) (*gorm.DB, *Ledger, *model.User) {
	t.Helper()
	store, err := database.NewMemoryStore(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	db := store.GetDB()

	user := &model.User{Name: "Alice", Email: "alice@x.com", PasswordHash: "x", ReferralCode: "alice1000"}
	require.NoError(t, db.Create(user).Error)
	if earned > 0 {
		require.NoError(t, db.Create(&model.Earning{UserID: user.ID, Amount: decimal.NewFromInt(earned), Source: model.SourceGig, Kind: model.KindGigReward}).Error)
	}
	return db, NewLedger(db, services.NewNotificationService(db)), user
}

func TestRequest_Validation(t *testing.T) {
	_, ledger, user := setup(t, 150)
	ctx := context.Background()

	tests := []struct {
		name   string
		amount decimal.Decimal
		want   error
	}{
		{"zero", decimal.Zero, ErrInvalidAmount},
		{"negative", decimal.NewFromInt(-5), ErrInvalidAmount},
		{"above balance", decimal.NewFromInt(151), ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ledger.Request(ctx, user.ID, tt.amount, "upi:alice@okbank")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	p, err := ledger.Request(ctx, user.ID, decimal.NewFromInt(100), "upi:alice@okbank")
	require.NoError(t, err)
	assert.Equal(t, model.PayoutPending, p.Status)

	// the pending payout is reserved
	_, err = ledger.Request(ctx, user.ID, decimal.NewFromInt(51), "upi:alice@okbank")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = ledger.Request(ctx, user.ID, decimal.NewFromInt(50), "upi:alice@okbank")
	assert.NoError(t, err)
}

func TestTransition_TerminalStates(t *testing.T) {
	db, ledger, user := setup(t, 150)
	ctx := context.Background()

	p, err := ledger.Request(ctx, user.ID, decimal.NewFromInt(100), "upi")
	require.NoError(t, err)

	rejected, err := ledger.Transition(ctx, p.ID, model.PayoutRejected, "bank details invalid", 1)
	require.NoError(t, err)
	assert.Equal(t, model.PayoutRejected, rejected.Status)

	_, err = ledger.Transition(ctx, p.ID, model.PayoutSuccess, "", 1)
	assert.ErrorIs(t, err, ErrPayoutFinalized)

	var stored model.Payout
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, model.PayoutRejected, stored.Status)
	assert.Equal(t, "bank details invalid", stored.AdminNote)
	require.NotNil(t, stored.ProcessedAt)

	// rejected money is available again
	_, err = ledger.Request(ctx, user.ID, decimal.NewFromInt(150), "upi")
	assert.NoError(t, err)

	_, err = ledger.Transition(ctx, p.ID, model.PayoutPending, "", 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = ledger.Transition(ctx, 999, model.PayoutSuccess, "", 1)
	assert.ErrorIs(t, err, ErrPayoutNotFound)

	var notes int64
	db.Model(&model.UserNotification{}).Where("user_id = ? AND category = ?", user.ID, model.NotificationCategoryPayout).Count(&notes)
	assert.Equal(t, int64(1), notes)
}

func TestList(t *testing.T) {
	_, ledger, user := setup(t, 500)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := ledger.Request(ctx, user.ID, decimal.NewFromInt(100), "upi")
		require.NoError(t, err)
	}
	first, _, err := ledger.List(ctx, ListFilter{UserID: user.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	_, err = ledger.Transition(ctx, first[0].ID, model.PayoutSuccess, "paid", 1)
	require.NoError(t, err)

	pending, total, err := ledger.List(ctx, ListFilter{UserID: user.ID, Status: model.PayoutPending, Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, pending, 1)

	all, total, err := ledger.List(ctx, ListFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.NotNil(t, all[0].User)
}
