package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/services/earnings"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/metrics"
	"github.com/collegebuddy/api/utils/query"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount       = errors.New("payout amount must be greater than zero")
	ErrInsufficientBalance = errors.New("payout amount exceeds available balance")
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrPayoutFinalized     = errors.New("payout is already finalized")
	ErrInvalidTransition   = errors.New("payout can only move to SUCCESS or REJECTED")
)

// ListFilter narrows payout listings. UserID zero means every user.
type ListFilter struct {
	UserID uint
	Status model.PayoutStatus
	Page   int
	Limit  int
}

// Ledger manages withdrawal requests
type Ledger struct {
	db       *gorm.DB
	notifier *services.NotificationService
	now      func() time.Time
}

// NewLedger creates a payout ledger. notifier may be nil.
func NewLedger(db *gorm.DB, notifier *services.NotificationService) *Ledger {
	return &Ledger{db: db, notifier: notifier, now: time.Now}
}

// Request creates a PENDING payout if amount fits in the available balance
func (l *Ledger) Request(ctx context.Context, userID uint, amount decimal.Decimal, method string) (*model.Payout, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	amount = amount.Round(2)

	payout := &model.Payout{
		UserID: userID,
		Amount: amount,
		Status: model.PayoutPending,
		Method: method,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serialise concurrent requests of the same user
		var u model.User
		if err := query.LockForUpdate(tx).Select("id").First(&u, userID).Error; err != nil {
			return err
		}

		available, err := earnings.AvailableBalance(tx, userID)
		if err != nil {
			return fmt.Errorf("failed to compute balance: %w", err)
		}
		if amount.GreaterThan(available) {
			return ErrInsufficientBalance
		}
		return tx.Create(payout).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.PayoutTransitions.WithLabelValues(string(model.PayoutPending)).Inc()
	logger.L().Info("payout requested", zap.Uint("user_id", userID), zap.Uint("payout_id", payout.ID), zap.String("amount", amount.StringFixed(2)))
	return payout, nil
}

// List returns one page of payouts, newest first
func (l *Ledger) List(ctx context.Context, f ListFilter) ([]model.Payout, int64, error) {
	base := l.db.WithContext(ctx).Model(&model.Payout{})
	if f.UserID != 0 {
		base = base.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		base = base.Where("status = ?", f.Status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payouts []model.Payout
	q := base.Order("created_at DESC").Order("id DESC")
	if f.UserID == 0 {
		q = q.Preload("User")
	}
	if f.Limit > 0 {
		q = q.Offset((max(f.Page, 1) - 1) * f.Limit).Limit(f.Limit)
	}
	err := q.Find(&payouts).Error
	return payouts, total, err
}

// Transition settles a PENDING payout. Only one concurrent caller can win.
func (l *Ledger) Transition(ctx context.Context, id uint, to model.PayoutStatus, note string, actorID uint) (*model.Payout, error) {
	if to != model.PayoutSuccess && to != model.PayoutRejected {
		return nil, ErrInvalidTransition
	}

	db := l.db.WithContext(ctx)
	var payout model.Payout
	if err := db.First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}
	if payout.Status.IsTerminal() {
		return nil, ErrPayoutFinalized
	}

	now := l.now()
	result := db.Model(&model.Payout{}).
		Where("id = ? AND status = ?", id, model.PayoutPending).
		Updates(map[string]interface{}{
			"status":          to,
			"admin_note":      note,
			"processed_by_id": actorID,
			"processed_at":    now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrPayoutFinalized
	}

	payout.Status = to
	payout.AdminNote = note
	payout.ProcessedByID = &actorID
	payout.ProcessedAt = &now

	metrics.PayoutTransitions.WithLabelValues(string(to)).Inc()
	logger.L().Info("payout settled", zap.Uint("payout_id", id), zap.String("status", string(to)), zap.Uint("actor_id", actorID))

	if l.notifier != nil {
		title := "Payout sent"
		kind := model.NotificationTypeSuccess
		if to == model.PayoutRejected {
			title = "Payout rejected"
			kind = model.NotificationTypeWarning
		}
		l.notifier.Notify(ctx, services.CreateNotificationRequest{
			UserID:   payout.UserID,
			Type:     kind,
			Category: model.NotificationCategoryPayout,
			Title:    title,
			Message:  note,
			Metadata: &model.NotificationMetadata{PayoutID: payout.ID, Amount: payout.Amount.StringFixed(2)},
		})
	}
	return &payout, nil
}
