package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NormalizeCode trims and lowercases a user supplied code
func NormalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// CodeTaken checks users, including soft deleted ones, for an existing code
func CodeTaken(db *gorm.DB) ExistsFunc {
	return func(ctx context.Context, code string) (bool, error) {
		var count int64
		err := db.WithContext(ctx).Unscoped().Model(&model.User{}).Where("referral_code = ?", code).Count(&count).Error
		return count > 0, err
	}
}

// Linker attaches a referee to the owner of a referral code
type Linker struct{}

// NewLinker creates a linker
func NewLinker() *Linker {
	return &Linker{}
}

// Link creates a PENDING referral from the code owner to referee and records
// the referrer on the referee. tx should be the caller's transaction.
func (l *Linker) Link(tx *gorm.DB, referee *model.User, code string) (*model.Referral, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrCodeNotFound
	}

	var referrer model.User
	if err := tx.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to resolve referral code: %w", err)
	}

	if referrer.ID == referee.ID || strings.EqualFold(referrer.Email, referee.Email) {
		return nil, ErrSelfReferral
	}
	if referee.ReferredByID != nil {
		return nil, ErrAlreadyReferred
	}

	ref := &model.Referral{
		ReferrerID: referrer.ID,
		RefereeID:  referee.ID,
		Status:     model.ReferralPending,
	}
	// referee_id is unique, a concurrent link loses here
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(ref)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create referral: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyReferred
	}

	if err := tx.Model(&model.User{}).Where("id = ?", referee.ID).Update("referred_by_id", referrer.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to record referrer: %w", err)
	}
	referee.ReferredByID = &referrer.ID
	ref.Referrer = &referrer

	return ref, nil
}

// LinkAtRegistration links like Link but never fails the registration for a
// bad code: unknown codes, self-referrals and repeat links are logged and
// skipped, returning a nil referral.
func (l *Linker) LinkAtRegistration(tx *gorm.DB, referee *model.User, code string) (*model.Referral, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	ref, err := l.Link(tx, referee, code)
	switch {
	case err == nil:
		return ref, nil
	case errors.Is(err, ErrCodeNotFound), errors.Is(err, ErrSelfReferral), errors.Is(err, ErrAlreadyReferred):
		logger.L().Warn("referral code not resolved",
			zap.String("code", NormalizeCode(code)),
			zap.String("email", referee.Email),
			zap.String("reason", err.Error()))
		return nil, nil
	default:
		return nil, err
	}
}
