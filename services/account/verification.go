package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/collegebuddy/api/utils/crypto"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VerifyEmail redeems a verification link token
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vt model.VerificationToken
		if err := tx.Where("token = ?", token).First(&vt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if !s.now().Before(vt.ExpiresAt) {
			return ErrInvalidToken
		}
		if err := tx.Model(&model.User{}).Where("id = ?", vt.UserID).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", vt.UserID).Delete(&model.VerificationToken{}).Error
	})
}

func otpThrottleKey(email string) string {
	return "otp:throttle:" + email
}

// SendOTP mails a fresh code to an unverified account. Earlier unused codes
// stop working. Resends within OTPResendInterval are refused when the cache is
// reachable.
func (s *Service) SendOTP(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	if s.cache != nil {
		ok, err := s.cache.SetNX(ctx, otpThrottleKey(email), "1", OTPResendInterval)
		if err != nil {
			logger.L().Debug("otp throttle unavailable", zap.Error(err))
		} else if !ok {
			return ErrOTPThrottled
		}
	}

	code, err := crypto.RandomDigits(OTPLength)
	if err != nil {
		return err
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.OTP{}).
			Where("email = ? AND purpose = ? AND used_at IS NULL", email, model.OTPPurposeVerifyEmail).
			Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Create(&model.OTP{
			Email:     email,
			Code:      code,
			Purpose:   model.OTPPurposeVerifyEmail,
			ExpiresAt: now.Add(OTPTTL),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	if err := s.emails.SendOTPEmail(ctx, email, code, OTPTTL); err != nil {
		logger.L().Warn("otp email failed", zap.String("email", email), zap.Error(err))
	}
	return nil
}

// VerifyOTP checks the latest code for email. A wrong guess counts against the
// attempt limit; a match marks the code used and the user verified.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = validation.NormalizeEmail(email)
	now := s.now()

	var outcome error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var otp model.OTP
		err := tx.Where("email = ? AND purpose = ? AND used_at IS NULL", email, model.OTPPurposeVerifyEmail).
			Order("created_at DESC").Order("id DESC").
			First(&otp).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = ErrInvalidOTP
				return nil
			}
			return err
		}

		switch {
		case otp.Attempts >= OTPMaxAttempts:
			outcome = ErrTooManyAttempts
			return nil
		case !now.Before(otp.ExpiresAt):
			outcome = ErrOTPExpired
			return nil
		}

		if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
			outcome = ErrInvalidOTP
			return tx.Model(&otp).UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
		}

		if err := tx.Model(&otp).Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("email = ?", email).Update("is_verified", true).Error
	})
	if err != nil {
		return err
	}
	return outcome
}

// ForgotPassword mails a reset link if the email belongs to an account. The
// result is the same either way.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)

	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.L().Debug("password reset for unknown email", zap.String("email", email))
			return nil
		}
		return err
	}

	token, err := crypto.RandomHex(32)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Create(&model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: crypto.HashToken(token),
		ExpiresAt: s.now().Add(PasswordResetTTL),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.emails.SendPasswordResetEmail(ctx, user.Email, user.Name, token, PasswordResetTTL); err != nil {
		logger.L().Warn("password reset email failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ResetPassword redeems a reset token once and signs out every session
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := s.now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset model.PasswordResetToken
		if err := tx.Where("token_hash = ?", crypto.HashToken(token)).First(&reset).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if !reset.IsUsable(now) {
			return ErrInvalidToken
		}

		result := tx.Model(&model.PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL", reset.ID).
			Update("used_at", now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInvalidToken
		}

		if err := tx.Model(&model.User{}).Where("id = ?", reset.UserID).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return auth.RevokeAllUserTokens(tx, reset.UserID)
	})
}
