package cron

import (
	"context"
	"time"

	"github.com/collegebuddy/api/model"
)

const (
	staleEnrollmentAge = 24 * time.Hour
	cronLogRetention   = 30 * 24 * time.Hour
	notificationMaxAge = 90 * 24 * time.Hour
)

// CleanupExpiredOTPs deletes codes that are expired or already used
func (m *CronManager) CleanupExpiredOTPs(ctx context.Context) (int64, error) {
	result := m.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", m.now()).
		Delete(&model.OTP{})
	return result.RowsAffected, result.Error
}

// CleanupVerificationTokens deletes expired email verification tokens
func (m *CronManager) CleanupVerificationTokens(ctx context.Context) (int64, error) {
	result := m.db.WithContext(ctx).
		Where("expires_at < ?", m.now()).
		Delete(&model.VerificationToken{})
	return result.RowsAffected, result.Error
}

// CleanupPasswordResets deletes expired or redeemed reset tokens
func (m *CronManager) CleanupPasswordResets(ctx context.Context) (int64, error) {
	result := m.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", m.now()).
		Delete(&model.PasswordResetToken{})
	return result.RowsAffected, result.Error
}

// CleanupRevokedTokens drops blacklist entries for tokens that have expired anyway
func (m *CronManager) CleanupRevokedTokens(ctx context.Context) (int64, error) {
	return m.blacklist.CleanupExpiredTokens(ctx)
}

// CleanupStaleEnrollments deletes checkouts that never received a payment
func (m *CronManager) CleanupStaleEnrollments(ctx context.Context) (int64, error) {
	result := m.db.WithContext(ctx).
		Where("status = ? AND payment_id IS NULL AND created_at < ?", model.EnrollmentPending, m.now().Add(-staleEnrollmentAge)).
		Delete(&model.CourseEnrollment{})
	return result.RowsAffected, result.Error
}

// CleanupOldLogs trims the cron log and read notifications
func (m *CronManager) CleanupOldLogs(ctx context.Context) (int64, error) {
	result := m.db.WithContext(ctx).
		Where("started_at < ?", m.now().Add(-cronLogRetention)).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	affected := result.RowsAffected

	if m.notifier != nil {
		n, err := m.notifier.CleanupOldNotifications(ctx, notificationMaxAge)
		if err != nil {
			return affected, err
		}
		affected += n
	}
	return affected, nil
}
