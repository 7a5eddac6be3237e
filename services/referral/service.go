package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/services/earnings"
	"github.com/collegebuddy/api/utils/cache"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/metrics"
	"github.com/collegebuddy/api/utils/query"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const statsTTL = 60 * time.Second

// Stats is the referral dashboard of one referrer
type Stats struct {
	ReferralCode     string          `json:"referral_code"`
	SuccessCount     int64           `json:"success_count"`
	PendingCount     int64           `json:"pending_count"` // PENDING and GUEST
	RejectedCount    int64           `json:"rejected_count"`
	TotalInvites     int64           `json:"total_invites"`
	TotalEnrollments int64           `json:"total_enrollments"`
	InviteEarnings   decimal.Decimal `json:"invite_earnings"`
	CourseEarnings   decimal.Decimal `json:"course_earnings"`
	WeeklyEarnings   decimal.Decimal `json:"weekly_earnings"`
	MonthlyEarnings  decimal.Decimal `json:"monthly_earnings"`
	Total            decimal.Decimal `json:"total"`
}

// Item is one row of the referrer's referral list
type Item struct {
	ID         uint                 `json:"id"`
	Status     model.ReferralStatus `json:"status"`
	Name       string               `json:"name"`
	Email      string               `json:"email"`
	Phone      string               `json:"phone,omitempty"`
	CourseCode string               `json:"course_code,omitempty"`
	Commission decimal.Decimal      `json:"commission"`
	CreatedAt  time.Time            `json:"created_at"`
}

// ListFilter narrows the superadmin referral listing
type ListFilter struct {
	Status model.ReferralStatus
	Page   int
	Limit  int
}

// Service owns referral state outside of registration and payment
type Service struct {
	db       *gorm.DB
	linker   *Linker
	cache    cache.Store
	notifier *services.NotificationService
	earnings *earnings.Service
}

// NewService wires the referral service. cache may be nil.
func NewService(db *gorm.DB, store cache.Store, notifier *services.NotificationService, earn *earnings.Service) *Service {
	return &Service{
		db:       db,
		linker:   NewLinker(),
		cache:    store,
		notifier: notifier,
		earnings: earn,
	}
}

// Linker exposes the linker for the registration transaction
func (s *Service) Linker() *Linker {
	return s.linker
}

// Apply attaches a referrer after registration. Unlike registration, every
// rejection is reported to the caller.
func (s *Service) Apply(ctx context.Context, userID uint, code string) (*model.Referral, error) {
	var ref *model.Referral
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := query.LockForUpdate(tx).First(&user, userID).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if user.ReferredByID != nil {
			return ErrAlreadyReferred
		}

		var paid int64
		if err := tx.Model(&model.CourseEnrollment{}).
			Where("student_id = ? AND status = ?", userID, model.EnrollmentActive).
			Count(&paid).Error; err != nil {
			return err
		}
		if paid > 0 {
			return ErrAlreadyEnrolled
		}

		linked, err := s.linker.Link(tx, &user, code)
		if err != nil {
			return err
		}
		ref = linked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.AfterLink(ctx, ref)
	return ref, nil
}

// AfterLink runs once a link is committed: the referrer's cached stats are
// dropped and the referrer is notified
func (s *Service) AfterLink(ctx context.Context, ref *model.Referral) {
	if ref == nil {
		return
	}
	metrics.ReferralsLinked.Inc()
	s.Invalidate(ctx, ref.ReferrerID)
	if s.notifier != nil {
		s.notifier.Notify(ctx, services.CreateNotificationRequest{
			UserID:   ref.ReferrerID,
			Type:     model.NotificationTypeInfo,
			Category: model.NotificationCategoryReferral,
			Title:    "New referral",
			Message:  "Someone joined with your referral code",
			Metadata: &model.NotificationMetadata{ReferralID: ref.ID},
		})
	}
}

// CheckReview validates a superadmin transition from -> to
func CheckReview(from, to model.ReferralStatus) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	if to == model.ReferralSuccess {
		return ErrManualSuccess
	}
	if !from.IsOpen() {
		return ErrReferralFinalized
	}
	return nil
}

// Review moves an open referral between GUEST and PENDING or rejects it
func (s *Service) Review(ctx context.Context, id uint, to model.ReferralStatus, message string) (*model.Referral, error) {
	var ref model.Referral
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := query.LockForUpdate(tx).First(&ref, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReferralNotFound
			}
			return err
		}
		if err := CheckReview(ref.Status, to); err != nil {
			return err
		}

		updates := map[string]interface{}{"status": to, "message": message}
		if to == model.ReferralRejected {
			now := time.Now()
			updates["resolved_at"] = now
			ref.ResolvedAt = &now
		}

		// the status guard keeps a concurrent payment from being overwritten
		result := tx.Model(&model.Referral{}).
			Where("id = ? AND status IN ?", id, []model.ReferralStatus{model.ReferralGuest, model.ReferralPending}).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrReferralFinalized
		}
		ref.Status = to
		ref.Message = message
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(ctx, ref.ReferrerID)
	if to == model.ReferralRejected && s.notifier != nil {
		s.notifier.Notify(ctx, services.CreateNotificationRequest{
			UserID:   ref.ReferrerID,
			Type:     model.NotificationTypeWarning,
			Category: model.NotificationCategoryReferral,
			Title:    "Referral rejected",
			Message:  message,
			Metadata: &model.NotificationMetadata{ReferralID: ref.ID},
		})
	}
	return &ref, nil
}

// CompleteForReferee marks the open referral of refereeID as SUCCESS for
// enrollmentID. It returns nil when there is no open referral, so a second
// purchase never pays the referrer again. Must run inside the payment
// transaction.
func CompleteForReferee(tx *gorm.DB, refereeID, enrollmentID uint, now time.Time) (*model.Referral, error) {
	var ref model.Referral
	err := query.LockForUpdate(tx).
		Where("referee_id = ? AND status IN ?", refereeID, []model.ReferralStatus{model.ReferralGuest, model.ReferralPending}).
		First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load referral: %w", err)
	}

	result := tx.Model(&model.Referral{}).
		Where("id = ? AND status IN ?", ref.ID, []model.ReferralStatus{model.ReferralGuest, model.ReferralPending}).
		Updates(map[string]interface{}{
			"status":        model.ReferralSuccess,
			"enrollment_id": enrollmentID,
			"resolved_at":   now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to complete referral: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	ref.Status = model.ReferralSuccess
	ref.EnrollmentID = &enrollmentID
	ref.ResolvedAt = &now
	return &ref, nil
}

func statsKey(userID uint) string { return fmt.Sprintf("referral:stats:%d", userID) }
func listKey(userID uint) string  { return fmt.Sprintf("referral:list:%d", userID) }

// Invalidate drops the cached stats and list of a referrer
func (s *Service) Invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsKey(userID), listKey(userID)); err != nil {
		logger.L().Debug("referral cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (s *Service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.GetJSON(ctx, key, dest) == nil
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, statsTTL); err != nil {
		logger.L().Debug("referral cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Stats returns the referral dashboard of userID
func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	var cached Stats
	if s.fromCache(ctx, statsKey(userID), &cached) {
		return &cached, nil
	}

	db := s.db.WithContext(ctx)

	var user model.User
	if err := db.Select("id", "referral_code").First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	type statusCount struct {
		Status model.ReferralStatus
		Count  int64
	}
	var counts []statusCount
	if err := db.Model(&model.Referral{}).
		Select("status, COUNT(*) AS count").
		Where("referrer_id = ?", userID).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	stats := &Stats{ReferralCode: user.ReferralCode}
	for _, c := range counts {
		stats.TotalInvites += c.Count
		switch c.Status {
		case model.ReferralSuccess:
			stats.SuccessCount += c.Count
		case model.ReferralPending, model.ReferralGuest:
			stats.PendingCount += c.Count
		case model.ReferralRejected:
			stats.RejectedCount += c.Count
		}
	}
	stats.TotalEnrollments = stats.SuccessCount

	// only earnings tied to one of this user's referrals count here
	var rows []model.Earning
	if err := db.Model(&model.Earning{}).
		Joins("JOIN referrals ON referrals.id = earnings.referral_id").
		Where("referrals.referrer_id = ? AND earnings.user_id = ?", userID, userID).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load referral earnings: %w", err)
	}

	summary := earnings.Aggregate(rows, s.earnings.Now(), s.earnings.Location())
	stats.InviteEarnings = summary.SignupBonus
	stats.CourseEarnings = summary.Commission
	stats.WeeklyEarnings = summary.Weekly
	stats.MonthlyEarnings = summary.Monthly
	stats.Total = summary.Total

	s.toCache(ctx, statsKey(userID), stats)
	return stats, nil
}

// List returns the referrals made by userID, newest first
func (s *Service) List(ctx context.Context, userID uint) ([]Item, error) {
	var cached []Item
	if s.fromCache(ctx, listKey(userID), &cached) {
		return cached, nil
	}

	var refs []model.Referral
	err := s.db.WithContext(ctx).
		Preload("Referee").
		Preload("Enrollment.Course").
		Preload("Earnings", "kind = ?", model.KindCourseCommission).
		Where("referrer_id = ?", userID).
		Order("created_at DESC").
		Find(&refs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}

	items := make([]Item, 0, len(refs))
	for _, r := range refs {
		item := Item{
			ID:         r.ID,
			Status:     r.Status,
			Commission: decimal.Zero,
			CreatedAt:  r.CreatedAt,
		}
		if r.Referee != nil {
			item.Name = r.Referee.Name
			item.Email = r.Referee.Email
			if r.Referee.Phone != nil {
				item.Phone = *r.Referee.Phone
			}
		}
		if r.Enrollment != nil && r.Enrollment.Course != nil {
			item.CourseCode = r.Enrollment.Course.Code
		}
		for _, e := range r.Earnings {
			item.Commission = item.Commission.Add(e.Amount)
		}
		items = append(items, item)
	}

	s.toCache(ctx, listKey(userID), items)
	return items, nil
}

// ListAll is the superadmin view over every referral
func (s *Service) ListAll(ctx context.Context, f ListFilter) ([]model.Referral, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Referral{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var refs []model.Referral
	err := q.
		Preload("Referrer").
		Preload("Referee").
		Preload("Enrollment.Course").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&refs).Error
	return refs, total, err
}

// Counts returns how many referrals userID made and whether they were referred
func (s *Service) Counts(ctx context.Context, userID uint) (made int64, got int64, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Model(&model.Referral{}).Where("referrer_id = ?", userID).Count(&made).Error; err != nil {
		return 0, 0, err
	}
	if err = db.Model(&model.Referral{}).Where("referee_id = ?", userID).Count(&got).Error; err != nil {
		return 0, 0, err
	}
	return made, got, nil
}
