package account

import (
	"context"
	"errors"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/validation"
	"gorm.io/gorm"
)

// ReferralCounts is how many referrals a user made and whether they were referred
type ReferralCounts struct {
	Made int64 `json:"made"`
	Got  int64 `json:"got"`
}

// Profile is the caller's account with enrollments
type Profile struct {
	User           *model.User    `json:"user"`
	ReferralsCount ReferralCounts `json:"referrals_count"`
}

// ProfileUpdate holds optional profile changes
type ProfileUpdate struct {
	Name  *string
	Phone *string
}

// Profile loads the user with enrollments, courses and referral counts
func (s *Service) Profile(ctx context.Context, userID uint) (*Profile, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Preload("Enrollments", "status = ?", model.EnrollmentActive).
		Preload("Enrollments.Course").
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	made, got, err := s.referrals.Counts(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: &user, ReferralsCount: ReferralCounts{Made: made, Got: got}}, nil
}

// UpdateProfile changes name and phone
func (s *Service) UpdateProfile(ctx context.Context, userID uint, in ProfileUpdate) (*model.User, error) {
	user, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = validation.SanitizeString(*in.Name)
	}
	if in.Phone != nil {
		phone := normalizePhone(*in.Phone)
		if err := s.checkUnique(ctx, "", phone, userID); err != nil {
			return nil, err
		}
		updates["phone"] = phone
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.User(ctx, userID)
}
