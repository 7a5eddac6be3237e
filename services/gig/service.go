package gig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrGigNotFound    = errors.New("gig not found")
	ErrAlreadyAwarded = errors.New("gig already awarded to this user")
	ErrInvalidReward  = errors.New("gig needs a title, a description and a positive reward")
	ErrUserNotFound   = errors.New("user not found")
)

// Input holds gig fields; nil fields are left unchanged on update
type Input struct {
	Title       *string
	Description *string
	URL         *string
	Reward      *decimal.Decimal
}

func (in Input) apply(g *model.Gig) {
	if in.Title != nil {
		g.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		g.Description = strings.TrimSpace(*in.Description)
	}
	if in.URL != nil {
		g.URL = strings.TrimSpace(*in.URL)
	}
	if in.Reward != nil {
		g.Reward = in.Reward.Round(2)
	}
}

func validate(g *model.Gig) error {
	if g.Title == "" || g.Description == "" || !g.Reward.IsPositive() {
		return ErrInvalidReward
	}
	return nil
}

// Service manages gigs and gig rewards
type Service struct {
	db       *gorm.DB
	notifier *services.NotificationService
}

// NewService creates a gig service. notifier may be nil.
func NewService(db *gorm.DB, notifier *services.NotificationService) *Service {
	return &Service{db: db, notifier: notifier}
}

// List returns all gigs, newest first
func (s *Service) List(ctx context.Context) ([]model.Gig, error) {
	var gigs []model.Gig
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&gigs).Error
	return gigs, err
}

// Get loads one gig
func (s *Service) Get(ctx context.Context, id uint) (*model.Gig, error) {
	var gig model.Gig
	if err := s.db.WithContext(ctx).First(&gig, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGigNotFound
		}
		return nil, err
	}
	return &gig, nil
}

// Create adds a gig
func (s *Service) Create(ctx context.Context, in Input, createdBy uint) (*model.Gig, error) {
	gig := &model.Gig{CreatedByID: createdBy}
	in.apply(gig)
	if err := validate(gig); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(gig).Error; err != nil {
		return nil, err
	}
	return gig, nil
}

// Update changes the given fields
func (s *Service) Update(ctx context.Context, id uint, in Input) (*model.Gig, error) {
	gig, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(gig)
	if err := validate(gig); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(gig).Error; err != nil {
		return nil, err
	}
	return gig, nil
}

// Delete soft deletes a gig; earnings already awarded stay
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Gig{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGigNotFound
	}
	return nil
}

// Award pays the gig reward to userID. Each (gig, user) pair pays once.
func (s *Service) Award(ctx context.Context, gigID, userID uint) (*model.Earning, error) {
	gig, err := s.Get(ctx, gigID)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := s.db.WithContext(ctx).Select("id").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	earning := &model.Earning{
		UserID:      userID,
		Amount:      gig.Reward,
		Source:      model.SourceGig,
		Kind:        model.KindGigReward,
		GigID:       &gig.ID,
		Description: fmt.Sprintf("Gig reward: %s", gig.Title),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(earning)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyAwarded
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyAwarded
	}

	metrics.EarningsEmitted.WithLabelValues(string(model.KindGigReward)).Inc()
	logger.L().Info("gig awarded", zap.Uint("gig_id", gigID), zap.Uint("user_id", userID), zap.String("amount", gig.Reward.StringFixed(2)))

	if s.notifier != nil {
		s.notifier.Notify(ctx, services.CreateNotificationRequest{
			UserID:   userID,
			Type:     model.NotificationTypeSuccess,
			Category: model.NotificationCategoryGig,
			Title:    "Gig reward earned",
			Message:  fmt.Sprintf("You earned ₹%s for %s", gig.Reward.StringFixed(2), gig.Title),
			Metadata: &model.NotificationMetadata{GigID: gig.ID, Amount: gig.Reward.StringFixed(2)},
		})
	}
	return earning, nil
}
