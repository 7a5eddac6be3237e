package database

import (
	"context"
	"fmt"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/referral"
	"github.com/collegebuddy/api/utils/auth"
	applog "github.com/collegebuddy/api/utils/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedAccount is a privileged account created by the seeder
type SeedAccount struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Seeder handles database seeding operations
type Seeder struct {
	db    *gorm.DB
	codes *referral.CodeGenerator
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, codes: referral.NewCodeGenerator()}
}

// SeedAll runs all seed functions in foreign key order
func (s *Seeder) SeedAll(ctx context.Context, accounts ...SeedAccount) error {
	for _, acc := range accounts {
		if err := s.SeedAccount(ctx, acc); err != nil {
			return fmt.Errorf("failed to seed %s account: %w", acc.Role, err)
		}
	}

	if err := s.SeedCourses(ctx); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedGigs(ctx); err != nil {
		return fmt.Errorf("failed to seed gigs: %w", err)
	}

	applog.L().Info("database seeding completed")
	return nil
}

// SeedAccount creates a privileged user unless the email is already taken
func (s *Seeder) SeedAccount(ctx context.Context, acc SeedAccount) error {
	log := applog.L().With(zap.String("email", acc.Email), zap.String("role", acc.Role))
	if acc.Email == "" || acc.Password == "" {
		log.Warn("seed credentials not set, skipping account")
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", acc.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("account already exists, skipping")
		return nil
	}

	passwordHash, err := auth.HashPassword(acc.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.codes.Allocate(ctx, acc.Name, referral.CodeTaken(s.db))
	if err != nil {
		return err
	}

	user := &model.User{
		Email:        acc.Email,
		PasswordHash: passwordHash,
		Name:         acc.Name,
		Role:         acc.Role,
		ReferralCode: code,
		IsVerified:   true,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return err
	}

	log.Info("created account")
	return nil
}

// SeedCourses creates sample courses with subjects
func (s *Seeder) SeedCourses(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		applog.L().Info("courses already exist, skipping")
		return nil
	}

	courses := []model.Course{
		{
			Title:              "Bachelor of Computer Applications",
			Code:               "BCA",
			Description:        "Notes, lectures and live classes for the BCA programme",
			Price:              decimal.NewFromInt(1000),
			Discount:           decimal.Zero,
			ReferralCommission: decimal.NewFromInt(10),
			Subjects: []model.Subject{
				{Name: "Programming in C", Code: "BCA-101", Description: "Fundamentals of C"},
				{Name: "Discrete Mathematics", Code: "BCA-102", Description: "Sets, relations and graphs"},
				{Name: "Database Management Systems", Code: "BCA-201", Description: "Relational model and SQL"},
			},
		},
		{
			Title:              "Master of Computer Applications",
			Code:               "MCA",
			Description:        "Complete MCA preparation kit",
			Price:              decimal.NewFromInt(2500),
			Discount:           decimal.NewFromInt(20),
			ReferralCommission: decimal.NewFromInt(8),
			Subjects: []model.Subject{
				{Name: "Data Structures", Code: "MCA-101", Description: "Lists, trees and graphs"},
				{Name: "Operating Systems", Code: "MCA-102", Description: "Processes, memory and files"},
			},
		},
		{
			Title:              "Bachelor of Commerce",
			Code:               "BCOM",
			Description:        "Accounting and finance study material",
			Price:              decimal.NewFromInt(800),
			Discount:           decimal.NewFromInt(10),
			ReferralCommission: decimal.Zero,
			Subjects: []model.Subject{
				{Name: "Financial Accounting", Code: "BCOM-101", Description: "Journal, ledger and trial balance"},
			},
		},
	}

	if err := s.db.WithContext(ctx).Create(&courses).Error; err != nil {
		return err
	}

	applog.L().Info("created courses", zap.Int("count", len(courses)))
	return nil
}

// SeedGigs creates a couple of starter gigs
func (s *Seeder) SeedGigs(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Gig{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		applog.L().Info("gigs already exist, skipping")
		return nil
	}

	gigs := []model.Gig{
		{
			Title:       "Share College Buddy on Instagram",
			Description: "Post a story tagging College Buddy and send the screenshot to support",
			Reward:      decimal.NewFromInt(20),
		},
		{
			Title:       "Upload solved PYQ paper",
			Description: "Upload a neatly solved previous year question paper for any subject",
			Reward:      decimal.NewFromInt(75),
		},
	}

	if err := s.db.WithContext(ctx).Create(&gigs).Error; err != nil {
		return err
	}

	applog.L().Info("created gigs", zap.Int("count", len(gigs)))
	return nil
}
