package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/storage"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service manages courses, subjects and their study content
type Service struct {
	db    *gorm.DB
	files storage.Store
}

// NewService creates a catalog service. files may be storage.Disabled{}.
func NewService(db *gorm.DB, files storage.Store) *Service {
	return &Service{db: db, files: files}
}

// CourseInput holds course fields for create and update. Nil fields are left
// unchanged on update.
type CourseInput struct {
	Title              *string
	Code               *string
	Description        *string
	Price              *decimal.Decimal
	Discount           *decimal.Decimal
	ReferralCommission *decimal.Decimal
}

func (in CourseInput) apply(c *model.Course) {
	if in.Title != nil {
		c.Title = strings.TrimSpace(*in.Title)
	}
	if in.Code != nil {
		c.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Price != nil {
		c.Price = in.Price.Round(2)
	}
	if in.Discount != nil {
		c.Discount = in.Discount.Round(2)
	}
	if in.ReferralCommission != nil {
		c.ReferralCommission = in.ReferralCommission.Round(2)
	}
}

var hundred = decimal.NewFromInt(100)

func validateCourse(c *model.Course) error {
	switch {
	case c.Title == "" || c.Code == "":
		return fmt.Errorf("%w: title and code are required", ErrInvalidInput)
	case c.Price.IsNegative():
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	case c.Discount.IsNegative() || c.Discount.GreaterThan(hundred):
		return fmt.Errorf("%w: discount must be between 0 and 100", ErrInvalidInput)
	case c.ReferralCommission.IsNegative() || c.ReferralCommission.GreaterThan(hundred):
		return fmt.Errorf("%w: referral commission must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}

func mapCourseErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrCodeTaken
	}
	return err
}

// ListCourses returns every course with its subjects
func (s *Service) ListCourses(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := s.db.WithContext(ctx).Preload("Subjects", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).Order("title ASC").Find(&courses).Error
	return courses, err
}

// Course loads one course with subjects
func (s *Service) Course(ctx context.Context, id uint) (*model.Course, error) {
	var course model.Course
	err := s.db.WithContext(ctx).Preload("Subjects", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	}).First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// CreateCourse adds a course
func (s *Service) CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error) {
	course := &model.Course{}
	in.apply(course)
	if err := validateCourse(course); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, mapCourseErr(err)
	}
	return course, nil
}

// UpdateCourse changes the given fields
func (s *Service) UpdateCourse(ctx context.Context, id uint, in CourseInput) (*model.Course, error) {
	course, err := s.Course(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(course)
	if err := validateCourse(course); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error; err != nil {
		return nil, mapCourseErr(err)
	}
	return course, nil
}

// DeleteCourse soft deletes a course and its subjects
func (s *Service) DeleteCourse(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCourseNotFound
		}
		return tx.Where("course_id = ?", id).Delete(&model.Subject{}).Error
	})
}

// HasAccess reports whether userID may read content of courseID. Staff always
// may; everyone else needs an ACTIVE enrollment.
func (s *Service) HasAccess(ctx context.Context, userID uint, role string, courseID uint) (bool, error) {
	if auth.IsStaff(role) {
		return true, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&model.CourseEnrollment{}).
		Where("student_id = ? AND course_id = ? AND status = ?", userID, courseID, model.EnrollmentActive).
		Count(&count).Error
	return count > 0, err
}

// paidCourseIDs lists the courses a user has paid for
func (s *Service) paidCourseIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&model.CourseEnrollment{}).
		Where("student_id = ? AND status = ?", userID, model.EnrollmentActive).
		Distinct().Pluck("course_id", &ids).Error
	return ids, err
}

// Enrollments lists a user's enrollments with course and payment
func (s *Service) Enrollments(ctx context.Context, userID uint) ([]model.CourseEnrollment, error) {
	var enrollments []model.CourseEnrollment
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("Payment").
		Where("student_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}
