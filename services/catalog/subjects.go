package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/collegebuddy/api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubjectInput holds subject fields; nil fields are left unchanged on update
type SubjectInput struct {
	Name        *string
	Code        *string
	Description *string
}

func (in SubjectInput) apply(s *model.Subject) {
	if in.Name != nil {
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Code != nil {
		s.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.Description != nil {
		s.Description = *in.Description
	}
}

func (s *Service) subject(ctx context.Context, id uint) (*model.Subject, error) {
	var subject model.Subject
	if err := s.db.WithContext(ctx).First(&subject, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	return &subject, nil
}

// CreateSubject adds a subject under a course
func (s *Service) CreateSubject(ctx context.Context, courseID uint, in SubjectInput) (*model.Subject, error) {
	if _, err := s.Course(ctx, courseID); err != nil {
		return nil, err
	}
	subject := &model.Subject{CourseID: courseID}
	in.apply(subject)
	if subject.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.db.WithContext(ctx).Create(subject).Error; err != nil {
		return nil, err
	}
	return subject, nil
}

// UpdateSubject changes the given fields
func (s *Service) UpdateSubject(ctx context.Context, id uint, in SubjectInput) (*model.Subject, error) {
	subject, err := s.subject(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(subject)
	if subject.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(subject).Error; err != nil {
		return nil, err
	}
	return subject, nil
}

// DeleteSubject soft deletes a subject with its content
func (s *Service) DeleteSubject(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Subject{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSubjectNotFound
		}
		for _, content := range []interface{}{&model.Note{}, &model.Lecture{}, &model.LiveSession{}, &model.Assignment{}} {
			if err := tx.Where("subject_id = ?", id).Delete(content).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SubjectDetail loads a subject with all of its content if the viewer may read it
func (s *Service) SubjectDetail(ctx context.Context, v Viewer, id uint) (*model.Subject, error) {
	subject, err := s.subject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccess(ctx, v, subject.CourseID); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Preload("Course").
		Preload("Notes", orderBy("created_at DESC")).
		Preload("Lectures", orderBy("created_at DESC")).
		Preload("Sessions", orderBy("starts_at ASC")).
		Preload("Assignments", orderBy("created_at DESC")).
		First(subject, id).Error
	return subject, err
}

func orderBy(order string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return db.Order(order) }
}
