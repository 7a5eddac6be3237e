package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/storage"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/collegebuddy/api/utils/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Viewer is the caller reading content
type Viewer struct {
	UserID uint
	Role   string
}

// ContentFilter narrows content listings; zero values mean no filter
type ContentFilter struct {
	SubjectID uint
	CourseID  uint
	Category  model.NoteCategory
}

func (s *Service) requireAccess(ctx context.Context, v Viewer, courseID uint) error {
	ok, err := s.HasAccess(ctx, v.UserID, v.Role, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPaymentRequired
	}
	return nil
}

func subjectsOf(courseIDs []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("subject_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&model.Subject{}).Select("id").Where("course_id IN ?", courseIDs))
	}
}

// visible builds the scope limiting content to what the viewer paid for
func (s *Service) visible(ctx context.Context, v Viewer, f ContentFilter) (func(*gorm.DB) *gorm.DB, error) {
	switch {
	case f.SubjectID != 0:
		subject, err := s.subject(ctx, f.SubjectID)
		if err != nil {
			return nil, err
		}
		if err := s.requireAccess(ctx, v, subject.CourseID); err != nil {
			return nil, err
		}
		return func(db *gorm.DB) *gorm.DB { return db.Where("subject_id = ?", f.SubjectID) }, nil

	case f.CourseID != 0:
		if _, err := s.Course(ctx, f.CourseID); err != nil {
			return nil, err
		}
		if err := s.requireAccess(ctx, v, f.CourseID); err != nil {
			return nil, err
		}
		return subjectsOf([]uint{f.CourseID}), nil
	}

	if auth.IsStaff(v.Role) {
		return func(db *gorm.DB) *gorm.DB { return db }, nil
	}

	paid, err := s.paidCourseIDs(ctx, v.UserID)
	if err != nil {
		return nil, err
	}
	if len(paid) == 0 {
		return nil, ErrPaymentRequired
	}
	return subjectsOf(paid), nil
}

// ListNotes returns notes the viewer may read, optionally by category
func (s *Service) ListNotes(ctx context.Context, v Viewer, f ContentFilter) ([]model.Note, error) {
	scope, err := s.visible(ctx, v, f)
	if err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Scopes(scope).Preload("Subject")
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	var notes []model.Note
	err = query.Order("created_at DESC").Find(&notes).Error
	return notes, err
}

// ListLectures returns recorded lectures the viewer may read
func (s *Service) ListLectures(ctx context.Context, v Viewer, f ContentFilter) ([]model.Lecture, error) {
	scope, err := s.visible(ctx, v, f)
	if err != nil {
		return nil, err
	}
	var lectures []model.Lecture
	err = s.db.WithContext(ctx).Scopes(scope).Preload("Subject").Order("created_at DESC").Find(&lectures).Error
	return lectures, err
}

// ListLiveSessions returns sessions the viewer may join, soonest first
func (s *Service) ListLiveSessions(ctx context.Context, v Viewer, f ContentFilter) ([]model.LiveSession, error) {
	scope, err := s.visible(ctx, v, f)
	if err != nil {
		return nil, err
	}
	var sessions []model.LiveSession
	err = s.db.WithContext(ctx).Scopes(scope).Preload("Subject").Order("starts_at ASC").Find(&sessions).Error
	return sessions, err
}

// ListAssignments returns assignments the viewer may read
func (s *Service) ListAssignments(ctx context.Context, v Viewer, f ContentFilter) ([]model.Assignment, error) {
	scope, err := s.visible(ctx, v, f)
	if err != nil {
		return nil, err
	}
	var assignments []model.Assignment
	err = s.db.WithContext(ctx).Scopes(scope).Preload("Subject").Order("created_at DESC").Find(&assignments).Error
	return assignments, err
}

// NoteInput describes a note that links to an existing file
type NoteInput struct {
	SubjectID uint
	Title     string
	Category  model.NoteCategory
	FileURL   string
}

func validCategory(c model.NoteCategory) bool {
	return c == model.NoteCategoryUnit || c == model.NoteCategoryPYQ || c == model.NoteCategoryLive
}

func (s *Service) prepareNote(ctx context.Context, in NoteInput) (*model.Note, error) {
	if _, err := s.subject(ctx, in.SubjectID); err != nil {
		return nil, err
	}
	if in.Category == "" {
		in.Category = model.NoteCategoryUnit
	}
	in.Category = model.NoteCategory(strings.ToUpper(string(in.Category)))
	if !validCategory(in.Category) {
		return nil, fmt.Errorf("%w: category must be UNIT, PYQ or LIVE", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return &model.Note{
		SubjectID: in.SubjectID,
		Title:     strings.TrimSpace(in.Title),
		Category:  in.Category,
		FileURL:   in.FileURL,
	}, nil
}

// CreateNote stores a note pointing at FileURL
func (s *Service) CreateNote(ctx context.Context, in NoteInput) (*model.Note, error) {
	note, err := s.prepareNote(ctx, in)
	if err != nil {
		return nil, err
	}
	if note.FileURL == "" {
		return nil, fmt.Errorf("%w: file_url is required", ErrInvalidInput)
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

// UploadNote puts a validated PDF into object storage and records the note.
// The object is removed again if the row cannot be written.
func (s *Service) UploadNote(ctx context.Context, in NoteInput, filename string, content []byte, pages int) (*model.Note, error) {
	note, err := s.prepareNote(ctx, in)
	if err != nil {
		return nil, err
	}

	key := storage.NoteKey(in.SubjectID, filename)
	url, err := s.files.Put(ctx, key, content, "application/pdf")
	if err != nil {
		return nil, err
	}
	note.FileURL = url
	note.StorageKey = key
	note.PageCount = pages

	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		if derr := s.files.Delete(ctx, key); derr != nil {
			logger.L().Warn("orphaned note upload", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note and its stored file
func (s *Service) DeleteNote(ctx context.Context, id uint) error {
	var note model.Note
	if err := s.db.WithContext(ctx).First(&note, id).Error; err != nil {
		return ErrContentNotFound
	}
	if err := s.db.WithContext(ctx).Delete(&note).Error; err != nil {
		return err
	}
	if note.StorageKey != "" {
		if err := s.files.Delete(ctx, note.StorageKey); err != nil {
			logger.L().Warn("failed to delete note file", zap.String("key", note.StorageKey), zap.Error(err))
		}
	}
	return nil
}

// CreateLecture adds a recorded lecture
func (s *Service) CreateLecture(ctx context.Context, subjectID uint, title, url string) (*model.Lecture, error) {
	if _, err := s.subject(ctx, subjectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: title and url are required", ErrInvalidInput)
	}
	lecture := &model.Lecture{SubjectID: subjectID, Title: strings.TrimSpace(title), URL: strings.TrimSpace(url)}
	return lecture, s.db.WithContext(ctx).Create(lecture).Error
}

// CreateLiveSession schedules a live class
func (s *Service) CreateLiveSession(ctx context.Context, subjectID uint, title, meetLink string, startsAt time.Time) (*model.LiveSession, error) {
	if _, err := s.subject(ctx, subjectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(meetLink) == "" || startsAt.IsZero() {
		return nil, fmt.Errorf("%w: title, meet_link and starts_at are required", ErrInvalidInput)
	}
	session := &model.LiveSession{SubjectID: subjectID, Title: strings.TrimSpace(title), MeetLink: strings.TrimSpace(meetLink), StartsAt: startsAt}
	return session, s.db.WithContext(ctx).Create(session).Error
}

// CreateAssignment adds homework
func (s *Service) CreateAssignment(ctx context.Context, subjectID uint, title, description string, due *time.Time) (*model.Assignment, error) {
	if _, err := s.subject(ctx, subjectID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	assignment := &model.Assignment{SubjectID: subjectID, Title: strings.TrimSpace(title), Description: description, DueDate: due}
	return assignment, s.db.WithContext(ctx).Create(assignment).Error
}

// DeleteContent soft deletes a lecture, live session or assignment by id.
// kind is the model pointer, e.g. &model.Lecture{}.
func (s *Service) DeleteContent(ctx context.Context, kind interface{}, id uint) error {
	result := s.db.WithContext(ctx).Delete(kind, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}
