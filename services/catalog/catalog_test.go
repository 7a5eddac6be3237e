package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memFiles struct {
	objects map[string][]byte
	failPut bool
}

func (m *memFiles) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if m.failPut {
		return "", errors.New("bucket unavailable")
	}
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (m *memFiles) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

type fixture struct {
	db      *gorm.DB
	svc     *Service
	files   *memFiles
	ctx     context.Context
	bca     *model.Course
	mca     *model.Course
	dbms    *model.Subject
	algo    *model.Subject
	student *model.User
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func str(v string) *string { return &v }

func setup(t *testing.T) *fixture {
	t.Helper()
	store, err := database.NewMemoryStore(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := &fixture{db: store.GetDB(), files: &memFiles{objects: map[string][]byte{}}, ctx: context.Background()}
	f.svc = NewService(f.db, f.files)

	f.bca, err = f.svc.CreateCourse(f.ctx, CourseInput{Title: str("BCA"), Code: str("bca"), Price: dec("1000"), ReferralCommission: dec("10")})
	require.NoError(t, err)
	f.mca, err = f.svc.CreateCourse(f.ctx, CourseInput{Title: str("MCA"), Code: str("MCA"), Price: dec("2500")})
	require.NoError(t, err)
	f.dbms, err = f.svc.CreateSubject(f.ctx, f.bca.ID, SubjectInput{Name: str("DBMS")})
	require.NoError(t, err)
	f.algo, err = f.svc.CreateSubject(f.ctx, f.mca.ID, SubjectInput{Name: str("Algorithms")})
	require.NoError(t, err)

	f.student = &model.User{Name: "Stu", Email: "stu@x.com", PasswordHash: "x", ReferralCode: "stu1000", Role: model.RoleStudent}
	require.NoError(t, f.db.Create(f.student).Error)
	return f
}

func (f *fixture) pay(t *testing.T, courseID uint) {
	t.Helper()
	require.NoError(t, f.db.Create(&model.CourseEnrollment{StudentID: f.student.ID, CourseID: courseID, Status: model.EnrollmentActive}).Error)
}

func TestCourseValidation(t *testing.T) {
	f := setup(t)
	assert.Equal(t, "BCA", f.bca.Code)

	tests := []struct {
		name string
		in   CourseInput
		want error
	}{
		{"missing title", CourseInput{Code: str("X")}, ErrInvalidInput},
		{"negative price", CourseInput{Title: str("X"), Code: str("X"), Price: dec("-1")}, ErrInvalidInput},
		{"discount above 100", CourseInput{Title: str("X"), Code: str("X"), Discount: dec("101")}, ErrInvalidInput},
		{"commission above 100", CourseInput{Title: str("X"), Code: str("X"), ReferralCommission: dec("100.5")}, ErrInvalidInput},
		{"duplicate code", CourseInput{Title: str("Again"), Code: str("BCA")}, ErrCodeTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateCourse(f.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	updated, err := f.svc.UpdateCourse(f.ctx, f.bca.ID, CourseInput{Discount: dec("12.5")})
	require.NoError(t, err)
	assert.Equal(t, "12.5", updated.Discount.String())
	assert.Equal(t, "BCA", updated.Title)

	_, err = f.svc.UpdateCourse(f.ctx, 999, CourseInput{})
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestDeleteCourse_CascadesSubjects(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.svc.DeleteCourse(f.ctx, f.bca.ID))
	assert.ErrorIs(t, f.svc.DeleteCourse(f.ctx, f.bca.ID), ErrCourseNotFound)

	var count int64
	f.db.Model(&model.Subject{}).Where("course_id = ?", f.bca.ID).Count(&count)
	assert.Zero(t, count)

	courses, err := f.svc.ListCourses(f.ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "MCA", courses[0].Code)
}

func TestContentAccess(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CreateNote(f.ctx, NoteInput{SubjectID: f.dbms.ID, Title: "Unit 1", FileURL: "https://x/u1.pdf"})
	require.NoError(t, err)
	_, err = f.svc.CreateNote(f.ctx, NoteInput{SubjectID: f.dbms.ID, Title: "2023 paper", Category: "pyq", FileURL: "https://x/p.pdf"})
	require.NoError(t, err)
	_, err = f.svc.CreateNote(f.ctx, NoteInput{SubjectID: f.algo.ID, Title: "Sorting", FileURL: "https://x/s.pdf"})
	require.NoError(t, err)

	viewer := Viewer{UserID: f.student.ID, Role: model.RoleStudent}

	_, err = f.svc.ListNotes(f.ctx, viewer, ContentFilter{})
	assert.ErrorIs(t, err, ErrPaymentRequired)
	_, err = f.svc.ListNotes(f.ctx, viewer, ContentFilter{SubjectID: f.dbms.ID})
	assert.ErrorIs(t, err, ErrPaymentRequired)

	f.pay(t, f.bca.ID)

	notes, err := f.svc.ListNotes(f.ctx, viewer, ContentFilter{})
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	pyq, err := f.svc.ListNotes(f.ctx, viewer, ContentFilter{CourseID: f.bca.ID, Category: model.NoteCategoryPYQ})
	require.NoError(t, err)
	require.Len(t, pyq, 1)
	assert.Equal(t, "2023 paper", pyq[0].Title)

	_, err = f.svc.ListNotes(f.ctx, viewer, ContentFilter{CourseID: f.mca.ID})
	assert.ErrorIs(t, err, ErrPaymentRequired)

	admin := Viewer{UserID: 42, Role: model.RoleAdmin}
	all, err := f.svc.ListNotes(f.ctx, admin, ContentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.ListNotes(f.ctx, viewer, ContentFilter{SubjectID: 999})
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestSubjectDetail(t *testing.T) {
	f := setup(t)
	_, err := f.svc.CreateLecture(f.ctx, f.dbms.ID, "Normal forms", "https://video/1")
	require.NoError(t, err)
	_, err = f.svc.CreateLiveSession(f.ctx, f.dbms.ID, "Doubts", "https://meet/1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	_, err = f.svc.CreateAssignment(f.ctx, f.dbms.ID, "ER diagram", "Draw one", nil)
	require.NoError(t, err)

	viewer := Viewer{UserID: f.student.ID, Role: model.RoleStudent}
	_, err = f.svc.SubjectDetail(f.ctx, viewer, f.dbms.ID)
	assert.ErrorIs(t, err, ErrPaymentRequired)

	f.pay(t, f.bca.ID)
	subject, err := f.svc.SubjectDetail(f.ctx, viewer, f.dbms.ID)
	require.NoError(t, err)
	assert.Len(t, subject.Lectures, 1)
	assert.Len(t, subject.Sessions, 1)
	assert.Len(t, subject.Assignments, 1)
	assert.Equal(t, "BCA", subject.Course.Code)

	lectures, err := f.svc.ListLectures(f.ctx, viewer, ContentFilter{})
	require.NoError(t, err)
	require.Len(t, lectures, 1)
	require.NoError(t, f.svc.DeleteContent(f.ctx, &model.Lecture{}, lectures[0].ID))
	assert.ErrorIs(t, f.svc.DeleteContent(f.ctx, &model.Lecture{}, lectures[0].ID), ErrContentNotFound)

	_, err = f.svc.CreateLiveSession(f.ctx, f.dbms.ID, "No time", "https://meet/2", time.Time{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUploadNote(t *testing.T) {
	f := setup(t)

	note, err := f.svc.UploadNote(f.ctx, NoteInput{SubjectID: f.dbms.ID, Title: "Unit 2"}, "unit2.pdf", []byte("%PDF-1.4"), 12)
	require.NoError(t, err)
	assert.Equal(t, 12, note.PageCount)
	assert.Contains(t, note.FileURL, "https://cdn.test/notes/")
	assert.Contains(t, f.files.objects, note.StorageKey)

	require.NoError(t, f.svc.DeleteNote(f.ctx, note.ID))
	assert.NotContains(t, f.files.objects, note.StorageKey)

	_, err = f.svc.UploadNote(f.ctx, NoteInput{SubjectID: f.dbms.ID, Title: "Bad", Category: "OTHER"}, "x.pdf", nil, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.files.failPut = true
	_, err = f.svc.UploadNote(f.ctx, NoteInput{SubjectID: f.dbms.ID, Title: "Unit 3"}, "unit3.pdf", []byte("%PDF-1.4"), 3)
	assert.Error(t, err)

	var count int64
	f.db.Model(&model.Note{}).Count(&count)
	assert.Zero(t, count)

	disabled := NewService(f.db, storage.Disabled{})
	_, err = disabled.UploadNote(f.ctx, NoteInput{SubjectID: f.dbms.ID, Title: "Unit 4"}, "u4.pdf", []byte("%PDF-1.4"), 1)
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
}

func TestEnrollments(t *testing.T) {
	f := setup(t)
	f.pay(t, f.bca.ID)

	list, err := f.svc.Enrollments(f.ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "BCA", list[0].Course.Code)

	ok, err := f.svc.HasAccess(f.ctx, f.student.ID, model.RoleStudent, f.mca.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
