package content

import (
	"strconv"
	"strings"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/catalog"
	"github.com/collegebuddy/api/utils/pdfvalidation"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// NoteRequest creates a note that links to an existing file
type NoteRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=255"`
	Category  string `json:"category" validate:"required,oneof=UNIT PYQ LIVE"`
	FileURL   string `json:"file_url" validate:"required,url"`
}

// LectureRequest creates a recorded lecture
type LectureRequest struct {
	SubjectID uint   `json:"subject_id" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=255"`
	URL       string `json:"url" validate:"required,url"`
}

// LiveSessionRequest schedules a live class
type LiveSessionRequest struct {
	SubjectID uint      `json:"subject_id" validate:"required,gt=0"`
	Title     string    `json:"title" validate:"required,max=255"`
	MeetLink  string    `json:"meet_link" validate:"required,url"`
	StartsAt  time.Time `json:"starts_at"`
}

// AssignmentRequest creates an assignment
type AssignmentRequest struct {
	SubjectID   uint       `json:"subject_id" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=5000"`
	DueDate     *time.Time `json:"due_date"`
}

// CreateNote handles POST /admin/notes
func (h *ContentHandler) CreateNote(c *fiber.Ctx) error {
	var req NoteRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	note, err := h.catalog.CreateNote(c.UserContext(), catalog.NoteInput{
		SubjectID: req.SubjectID,
		Title:     validation.SanitizeString(req.Title),
		Category:  model.NoteCategory(req.Category),
		FileURL:   req.FileURL,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, note)
}

// UploadNote handles POST /admin/notes/upload (multipart: file, subject_id,
// title, category). The PDF is checked before it is stored.
func (h *ContentHandler) UploadNote(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file uploaded")
	}
	subjectID, err := strconv.ParseUint(c.FormValue("subject_id"), 10, 32)
	if err != nil || subjectID == 0 {
		return response.BadRequest(c, "Invalid subject ID")
	}

	content, result, err := pdfvalidation.ReadUpload(file, pdfvalidation.NotesLimits)
	if err != nil {
		return response.FromError(c, err)
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	title := validation.SanitizeString(c.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(file.Filename, ".pdf")
	}

	note, err := h.catalog.UploadNote(c.UserContext(), catalog.NoteInput{
		SubjectID: uint(subjectID),
		Title:     title,
		Category:  model.NoteCategory(strings.ToUpper(c.FormValue("category", string(model.NoteCategoryUnit)))),
	}, file.Filename, content, result.PageCount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, note)
}

// DeleteNote handles DELETE /admin/notes/:id
func (h *ContentHandler) DeleteNote(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid note ID")
	}
	if err := h.catalog.DeleteNote(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Note deleted successfully", nil)
}

// CreateLecture handles POST /admin/lectures
func (h *ContentHandler) CreateLecture(c *fiber.Ctx) error {
	var req LectureRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	lecture, err := h.catalog.CreateLecture(c.UserContext(), req.SubjectID, validation.SanitizeString(req.Title), req.URL)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, lecture)
}

// CreateLiveSession handles POST /admin/live-sessions
func (h *ContentHandler) CreateLiveSession(c *fiber.Ctx) error {
	var req LiveSessionRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	session, err := h.catalog.CreateLiveSession(c.UserContext(), req.SubjectID, validation.SanitizeString(req.Title), req.MeetLink, req.StartsAt)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, session)
}

// CreateAssignment handles POST /admin/assignments
func (h *ContentHandler) CreateAssignment(c *fiber.Ctx) error {
	var req AssignmentRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	assignment, err := h.catalog.CreateAssignment(c.UserContext(), req.SubjectID, validation.SanitizeString(req.Title), req.Description, req.DueDate)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, assignment)
}

// DeleteContent returns a DELETE handler for lectures, live sessions or
// assignments. newKind returns a fresh model pointer per request.
func (h *ContentHandler) DeleteContent(newKind func() interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := query.ParamID(c, "id")
		if !ok {
			return response.BadRequest(c, "Invalid ID")
		}
		if err := h.catalog.DeleteContent(c.UserContext(), newKind(), id); err != nil {
			return response.FromError(c, err)
		}
		return response.SuccessWithMessage(c, "Deleted successfully", nil)
	}
}
