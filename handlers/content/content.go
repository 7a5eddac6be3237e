package content

import (
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/catalog"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves notes, lectures, live sessions and assignments
type ContentHandler struct {
	catalog *catalog.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(catalog *catalog.Service) *ContentHandler {
	return &ContentHandler{catalog: catalog}
}

func viewer(c *fiber.Ctx) catalog.Viewer {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	return catalog.Viewer{UserID: userID, Role: role}
}

// filter reads ?subject_id=, ?course_id= and ?category=
func filter(c *fiber.Ctx) catalog.ContentFilter {
	return catalog.ContentFilter{
		SubjectID: query.QueryID(c, "subject_id"),
		CourseID:  query.QueryID(c, "course_id"),
		Category:  model.NoteCategory(strings.ToUpper(c.Query("category"))),
	}
}

// ListNotes handles GET /notes
func (h *ContentHandler) ListNotes(c *fiber.Ctx) error {
	notes, err := h.catalog.ListNotes(c.UserContext(), viewer(c), filter(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, notes)
}

// ListLectures handles GET /lectures
func (h *ContentHandler) ListLectures(c *fiber.Ctx) error {
	lectures, err := h.catalog.ListLectures(c.UserContext(), viewer(c), filter(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, lectures)
}

// ListLiveSessions handles GET /live-sessions
func (h *ContentHandler) ListLiveSessions(c *fiber.Ctx) error {
	sessions, err := h.catalog.ListLiveSessions(c.UserContext(), viewer(c), filter(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, sessions)
}

// ListAssignments handles GET /assignments
func (h *ContentHandler) ListAssignments(c *fiber.Ctx) error {
	assignments, err := h.catalog.ListAssignments(c.UserContext(), viewer(c), filter(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, assignments)
}
