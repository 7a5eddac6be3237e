package dashboard

import (
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/account"
	"github.com/collegebuddy/api/services/catalog"
	"github.com/collegebuddy/api/services/earnings"
	"github.com/collegebuddy/api/services/referral"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// DashboardHandler assembles the student home screen
type DashboardHandler struct {
	catalog   *catalog.Service
	earnings  *earnings.Service
	referrals *referral.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(catalog *catalog.Service, earnings *earnings.Service, referrals *referral.Service) *DashboardHandler {
	return &DashboardHandler{catalog: catalog, earnings: earnings, referrals: referrals}
}

// Dashboard is the body of GET /dashboard
type Dashboard struct {
	Courses   []model.Course         `json:"courses"`
	Earnings  *earnings.Report       `json:"earnings"`
	Referrals account.ReferralCounts `json:"referrals_count"`
}

// Get handles GET /dashboard
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	ctx := c.UserContext()

	enrollments, err := h.catalog.Enrollments(ctx, userID)
	if err != nil {
		return response.FromError(c, err)
	}
	courses := make([]model.Course, 0, len(enrollments))
	for _, e := range enrollments {
		if e.IsPaid() && e.Course != nil {
			courses = append(courses, *e.Course)
		}
	}

	report, err := h.earnings.Summary(ctx, userID)
	if err != nil {
		return response.FromError(c, err)
	}

	made, got, err := h.referrals.Counts(ctx, userID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, Dashboard{
		Courses:   courses,
		Earnings:  report,
		Referrals: account.ReferralCounts{Made: made, Got: got},
	})
}
