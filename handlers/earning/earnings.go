package earning

import (
	"strings"

	"github.com/collegebuddy/api/services/earnings"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// EarningHandler serves a user's earnings
type EarningHandler struct {
	earnings *earnings.Service
}

// NewEarningHandler creates a new earning handler
func NewEarningHandler(earnings *earnings.Service) *EarningHandler {
	return &EarningHandler{earnings: earnings}
}

// Summary handles GET /earnings: windowed totals, payouts and the available balance
func (h *EarningHandler) Summary(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	report, err := h.earnings.Summary(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, report)
}

// History handles GET /earnings/history?source=REFERRAL|GIG
func (h *EarningHandler) History(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	page := query.Pagination(c)
	items, total, err := h.earnings.List(c.UserContext(), userID, strings.ToUpper(c.Query("source")), page.Page, page.Limit)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, items, page, total)
}
