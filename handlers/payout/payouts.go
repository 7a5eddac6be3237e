package payout

import (
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services/payout"
	"github.com/collegebuddy/api/utils/middleware"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// PayoutHandler serves withdrawal requests and their admin review
type PayoutHandler struct {
	ledger *payout.Ledger
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(ledger *payout.Ledger) *PayoutHandler {
	return &PayoutHandler{ledger: ledger}
}

// RequestPayoutRequest asks to withdraw part of the available balance
type RequestPayoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required,max=100"`
}

// TransitionRequest is an admin decision on a pending payout
type TransitionRequest struct {
	Status string `json:"status" validate:"required,oneof=SUCCESS REJECTED"`
	Note   string `json:"note" validate:"max=500"`
}

func (h *PayoutHandler) list(c *fiber.Ctx, userID uint) error {
	page := query.Pagination(c)
	items, total, err := h.ledger.List(c.UserContext(), payout.ListFilter{
		UserID: userID,
		Status: model.PayoutStatus(strings.ToUpper(c.Query("status"))),
		Page:   page.Page,
		Limit:  page.Limit,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Paginated(c, items, page, total)
}

// List handles GET /payouts
func (h *PayoutHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	return h.list(c, userID)
}

// Request handles POST /payouts
func (h *PayoutHandler) Request(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req RequestPayoutRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	p, err := h.ledger.Request(c.UserContext(), userID, req.Amount, validation.SanitizeString(req.Method))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, p)
}

// AdminList handles GET /admin/payouts, optionally narrowed by ?user_id=
func (h *PayoutHandler) AdminList(c *fiber.Ctx) error {
	return h.list(c, query.QueryID(c, "user_id"))
}

// Transition handles PATCH /admin/payouts/:id
func (h *PayoutHandler) Transition(c *fiber.Ctx) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid payout ID")
	}
	actorID, _ := middleware.GetUserID(c)

	var req TransitionRequest
	if err := validation.Bind(c, &req); err != nil {
		return response.Invalid(c, err)
	}

	p, err := h.ledger.Transition(c.UserContext(), id, model.PayoutStatus(req.Status), validation.SanitizeString(req.Note), actorID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, p)
}
