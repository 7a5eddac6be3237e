// Package response writes the JSON envelope every endpoint answers with.
//
//	{"success": true, "message": "...", "data": ...}
//	{"success": false, "error": {"code": "INSUFFICIENT_BALANCE", "message": "..."}}
//
// Error codes are stable; clients branch on them, not on messages. The mapping
// from domain errors to codes lives in errors.go.
package response

import (
	"github.com/collegebuddy/api/utils/query"
	"github.com/gofiber/fiber/v2"
)

// Response represents a standardized API response
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Success    bool           `json:"success"`
	Data       interface{}    `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

func ok(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{Success: true, Message: message, Data: data})
}

func Success(c *fiber.Ctx, data interface{}) error {
	return ok(c, fiber.StatusOK, "", data)
}

func SuccessWithMessage(c *fiber.Ctx, message string, data interface{}) error {
	return ok(c, fiber.StatusOK, message, data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return ok(c, fiber.StatusCreated, "Resource created successfully", data)
}

// Accepted is used when the work continues out of band, e.g. an email is on its way
func Accepted(c *fiber.Ctx, message string) error {
	return ok(c, fiber.StatusAccepted, message, nil)
}

// Error writes a failure envelope. At most one details string is used.
func Error(c *fiber.Ctx, status int, message, code string, details ...string) error {
	detail := &ErrorDetail{Code: code, Message: message}
	if len(details) > 0 {
		detail.Details = details[0]
	}
	return c.Status(status).JSON(Response{Error: detail})
}

// defaults are the code and fallback message of the shorthand helpers below
var defaults = map[int]ErrorDetail{
	fiber.StatusBadRequest:          {Code: "BAD_REQUEST", Message: "Bad request"},
	fiber.StatusUnauthorized:        {Code: "UNAUTHORIZED", Message: "Unauthorized access"},
	fiber.StatusForbidden:           {Code: "FORBIDDEN", Message: "Access forbidden"},
	fiber.StatusNotFound:            {Code: "NOT_FOUND", Message: "Resource not found"},
	fiber.StatusTooManyRequests:     {Code: "TOO_MANY_REQUESTS", Message: "Too many requests"},
	fiber.StatusInternalServerError: {Code: "INTERNAL_ERROR", Message: "Internal server error"},
	fiber.StatusServiceUnavailable:  {Code: "SERVICE_UNAVAILABLE", Message: "Service temporarily unavailable"},
}

func fail(c *fiber.Ctx, status int, message string) error {
	d := defaults[status]
	if message == "" {
		message = d.Message
	}
	return Error(c, status, message, d.Code)
}

func BadRequest(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusUnauthorized, message)
}

func Forbidden(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusForbidden, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusNotFound, message)
}

func TooManyRequests(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusTooManyRequests, message)
}

func InternalServerError(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusInternalServerError, message)
}

func ServiceUnavailable(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusServiceUnavailable, message)
}

// Paginated writes one page of a list together with its position in the whole
func Paginated(c *fiber.Ctx, data interface{}, page query.Page, total int64) error {
	return c.Status(fiber.StatusOK).JSON(PaginatedResponse{
		Success:    true,
		Data:       data,
		Pagination: Meta(page, total),
	})
}

// Meta describes page within a list of total items
func Meta(page query.Page, total int64) PaginationMeta {
	meta := PaginationMeta{CurrentPage: page.Page, PerPage: page.Limit, Total: total}
	if page.Limit > 0 {
		meta.TotalPages = int((total + int64(page.Limit) - 1) / int64(page.Limit))
	}
	return meta
}
