package response

import (
	"errors"

	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/services/account"
	"github.com/collegebuddy/api/services/catalog"
	"github.com/collegebuddy/api/services/gig"
	"github.com/collegebuddy/api/services/payment"
	"github.com/collegebuddy/api/services/payout"
	"github.com/collegebuddy/api/services/referral"
	"github.com/collegebuddy/api/services/storage"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/validation"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mapping struct {
	status int
	code   string
}

// table is checked in order; the first sentinel matched by errors.Is wins
var table = []struct {
	err error
	mapping
}{
	// validation
	{referral.ErrSelfReferral, mapping{fiber.StatusBadRequest, "SELF_REFERRAL"}},
	{referral.ErrCodeNotFound, mapping{fiber.StatusBadRequest, "INVALID_REFERRAL_CODE"}},
	{referral.ErrManualSuccess, mapping{fiber.StatusBadRequest, "MANUAL_SUCCESS_NOT_ALLOWED"}},
	{referral.ErrInvalidStatus, mapping{fiber.StatusBadRequest, "INVALID_STATUS"}},
	{payment.ErrInvalidSignature, mapping{fiber.StatusBadRequest, "INVALID_SIGNATURE"}},
	{payment.ErrOrderMismatch, mapping{fiber.StatusBadRequest, "ORDER_MISMATCH"}},
	{payment.ErrInvalidAmount, mapping{fiber.StatusBadRequest, "INVALID_AMOUNT"}},
	{payout.ErrInvalidAmount, mapping{fiber.StatusBadRequest, "INVALID_AMOUNT"}},
	{payout.ErrInsufficientBalance, mapping{fiber.StatusBadRequest, "INSUFFICIENT_BALANCE"}},
	{payout.ErrInvalidTransition, mapping{fiber.StatusBadRequest, "INVALID_STATUS"}},
	{account.ErrInvalidOTP, mapping{fiber.StatusBadRequest, "INVALID_OTP"}},
	{account.ErrOTPExpired, mapping{fiber.StatusBadRequest, "OTP_EXPIRED"}},
	{account.ErrTooManyAttempts, mapping{fiber.StatusBadRequest, "OTP_ATTEMPTS_EXCEEDED"}},
	{account.ErrInvalidToken, mapping{fiber.StatusBadRequest, "INVALID_TOKEN"}},
	{account.ErrInvalidRole, mapping{fiber.StatusBadRequest, "INVALID_ROLE"}},
	{storage.ErrInvalidFile, mapping{fiber.StatusBadRequest, "INVALID_FILE"}},
	{catalog.ErrInvalidInput, mapping{fiber.StatusBadRequest, "INVALID_INPUT"}},
	{gig.ErrInvalidReward, mapping{fiber.StatusBadRequest, "INVALID_REWARD"}},

	// authentication
	{account.ErrInvalidCredentials, mapping{fiber.StatusUnauthorized, "INVALID_CREDENTIALS"}},
	{account.ErrWrongPassword, mapping{fiber.StatusUnauthorized, "INVALID_CREDENTIALS"}},

	// authorization
	{catalog.ErrPaymentRequired, mapping{fiber.StatusForbidden, "PAYMENT_REQUIRED"}},

	// not found
	{referral.ErrReferralNotFound, mapping{fiber.StatusNotFound, "REFERRAL_NOT_FOUND"}},
	{payment.ErrEnrollmentNotFound, mapping{fiber.StatusNotFound, "ENROLLMENT_NOT_FOUND"}},
	{payment.ErrCourseNotFound, mapping{fiber.StatusNotFound, "COURSE_NOT_FOUND"}},
	{payout.ErrPayoutNotFound, mapping{fiber.StatusNotFound, "PAYOUT_NOT_FOUND"}},
	{catalog.ErrCourseNotFound, mapping{fiber.StatusNotFound, "COURSE_NOT_FOUND"}},
	{catalog.ErrSubjectNotFound, mapping{fiber.StatusNotFound, "SUBJECT_NOT_FOUND"}},
	{catalog.ErrContentNotFound, mapping{fiber.StatusNotFound, "CONTENT_NOT_FOUND"}},
	{gig.ErrGigNotFound, mapping{fiber.StatusNotFound, "GIG_NOT_FOUND"}},
	{gig.ErrUserNotFound, mapping{fiber.StatusNotFound, "USER_NOT_FOUND"}},
	{account.ErrUserNotFound, mapping{fiber.StatusNotFound, "USER_NOT_FOUND"}},
	{services.ErrNotificationNotFound, mapping{fiber.StatusNotFound, "NOTIFICATION_NOT_FOUND"}},
	{gorm.ErrRecordNotFound, mapping{fiber.StatusNotFound, "NOT_FOUND"}},

	// conflict
	{referral.ErrAlreadyReferred, mapping{fiber.StatusConflict, "ALREADY_REFERRED"}},
	{referral.ErrAlreadyEnrolled, mapping{fiber.StatusConflict, "ALREADY_ENROLLED"}},
	{referral.ErrReferralFinalized, mapping{fiber.StatusConflict, "REFERRAL_FINALIZED"}},
	{payment.ErrAlreadyPaid, mapping{fiber.StatusConflict, "ALREADY_PAID"}},
	{payout.ErrPayoutFinalized, mapping{fiber.StatusConflict, "PAYOUT_FINALIZED"}},
	{gig.ErrAlreadyAwarded, mapping{fiber.StatusConflict, "GIG_ALREADY_AWARDED"}},
	{account.ErrEmailTaken, mapping{fiber.StatusConflict, "EMAIL_TAKEN"}},
	{account.ErrPhoneTaken, mapping{fiber.StatusConflict, "PHONE_TAKEN"}},
	{account.ErrAlreadyVerified, mapping{fiber.StatusConflict, "ALREADY_VERIFIED"}},
	{catalog.ErrCodeTaken, mapping{fiber.StatusConflict, "CODE_TAKEN"}},
	{gorm.ErrDuplicatedKey, mapping{fiber.StatusConflict, "CONFLICT"}},

	// throttling
	{account.ErrOTPThrottled, mapping{fiber.StatusTooManyRequests, "TOO_MANY_REQUESTS"}},

	// downstream
	{payment.ErrGateway, mapping{fiber.StatusBadGateway, "GATEWAY_ERROR"}},
	{payment.ErrNotConfigured, mapping{fiber.StatusServiceUnavailable, "PAYMENTS_UNAVAILABLE"}},
	{storage.ErrNotConfigured, mapping{fiber.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"}},
}

// StatusOf returns the HTTP status and error code an error maps to.
// Unmapped errors are 500.
func StatusOf(err error) (int, string) {
	for _, m := range table {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR"
}

// Invalid answers a failed validation.Bind: 422 with field messages for
// struct validation, 400 for an undecodable body
func Invalid(c *fiber.Ctx, err error) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) {
		return Error(c, fiber.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR", validation.Describe(fields))
	}
	if errors.Is(err, validation.ErrInvalidBody) {
		return BadRequest(c, "Invalid request body")
	}
	return BadRequest(c, err.Error())
}

// FromError writes the envelope for a domain error. Internal errors are logged
// and answered with a generic message.
func FromError(c *fiber.Ctx, err error) error {
	status, code := StatusOf(err)
	if status >= fiber.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		if status == fiber.StatusInternalServerError {
			return InternalServerError(c, "")
		}
	}
	return Error(c, status, sentence(err, status), code)
}

// sentence capitalises the message. Client errors show the full wrapped text;
// upstream failures only show the sentinel.
func sentence(err error, status int) string {
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		for _, m := range table {
			if errors.Is(err, m.err) {
				msg = m.err.Error()
				break
			}
		}
	}
	if msg == "" {
		return msg
	}
	b := []byte(msg)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
