package payment

import "errors"

var (
	ErrInvalidSignature   = errors.New("invalid payment signature")
	ErrOrderMismatch      = errors.New("order does not match enrollment")
	ErrAlreadyPaid        = errors.New("course already purchased")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrInvalidAmount      = errors.New("course has no payable amount")
	ErrGateway            = errors.New("payment gateway error")
	ErrNotConfigured      = errors.New("payment gateway is not configured")
)
