package catalog

import "errors"

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrContentNotFound = errors.New("content not found")
	ErrCodeTaken       = errors.New("course code already exists")
	ErrPaymentRequired = errors.New("payment required")
	ErrInvalidInput    = errors.New("invalid input")
)
