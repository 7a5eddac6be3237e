package account

import "errors"

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrPhoneTaken         = errors.New("an account with this phone number already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrInvalidOTP         = errors.New("invalid OTP")
	ErrOTPExpired         = errors.New("OTP has expired")
	ErrTooManyAttempts    = errors.New("too many OTP attempts, request a new code")
	ErrOTPThrottled       = errors.New("please wait before requesting another OTP")
	ErrInvalidRole        = errors.New("invalid role")
)
