package referral

import "errors"

var (
	ErrSelfReferral      = errors.New("you cannot use your own referral code")
	ErrCodeNotFound      = errors.New("referral code not found")
	ErrAlreadyReferred   = errors.New("user already has a referrer")
	ErrAlreadyEnrolled   = errors.New("referral codes cannot be applied after a paid enrollment")
	ErrReferralNotFound  = errors.New("referral not found")
	ErrReferralFinalized = errors.New("referral is already finalized")
	ErrManualSuccess     = errors.New("referral success is recorded by payment only")
	ErrInvalidStatus     = errors.New("invalid referral status")
)
