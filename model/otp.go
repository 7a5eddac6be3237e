package model

import "time"

// OTP purposes
const (
	OTPPurposeVerifyEmail = "verify_email"
)

// OTP is a short numeric code mailed to a user
type OTP struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Email     string     `gorm:"type:varchar(255);not null;index" json:"email"`
	Code      string     `gorm:"type:varchar(10);not null" json:"-"`
	Purpose   string     `gorm:"type:varchar(30);not null" json:"purpose"`
	ExpiresAt time.Time  `gorm:"not null;index" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	Attempts  int        `gorm:"default:0" json:"attempts"`
}

// TableName specifies the table name for OTP
func (OTP) TableName() string {
	return "otps"
}

// IsUsable reports whether the code can still be redeemed at now
func (o *OTP) IsUsable(now time.Time, maxAttempts int) bool {
	return o.UsedAt == nil && now.Before(o.ExpiresAt) && o.Attempts < maxAttempts
}
