package model

import "time"

// ReferralStatus is the lifecycle state of a referral
type ReferralStatus string

const (
	ReferralGuest    ReferralStatus = "GUEST"
	ReferralPending  ReferralStatus = "PENDING"
	ReferralSuccess  ReferralStatus = "SUCCESS"
	ReferralRejected ReferralStatus = "REJECTED"
)

// IsOpen reports whether the referral can still change state
func (s ReferralStatus) IsOpen() bool {
	return s == ReferralGuest || s == ReferralPending
}

// IsValid reports whether s is a known status
func (s ReferralStatus) IsValid() bool {
	switch s {
	case ReferralGuest, ReferralPending, ReferralSuccess, ReferralRejected:
		return true
	}
	return false
}

// Referral links a referrer to the user who signed up with their code.
// A referee can only ever be referred once.
type Referral struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	ReferrerID   uint           `gorm:"not null;index" json:"referrer_id"`
	RefereeID    uint           `gorm:"not null;uniqueIndex" json:"referee_id"`
	Status       ReferralStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Message      string         `gorm:"type:text" json:"message,omitempty"`
	EnrollmentID *uint          `gorm:"index" json:"enrollment_id,omitempty"`
	ResolvedAt   *time.Time     `json:"resolved_at,omitempty"`

	// Relationships
	Referrer   *User             `gorm:"foreignKey:ReferrerID;constraint:OnDelete:CASCADE" json:"referrer,omitempty"`
	Referee    *User             `gorm:"foreignKey:RefereeID;constraint:OnDelete:CASCADE" json:"referee,omitempty"`
	Enrollment *CourseEnrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:SET NULL" json:"enrollment,omitempty"`
	Earnings   []Earning         `gorm:"foreignKey:ReferralID" json:"earnings,omitempty"`
}

// TableName specifies the table name for Referral
func (Referral) TableName() string {
	return "referrals"
}
