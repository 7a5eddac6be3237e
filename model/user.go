package model

import (
	"time"

	"gorm.io/gorm"
)

// Role values stored on User.Role
const (
	RoleUser       = "USER"
	RoleStudent    = "STUDENT"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone        *string        `gorm:"type:varchar(20);uniqueIndex" json:"phone,omitempty"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'USER';index" json:"role"`
	ReferralCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"referral_code"`
	ReferredByID *uint          `gorm:"index" json:"referred_by_id,omitempty"`
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`
	TokenVersion int            `gorm:"default:0" json:"-"` // Increment to invalidate all user tokens

	// Relationships
	ReferredBy    *User              `gorm:"foreignKey:ReferredByID;constraint:OnDelete:SET NULL" json:"-"`
	ReferralsMade []Referral         `gorm:"foreignKey:ReferrerID" json:"-"`
	Enrollments   []CourseEnrollment `gorm:"foreignKey:StudentID" json:"enrollments,omitempty"`
	Earnings      []Earning          `gorm:"foreignKey:UserID" json:"-"`
	Payouts       []Payout           `gorm:"foreignKey:UserID" json:"-"`
}

// IsElevated reports whether the role outranks a paying student
func (u *User) IsElevated() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}
