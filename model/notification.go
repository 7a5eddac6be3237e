package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType represents the severity of a notification
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
)

// NotificationCategory groups notifications in the inbox
type NotificationCategory string

const (
	NotificationCategoryReferral NotificationCategory = "referral"
	NotificationCategoryPayment  NotificationCategory = "payment"
	NotificationCategoryPayout   NotificationCategory = "payout"
	NotificationCategoryGig      NotificationCategory = "gig"
	NotificationCategoryGeneral  NotificationCategory = "general"
)

// UserNotification is an inbox entry for a user
type UserNotification struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	UserID    uint                 `gorm:"index;not null" json:"user_id"`
	Type      NotificationType     `gorm:"type:varchar(20);not null" json:"type"`
	Category  NotificationCategory `gorm:"type:varchar(30);not null;index" json:"category"`
	Title     string               `gorm:"type:varchar(255);not null" json:"title"`
	Message   string               `gorm:"type:text" json:"message"`
	Read      bool                 `gorm:"default:false" json:"read"`
	Metadata  datatypes.JSON       `json:"metadata,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// NotificationMetadata carries the ids a client needs to deep link
type NotificationMetadata struct {
	ReferralID   uint   `json:"referral_id,omitempty"`
	EnrollmentID uint   `json:"enrollment_id,omitempty"`
	PayoutID     uint   `json:"payout_id,omitempty"`
	GigID        uint   `json:"gig_id,omitempty"`
	Amount       string `json:"amount,omitempty"`
}
