package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus is the state of a withdrawal request
type PayoutStatus string

const (
	PayoutPending  PayoutStatus = "PENDING"
	PayoutSuccess  PayoutStatus = "SUCCESS"
	PayoutRejected PayoutStatus = "REJECTED"
)

// IsTerminal reports whether no further transition is allowed
func (s PayoutStatus) IsTerminal() bool {
	return s == PayoutSuccess || s == PayoutRejected
}

// Payout is a withdrawal request against accumulated earnings
type Payout struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status        PayoutStatus    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Method        string          `gorm:"type:varchar(100)" json:"method,omitempty"` // UPI handle or bank reference
	AdminNote     string          `gorm:"type:text" json:"admin_note,omitempty"`
	ProcessedByID *uint           `json:"processed_by_id,omitempty"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for Payout
func (Payout) TableName() string {
	return "payouts"
}
