package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EarningSource groups earnings for reporting
type EarningSource string

const (
	SourceReferral EarningSource = "REFERRAL"
	SourceGig      EarningSource = "GIG"
)

// EarningKind identifies the event that produced an earning
type EarningKind string

const (
	KindSignupBonus      EarningKind = "SIGNUP_BONUS"
	KindCourseCommission EarningKind = "COURSE_COMMISSION"
	KindGigReward        EarningKind = "GIG_REWARD"
)

// Earning is an append-only ledger entry. Rows are never updated; the unique
// indexes make each referral payout and gig award happen at most once.
type Earning struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	UserID      uint            `gorm:"not null;index;uniqueIndex:idx_earning_gig_user" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Source      EarningSource   `gorm:"type:varchar(20);not null;index" json:"source"`
	Kind        EarningKind     `gorm:"type:varchar(30);not null;uniqueIndex:idx_earning_referral_kind" json:"kind"`
	ReferralID  *uint           `gorm:"uniqueIndex:idx_earning_referral_kind" json:"referral_id,omitempty"`
	GigID       *uint           `gorm:"uniqueIndex:idx_earning_gig_user" json:"gig_id,omitempty"`
	Description string          `gorm:"type:varchar(255)" json:"description,omitempty"`

	// Relationships
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Referral *Referral `gorm:"foreignKey:ReferralID;constraint:OnDelete:SET NULL" json:"-"`
	Gig      *Gig      `gorm:"foreignKey:GigID;constraint:OnDelete:SET NULL" json:"gig,omitempty"`
}

// TableName specifies the table name for Earning
func (Earning) TableName() string {
	return "earnings"
}
