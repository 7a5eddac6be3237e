package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Course is a purchasable program. Discount and ReferralCommission are percentages.
type Course struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
	Title              string          `gorm:"not null" json:"title"`
	Code               string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description        string          `gorm:"type:text" json:"description"`
	Price              decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Discount           decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount"`
	ReferralCommission decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"referral_commission"`

	// Relationships
	Subjects []Subject `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"subjects,omitempty"`
}

// PayableAmount is the price after the percentage discount, rounded to paise
func (c *Course) PayableAmount() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	off := c.Price.Mul(c.Discount).Div(hundred)
	return c.Price.Sub(off).Round(2)
}

// Subject represents an individual subject inside a course
type Subject struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID    uint           `gorm:"not null;index" json:"course_id"`
	Name        string         `gorm:"not null" json:"name"`
	Code        string         `gorm:"type:varchar(50)" json:"code"`
	Description string         `gorm:"type:text" json:"description"`

	// Relationships
	Course      *Course       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Notes       []Note        `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
	Lectures    []Lecture     `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"lectures,omitempty"`
	Sessions    []LiveSession `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"live_sessions,omitempty"`
	Assignments []Assignment  `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}
