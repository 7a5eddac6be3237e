package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enrollment statuses
const (
	EnrollmentPending = "PENDING"
	EnrollmentActive  = "ACTIVE"
)

// CourseEnrollment links a student to a course. It becomes ACTIVE once a
// verified payment is attached.
type CourseEnrollment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	StudentID       uint            `gorm:"not null;index" json:"student_id"`
	CourseID        uint            `gorm:"not null;index" json:"course_id"`
	RazorpayOrderID string          `gorm:"type:varchar(100);index" json:"razorpay_order_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
	Status          string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentID       *uint           `gorm:"index" json:"payment_id,omitempty"`

	// Relationships
	Student *User    `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course  *Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Payment *Payment `gorm:"foreignKey:PaymentID;constraint:OnDelete:SET NULL" json:"payment,omitempty"`
}

// TableName specifies the table name for CourseEnrollment
func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}

// IsPaid reports whether a payment has been attached
func (e *CourseEnrollment) IsPaid() bool {
	return e.Status == EnrollmentActive && e.PaymentID != nil
}
