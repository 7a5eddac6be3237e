package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses
const (
	PaymentSuccess = "SUCCESS"
	PaymentFailed  = "FAILED"
)

// Payment is created once a gateway callback signature has been verified.
// GatewayPaymentID is unique and doubles as the idempotency key of the callback.
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	EnrollmentID     uint            `gorm:"not null;uniqueIndex" json:"enrollment_id"`
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	TransactionID    string          `gorm:"type:varchar(100);not null;index" json:"transaction_id"` // gateway order id
	GatewayPaymentID string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"gateway_payment_id"`
	Signature        string          `gorm:"type:varchar(128)" json:"-"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"amount"`
	Currency         string          `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Status           string          `gorm:"type:varchar(20);not null" json:"status"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
