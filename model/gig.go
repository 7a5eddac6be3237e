package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Gig is a paid micro-task; completing one is a secondary earnings source
type Gig struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `gorm:"type:text;not null" json:"description"`
	URL         string          `gorm:"type:varchar(500)" json:"url,omitempty"`
	Reward      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"reward"`
	CreatedByID uint            `gorm:"index" json:"created_by_id"`
}
