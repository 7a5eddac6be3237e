package model

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAuditLog records a mutating request made by an admin or superadmin
type AdminAuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	AdminID    uint           `gorm:"not null;index" json:"admin_id"`
	Action     string         `gorm:"type:varchar(100);not null" json:"action"` // e.g. "PATCH /api/v1/admin/payouts/:id"
	Resource   string         `gorm:"type:varchar(100);index" json:"resource"`
	ResourceID string         `gorm:"type:varchar(50)" json:"resource_id,omitempty"`
	StatusCode int            `json:"status_code"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	IPAddress  string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent  string         `gorm:"type:text" json:"user_agent"`

	Admin *User `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"admin,omitempty"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
