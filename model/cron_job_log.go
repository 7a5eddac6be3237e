package model

import (
	"time"

	"gorm.io/datatypes"
)

// Cron job run states
const (
	CronStatusStarted   = "started"
	CronStatusCompleted = "completed"
	CronStatusFailed    = "failed"
)

// CronJobLog is one execution of a background job
type CronJobLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	JobName     string         `gorm:"type:varchar(100);not null;index" json:"job_name"`
	Status      string         `gorm:"type:varchar(20);not null" json:"status"`
	StartedAt   time.Time      `gorm:"not null;index" json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	DurationMS  int64          `json:"duration_ms"`
	Affected    int64          `json:"affected"`
	ErrorMsg    string         `gorm:"type:text" json:"error_msg,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
}

// TableName specifies the table name for CronJobLog
func (CronJobLog) TableName() string {
	return "cron_job_logs"
}
