package cron

import (
	"context"
	"encoding/json"
	"time"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/services"
	"github.com/collegebuddy/api/utils/auth"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/collegebuddy/api/utils/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const jobTimeout = 5 * time.Minute

// Job is one cleanup task. It returns how many rows it touched.
type Job func(ctx context.Context) (int64, error)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	blacklist *auth.BlacklistService
	notifier  *services.NotificationService
	now       func() time.Time
	log       *zap.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, notifier *services.NotificationService) *CronManager {
	return &CronManager{
		// Create cron with seconds precision
		cron:      cron.New(cron.WithSeconds()),
		db:        db,
		blacklist: auth.NewBlacklistService(db),
		notifier:  notifier,
		now:       time.Now,
		log:       logger.Named("cron"),
	}
}

// Start registers all jobs and starts the scheduler
func (m *CronManager) Start() error {
	if err := m.registerJobs(); err != nil {
		return err
	}
	m.cron.Start()
	m.log.Info("cron jobs started", zap.Int("jobs", len(m.cron.Entries())))
	return nil
}

// Stop waits for running jobs to finish
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	schedule := []struct {
		spec string
		name string
		job  Job
	}{
		{"0 */15 * * * *", "cleanup_expired_otps", m.CleanupExpiredOTPs},
		{"0 */30 * * * *", "cleanup_stale_enrollments", m.CleanupStaleEnrollments},
		{"0 5 * * * *", "cleanup_verification_tokens", m.CleanupVerificationTokens},
		{"0 10 * * * *", "cleanup_password_resets", m.CleanupPasswordResets},
		{"0 15 * * * *", "cleanup_revoked_tokens", m.CleanupRevokedTokens},
		{"0 0 2 * * *", "cleanup_old_logs", m.CleanupOldLogs},
	}

	for _, s := range schedule {
		name, job := s.name, s.job
		if _, err := m.cron.AddFunc(s.spec, func() { m.Run(name, job) }); err != nil {
			return err
		}
	}
	return nil
}

// Run executes job once and records it in cron_job_logs
func (m *CronManager) Run(name string, job Job) *model.CronJobLog {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := m.now()
	entry := &model.CronJobLog{
		JobName:   name,
		Status:    model.CronStatusStarted,
		StartedAt: started,
		Metadata:  datatypes.JSON("{}"),
	}
	if err := m.db.WithContext(ctx).Create(entry).Error; err != nil {
		m.log.Warn("failed to record job start", zap.String("job", name), zap.Error(err))
	}

	affected, err := job(ctx)

	completed := m.now()
	entry.CompletedAt = &completed
	entry.DurationMS = completed.Sub(started).Milliseconds()
	entry.Affected = affected
	entry.Status = model.CronStatusCompleted
	if err != nil {
		entry.Status = model.CronStatusFailed
		entry.ErrorMsg = err.Error()
		m.log.Error("job failed", zap.String("job", name), zap.Error(err))
	} else {
		m.log.Info("job completed", zap.String("job", name), zap.Int64("affected", affected), zap.Int64("duration_ms", entry.DurationMS))
	}
	if meta, merr := json.Marshal(map[string]interface{}{"affected": affected}); merr == nil {
		entry.Metadata = datatypes.JSON(meta)
	}

	metrics.CronRuns.WithLabelValues(name, entry.Status).Inc()

	if entry.ID != 0 {
		if err := m.db.WithContext(ctx).Save(entry).Error; err != nil {
			m.log.Warn("failed to record job result", zap.String("job", name), zap.Error(err))
		}
	}
	return entry
}
