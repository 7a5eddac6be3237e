package database

import (
	"github.com/collegebuddy/api/model"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func allModels() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Course{},
		&model.Subject{},
		&model.Note{},
		&model.Lecture{},
		&model.LiveSession{},
		&model.Assignment{},
		&model.Payment{},
		&model.CourseEnrollment{},
		&model.Referral{},
		&model.Gig{},
		&model.Earning{},
		&model.Payout{},
		&model.OTP{},
		&model.VerificationToken{},
		&model.PasswordResetToken{},
		&model.RevokedToken{},
		&model.AdminAuditLog{},
		&model.CronJobLog{},
		&model.UserNotification{},
	}
}

var migrations = []*gormigrate.Migration{
	{
		ID: "202501100900_initial_schema",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(allModels()...)
		},
		Rollback: func(tx *gorm.DB) error {
			models := allModels()
			// drop dependents first
			for i := len(models) - 1; i >= 0; i-- {
				if err := tx.Migrator().DropTable(models[i]); err != nil {
					return err
				}
			}
			return nil
		},
	},
	{
		// one gateway order maps to one enrollment
		ID: "202501201200_enrollment_order_unique",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollment_order_unique
				ON course_enrollments (razorpay_order_id) WHERE razorpay_order_id <> ''`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`DROP INDEX IF EXISTS idx_enrollment_order_unique`).Error
		},
	},
}

// Migrate runs every pending migration in order
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)
	return m.Migrate()
}
