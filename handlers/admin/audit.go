package admin

import (
	"errors"

	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/query"
	"github.com/collegebuddy/api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListAuditLogs retrieves admin audit logs with pagination
// GET /super-admin/audit-logs?resource=&admin_id=
func ListAuditLogs(c *fiber.Ctx, store database.Storage) error {
	page := query.Pagination(c)

	q := store.GetDB().WithContext(c.UserContext()).Model(&model.AdminAuditLog{})
	if resource := c.Query("resource"); resource != "" {
		q = q.Where("resource = ?", resource)
	}
	if adminID := query.QueryID(c, "admin_id"); adminID != 0 {
		q = q.Where("admin_id = ?", adminID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.FromError(c, err)
	}

	var logs []model.AdminAuditLog
	if err := q.Preload("Admin").Scopes(page.Scope).Order("created_at DESC").Find(&logs).Error; err != nil {
		return response.FromError(c, err)
	}

	return response.Paginated(c, logs, page, total)
}

// GetAuditLog retrieves a specific audit log entry
// GET /super-admin/audit-logs/:id
func GetAuditLog(c *fiber.Ctx, store database.Storage) error {
	id, ok := query.ParamID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid log ID")
	}

	var log model.AdminAuditLog
	if err := store.GetDB().WithContext(c.UserContext()).Preload("Admin").First(&log, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Audit log not found")
		}
		return response.FromError(c, err)
	}

	return response.Success(c, log)
}

// ListCronLogs retrieves background job runs, newest first
// GET /super-admin/cron-logs?job=&status=
func ListCronLogs(c *fiber.Ctx, store database.Storage) error {
	page := query.Pagination(c)

	q := store.GetDB().WithContext(c.UserContext()).Model(&model.CronJobLog{})
	if job := c.Query("job"); job != "" {
		q = q.Where("job_name = ?", job)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return response.FromError(c, err)
	}

	var logs []model.CronJobLog
	if err := q.Scopes(page.Scope).Order("started_at DESC").Find(&logs).Error; err != nil {
		return response.FromError(c, err)
	}

	return response.Paginated(c, logs, page, total)
}
