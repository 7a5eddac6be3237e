package middleware

import (
	"encoding/json"
	"strings"

	"github.com/collegebuddy/api/model"
	"github.com/collegebuddy/api/utils/logger"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var sensitiveFields = []string{"password", "new_password", "current_password", "token"}

// AdminAuditLog records every mutating request made inside an admin area
func AdminAuditLog(db *gorm.DB, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Next()
		}

		adminID, ok := GetUserID(c)
		if !ok {
			return c.Next()
		}

		err := c.Next()

		// fiber reuses the context once the handler returns, copy first
		entry := model.AdminAuditLog{
			AdminID:    adminID,
			Action:     c.Method() + " " + c.Route().Path,
			Resource:   resource,
			ResourceID: strings.Clone(c.Params("id")),
			StatusCode: c.Response().StatusCode(),
			Payload:    scrub(c.Body()),
			IPAddress:  strings.Clone(c.IP()),
			UserAgent:  string(c.Request().Header.UserAgent()),
		}
		if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
			entry.Payload = nil
		}

		go func() {
			if err := db.Create(&entry).Error; err != nil {
				logger.L().Warn("failed to write audit log", zap.String("action", entry.Action), zap.Error(err))
			}
		}()

		return err
	}
}

// scrub returns a JSON copy of body without secrets
func scrub(body []byte) datatypes.JSON {
	if len(body) == 0 {
		return nil
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	for _, field := range sensitiveFields {
		if _, ok := payload[field]; ok {
			payload[field] = "[redacted]"
		}
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return datatypes.JSON(out)
}
