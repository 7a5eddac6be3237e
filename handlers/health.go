package handlers

import (
	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth reports liveness and database reachability
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database unreachable")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
