package utils

import (
	"github.com/collegebuddy/api/database"
	"github.com/collegebuddy/api/utils/response"
	fiber "github.com/gofiber/fiber/v2"
)

// MakeHTTPHandleFunc adapts a store-backed handler to a fiber.Handler. Errors the
// handler returns without writing a response go through the standard mapping.
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if err := handler(c, store); err != nil {
			return response.FromError(c, err)
		}
		return nil
	}
}
