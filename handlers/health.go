package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alexsergeyev/skillforge/database"
	"github.com/alexsergeyev/skillforge/utils/response"
)

// HandleCheckHealth reports service and database health
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	dbStatus := "ok"
	if err := store.HealthCheck(); err != nil {
		dbStatus = "unavailable"
	}

	return response.Success(c, fiber.Map{
		"status":   "ok",
		"database": dbStatus,
	})
}
