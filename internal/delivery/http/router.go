package http

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/map", handler.GetMap)
		api.Get("/fetch-log", handler.GetFetchLog)

		// View sessions
		sessions := api.Group("/sessions")
		sessions.Post("/", handler.CreateSession)
		sessions.Delete("/:id", handler.DeleteSession)
		sessions.Get("/:id/filters", handler.GetFilters)

		sessions.Get("/:id/dashboard", handler.GetDashboard)
		sessions.Put("/:id/dashboard/selection", handler.UpdateSelection)
		sessions.Post("/:id/dashboard/reset", handler.ResetDashboard)

		sessions.Get("/:id/climate", handler.GetClimate)
		sessions.Put("/:id/climate/disease", handler.SelectClimateDisease)
	}
}

// ErrorHandler renders errors as JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
