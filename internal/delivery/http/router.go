package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler, gatherer prometheus.Gatherer) {
	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	{
		// Incident log
		api.Post("/road-data", handler.PostRoadData)
		api.Get("/road-data", handler.GetRoadData)
		api.Get("/road-data/export", handler.ExportRoadData)
		api.Get("/sensor-logs", handler.GetSensorLogs)

		// Sensor ingestion and live snapshots
		api.Post("/drowsiness", handler.PostDrowsiness)
		api.Get("/drowsiness", handler.GetDrowsiness)
		api.Post("/radar", handler.PostRadar)
		api.Get("/radar", handler.GetRadar)
		api.Post("/vibration", handler.PostVibration)
		api.Get("/vibration", handler.GetVibration)
		api.Post("/gsm-status", handler.PostGSMStatus)
		api.Get("/gsm-status", handler.GetGSMStatus)
		api.Post("/alcohol", handler.PostAlcohol)
		api.Get("/alcohol", handler.GetAlcohol)
		api.Post("/location", handler.PostLocation)
		api.Get("/location", handler.GetLocation)

		// SOS hand-off to the GSM module
		api.Post("/sos", handler.PostSOS)
		api.Get("/sos/check", handler.CheckSOS)
		api.Get("/profile", handler.GetProfile)
		api.Post("/profile", handler.PostProfile)

		api.Get("/status", handler.GetStatus)
	}
}

// ErrorHandler renders every error as {"error": message}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}
