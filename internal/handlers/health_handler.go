package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker is satisfied by *database.Database.
type HealthChecker interface {
	HealthCheck() error
}

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Service   string `json:"service" example:"quiz-admin"`
	Version   string `json:"version" example:"1.0.0"`
	Database  string `json:"database" example:"healthy"`
	Timestamp string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

// HealthCheck godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func HealthCheck(db HealthChecker, version string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp := HealthResponse{
			Status:    "ok",
			Service:   "quiz-admin",
			Version:   version,
			Database:  "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		if err := db.HealthCheck(); err != nil {
			resp.Status = "degraded"
			resp.Database = "unhealthy"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}

		return c.JSON(resp)
	}
}
