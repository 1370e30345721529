package server

import (
	"sharesmallbiz/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetEngagementStats handles GET /api/stats/engagement
func (s *Server) GetEngagementStats(c *fiber.Ctx) error {
	stats, err := s.statsService.GetEngagementStats(c.Context())
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(stats)
}
