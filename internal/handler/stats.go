package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/OmeoneChain/omeonechain-sub009/internal/middleware"
	"github.com/OmeoneChain/omeonechain-sub009/internal/repository"
)

type StatsHandler struct {
	repo *repository.ContentRepo
}

func NewStatsHandler(repo *repository.ContentRepo) *StatsHandler {
	return &StatsHandler{repo: repo}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.repo.GetStats(c.Context())
	if err != nil {
		return middleware.FromAppError(c, err, "Failed to fetch statistics")
	}
	return c.JSON(stats)
}
