package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nuvix-market/nuvix-suite/internal/api/dto"
	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/service"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

const maxLeaderboard = 100

// StaffHandler exposes staff statistics.
type StaffHandler struct {
	stats *service.StatsService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(stats *service.StatsService) *StaffHandler {
	return &StaffHandler{stats: stats}
}

// Leaderboard handles GET /api/leaderboard?top=N.
func (h *StaffHandler) Leaderboard(c *fiber.Ctx) error {
	top := c.QueryInt("top", service.DefaultLeaderboardSize)
	if top <= 0 || top > maxLeaderboard {
		return apperrors.NewValidationError("top must be between 1 and 100", map[string]any{"top": c.Query("top")})
	}
	board, err := h.stats.Leaderboard(c.UserContext(), top)
	if err != nil {
		return err
	}
	entries := make([]dto.LeaderboardEntry, len(board))
	for i, stat := range board {
		entries[i] = dto.LeaderboardEntry{Rank: i + 1, StaffStatResponse: dto.NewStaffStatResponse(stat)}
	}
	return c.JSON(fiber.Map{"data": entries})
}

// Stats handles GET /api/staff/:id/stats.
func (h *StaffHandler) Stats(c *fiber.Ctx) error {
	id, err := domain.ParseSnowflake(c.Params("id"))
	if err != nil || id.IsZero() {
		return apperrors.NewValidationError("invalid staff id", map[string]any{"id": c.Params("id")})
	}
	stat, err := h.stats.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewStaffStatResponse(*stat)})
}
