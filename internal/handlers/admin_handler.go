package handlers

import (
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/jobs"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	retention jobs.Runner
}

func NewAdminHandler(retention jobs.Runner) *AdminHandler {
	return &AdminHandler{retention: retention}
}

// RunRetention triggers an out-of-schedule retention sweep.
func (h *AdminHandler) RunRetention(c *fiber.Ctx) error {
	res, err := h.retention.Run(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.RetentionRunResponse{
		Updates:    res.Updates,
		Trends:     res.Trends,
		SystemLogs: res.SystemLogs,
		Cutoff:     res.Cutoff,
	})
}
