package handlers

import (
	"context"

	"quiz-admin/internal/services"
	"quiz-admin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Sweeper runs one storage reconciliation pass.
type Sweeper interface {
	Sweep(ctx context.Context) (*services.SweepReport, error)
}

type MaintenanceHandler struct {
	responder
	sweeper Sweeper
}

func NewMaintenanceHandler(sweeper Sweeper, logger *logrus.Logger, devMode bool) *MaintenanceHandler {
	return &MaintenanceHandler{
		responder: responder{logger: logger, devMode: devMode},
		sweeper:   sweeper,
	}
}

// Reconcile godoc
// @Summary Reconcile stored files
// @Description Reports file records whose file is missing and removes stored files no record references
// @Tags maintenance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.StandardResponse{data=services.SweepReport} "Sweep report"
// @Router /maintenance/reconcile [post]
func (h *MaintenanceHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.sweeper.Sweep(c.UserContext())
	if err != nil {
		return h.fail(c, err, "Not found")
	}

	return utils.SuccessResponse(c, fiber.StatusOK, "Storage reconciled", report)
}
