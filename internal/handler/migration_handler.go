package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/donolu/enterprise-grc-system-sub000/internal/service"
)

type MigrationHandler struct {
	migrator *service.MigratorService
}

func NewMigrationHandler(migrator *service.MigratorService) *MigrationHandler {
	return &MigrationHandler{migrator: migrator}
}

// RunMigrations applies pending structural changes to the shared schema and
// every migratable tenant schema. Partial tenant failure returns 200 with the
// failures listed in the summary; a shared-schema failure returns 500.
// POST /api/v1/admin/migrations/run
func (h *MigrationHandler) RunMigrations(c *fiber.Ctx) error {
	summary, err := h.migrator.RunPending(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":   "migration_aborted",
			"message": err.Error(),
			"summary": summary,
		})
	}

	return c.JSON(fiber.Map{
		"message": "Migration run finished",
		"summary": summary,
	})
}
