package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/scopedb"
)

// WorkspaceHandler serves the tenant-facing surface. It runs behind the
// tenant resolver middleware, so every query here goes through the scoped
// data layer against the schema bound to the request.
type WorkspaceHandler struct {
	scoped *scopedb.Scoped
}

func NewWorkspaceHandler(scoped *scopedb.Scoped) *WorkspaceHandler {
	return &WorkspaceHandler{scoped: scoped}
}

// GetWorkspace returns the resolved tenant identity and record counts from
// its schema
// GET /api/v1/workspace
func (h *WorkspaceHandler) GetWorkspace(c *fiber.Ctx) error {
	tenant, ok := c.Locals("tenant").(*domain.Tenant)
	if !ok {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "no_tenant_context",
		})
	}

	var frameworks, risks, vendors int
	err := h.scoped.WithTenant(c.UserContext(), func(tx *sqlx.Tx) error {
		if err := tx.GetContext(c.UserContext(), &frameworks, `SELECT COUNT(*) FROM frameworks`); err != nil {
			return err
		}
		if err := tx.GetContext(c.UserContext(), &risks, `SELECT COUNT(*) FROM risks`); err != nil {
			return err
		}
		return tx.GetContext(c.UserContext(), &vendors, `SELECT COUNT(*) FROM vendors`)
	})
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"tenant": fiber.Map{
			"id":           tenant.ID,
			"display_name": tenant.DisplayName,
			"slug":         tenant.Slug,
		},
		"counts": fiber.Map{
			"frameworks": frameworks,
			"risks":      risks,
			"vendors":    vendors,
		},
	})
}
