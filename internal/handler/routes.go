package handler

import (
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(
	app *fiber.App,
	tenantHandler *TenantHandler,
	migrationHandler *MigrationHandler,
	workspaceHandler *WorkspaceHandler,
	healthHandler *HealthHandler,
	tenantResolver fiber.Handler,
	adminAuth fiber.Handler,
) {
	// Health checks (public, any hostname)
	app.Get("/health", healthHandler.Health)
	app.Get("/ready", healthHandler.Ready)

	api := app.Group("/api/v1")

	// Administrative API (token protected, not tenant-scoped)
	admin := api.Group("/admin", adminAuth)

	tenants := admin.Group("/tenants")
	tenants.Post("/", tenantHandler.CreateTenant)
	tenants.Get("/", tenantHandler.ListTenants)
	tenants.Get("/:id", tenantHandler.GetTenant)
	tenants.Post("/:id/provision", tenantHandler.ProvisionTenant)
	tenants.Post("/:id/suspend", tenantHandler.SuspendTenant)
	tenants.Post("/:id/reactivate", tenantHandler.ReactivateTenant)
	tenants.Post("/:id/archive", tenantHandler.ArchiveTenant)
	tenants.Post("/:id/domains", tenantHandler.AddDomain)

	admin.Post("/migrations/run", migrationHandler.RunMigrations)

	// Tenant-facing routes: everything below resolves the hostname to a
	// tenant first and runs inside that tenant's context
	workspace := api.Group("/workspace", tenantResolver)
	workspace.Get("/", workspaceHandler.GetWorkspace)
}
