package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/service"
	"github.com/donolu/enterprise-grc-system-sub000/internal/tenantctx"
)

// TenantResolver resolves the request hostname to a tenant and binds it to
// the request context before any business handler runs. Unresolvable or
// non-active tenants are rejected here with stable, distinguishable error
// codes; the binding happens once and is never rewritten for the lifetime of
// the request.
func TenantResolver(resolver *service.ResolverService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenant, err := resolver.Resolve(c.Context(), c.Hostname())
		if err != nil {
			var unavailable *domain.TenantUnavailableError
			if errors.As(err, &unavailable) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error":  "tenant_unavailable",
					"status": string(unavailable.Status),
				})
			}
			if errors.Is(err, domain.ErrTenantNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "tenant_not_found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "resolution_failed",
			})
		}

		// Carry the binding on the request context so the scoped data layer
		// and cancellation see it; keep the record in Locals for handlers.
		c.SetUserContext(tenantctx.With(c.UserContext(), tenantctx.FromTenant(tenant)))
		c.Locals("tenant", tenant)

		return c.Next()
	}
}
