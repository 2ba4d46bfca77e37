package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
	"github.com/donolu/enterprise-grc-system-sub000/internal/service"
	"github.com/donolu/enterprise-grc-system-sub000/pkg/validator"
)

type TenantHandler struct {
	registry    *service.RegistryService
	provisioner *service.ProvisionerService
	validator   *validator.Validator
}

func NewTenantHandler(
	registry *service.RegistryService,
	provisioner *service.ProvisionerService,
	validator *validator.Validator,
) *TenantHandler {
	return &TenantHandler{
		registry:    registry,
		provisioner: provisioner,
		validator:   validator,
	}
}

// CreateTenantRequest represents the request body for registering a tenant
type CreateTenantRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=255"`
	Slug        string `json:"slug" validate:"required,min=3,max=63"`
	Hostname    string `json:"hostname" validate:"required,hostname,max=253"`
}

// AddDomainRequest represents the request body for attaching an alias hostname
type AddDomainRequest struct {
	Hostname string `json:"hostname" validate:"required,hostname,max=253"`
}

// CreateTenant registers a new tenant in provisioning state
// POST /api/v1/admin/tenants
func (h *TenantHandler) CreateTenant(c *fiber.Ctx) error {
	var req CreateTenantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}

	tenant, err := h.registry.CreateTenant(c.Context(), req.DisplayName, req.Slug, req.Hostname)
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Tenant registered",
		"tenant":  tenant,
	})
}

// ListTenants lists tenants with pagination
// GET /api/v1/admin/tenants?page=1&limit=20
func (h *TenantHandler) ListTenants(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	page := c.QueryInt("page", 1)

	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}

	offset := (page - 1) * limit

	tenants, total, err := h.registry.ListTenants(c.Context(), limit, offset)
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"tenants": tenants,
		"pagination": fiber.Map{
			"total":       total,
			"page":        page,
			"limit":       limit,
			"total_pages": (total + limit - 1) / limit,
		},
	})
}

// GetTenant gets a specific tenant by ID
// GET /api/v1/admin/tenants/:id
func (h *TenantHandler) GetTenant(c *fiber.Ctx) error {
	tenantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid tenant ID",
		})
	}

	tenant, err := h.registry.GetTenant(c.Context(), tenantID)
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.JSON(tenant)
}

// ProvisionTenant brings a provisioning tenant to active with a full schema
// POST /api/v1/admin/tenants/:id/provision
func (h *TenantHandler) ProvisionTenant(c *fiber.Ctx) error {
	tenantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid tenant ID",
		})
	}

	tenant, err := h.provisioner.Provision(c.Context(), tenantID)
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Tenant provisioned",
		"tenant":  tenant,
	})
}

// SuspendTenant suspends an active tenant
// POST /api/v1/admin/tenants/:id/suspend
func (h *TenantHandler) SuspendTenant(c *fiber.Ctx) error {
	return h.transition(c, domain.TenantStatusSuspended)
}

// ReactivateTenant reactivates a suspended tenant
// POST /api/v1/admin/tenants/:id/reactivate
func (h *TenantHandler) ReactivateTenant(c *fiber.Ctx) error {
	return h.transition(c, domain.TenantStatusActive)
}

// ArchiveTenant archives a tenant; its schema is retained for audit
// POST /api/v1/admin/tenants/:id/archive
func (h *TenantHandler) ArchiveTenant(c *fiber.Ctx) error {
	return h.transition(c, domain.TenantStatusArchived)
}

func (h *TenantHandler) transition(c *fiber.Ctx, next domain.TenantStatus) error {
	tenantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid tenant ID",
		})
	}

	tenant, err := h.registry.TransitionStatus(c.Context(), tenantID, next)
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Tenant status updated",
		"tenant":  tenant,
	})
}

// AddDomain attaches an alias hostname to a tenant
// POST /api/v1/admin/tenants/:id/domains
func (h *TenantHandler) AddDomain(c *fiber.Ctx) error {
	tenantID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid tenant ID",
		})
	}

	var req AddDomainRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if err := h.validator.Validate(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": err.Error(),
		})
	}

	d, err := h.registry.AddDomain(c.Context(), tenantID, req.Hostname)
	if err != nil {
		return writeDomainError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Domain added",
		"domain":  d,
	})
}
