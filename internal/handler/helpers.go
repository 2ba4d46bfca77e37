package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/donolu/enterprise-grc-system-sub000/internal/domain"
)

// writeDomainError maps registry/provisioner errors to stable HTTP responses
func writeDomainError(c *fiber.Ctx, err error) error {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": validation.Error(),
		})
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return c.Status(http.StatusConflict).JSON(fiber.Map{
			"error":   "conflict",
			"message": conflict.Error(),
		})
	}

	var invalid *domain.InvalidStateTransitionError
	if errors.As(err, &invalid) {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "invalid_state_transition",
			"message": invalid.Error(),
		})
	}

	var provisioning *domain.ProvisioningError
	if errors.As(err, &provisioning) {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error":     "provisioning_failed",
			"message":   provisioning.Error(),
			"retryable": true,
		})
	}

	if errors.Is(err, domain.ErrTenantNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "tenant_not_found",
		})
	}

	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_error",
		"message": err.Error(),
	})
}
