package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

// companyChecker lo implementa *companies.StatusUseCase.
type companyChecker interface {
	IsActive(ctx context.Context, companyID string) (bool, error)
}

// RequireActiveCompany rechaza las peticiones de empresas suspendidas o inexistentes.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalCompanyID).
//
//   - 403 Forbidden → empresa no activa.
//   - 503 Service Unavailable → fallo al consultar la DB.
func RequireActiveCompany(checker companyChecker, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := GetCompanyID(c)
		if companyID == "" {
			return unauthorized(c)
		}

		active, err := checker.IsActive(c.UserContext(), companyID)
		if err != nil {
			log.Error().Err(err).Str("company_id", companyID).Msg("no se pudo verificar la empresa")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "COMPANY_CHECK_FAILED",
				Message: "no se pudo verificar la empresa, intente más tarde",
			})
		}
		if !active {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "COMPANY_INACTIVE",
				Message: "la empresa no está activa",
			})
		}
		return c.Next()
	}
}
