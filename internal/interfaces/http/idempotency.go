package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ordenes-api/internal/application/dto"
	"github.com/jhoicas/ordenes-api/internal/application/ports"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

// HeaderIdempotencyKey clave que envía el cliente para reintentar un POST sin duplicarlo.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
	maxIdempotencyKeyLen = 200
)

// Idempotency repite la respuesta 2xx guardada cuando llega otra vez la misma clave, y rechaza con 409
// la petición que llega mientras la primera todavía se procesa. Sin store o sin header no hace nada.
// La clave se guarda por empresa, método y ruta.
func Idempotency(store ports.IdempotencyStore, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if store == nil || key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}
		scoped := GetCompanyID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		saved, err := store.Get(ctx, scoped)
		if err != nil {
			log.Warn().Err(err).Msg("idempotencia no disponible; se procesa sin ella")
			return c.Next()
		}
		if saved != nil {
			return replay(c, saved)
		}

		release, err := store.Lock(ctx, scoped)
		if errors.Is(err, ports.ErrRequestInFlight) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "petición con la misma Idempotency-Key en proceso"})
		}
		if err != nil {
			log.Warn().Err(err).Msg("idempotencia no disponible; se procesa sin ella")
			return c.Next()
		}
		defer release()

		// otra petición pudo terminar entre Get y Lock
		if saved, err := store.Get(ctx, scoped); err == nil && saved != nil {
			return replay(c, saved)
		}

		if err := c.Next(); err != nil {
			return err
		}
		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			return nil
		}
		resp := ports.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Save(ctx, scoped, resp); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar la respuesta idempotente")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, saved *ports.StoredResponse) error {
	c.Set(HeaderReplayed, "true")
	if saved.ContentType != "" {
		c.Set(fiber.HeaderContentType, saved.ContentType)
	}
	return c.Status(saved.Status).Send(saved.Body)
}
